package wizard

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	return NewManager(cat, 16, time.Minute)
}

func fillSchedule(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Select(FieldHour, "21"))
	require.NoError(t, s.Select(FieldDataCenter, "Elemental"))
	require.NoError(t, s.Select(FieldMinute, "30"))
	require.NoError(t, s.Select(FieldWorld, "Tonberry"))
	require.NoError(t, s.Select(FieldDate, "2026-10-19"))
}

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	assert.True(t, cat.HasWorld("Elemental", "Tonberry"))
	assert.False(t, cat.HasWorld("Gaia", "Tonberry"))
	_, ok := cat.DataCenter("Atlantis")
	assert.False(t, ok)
}

func TestLoadCatalogRejectsEmptyDatacenter(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("datacenters:\n  - name: Void\n    worlds: []\n"))
	assert.Error(t, err)
}

func TestFullFlow(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", " 絶もうひとつの未来 ")
	assert.Equal(t, StepType, s.Step())

	_, err := m.Update(s.ID, "org", func(s *Session) error { return s.ChooseType("FULL") })
	require.NoError(t, err)
	assert.Equal(t, StepRole, s.Step())

	require.NoError(t, s.ChooseRole("H1"))
	assert.Equal(t, StepSchedule, s.Step())

	fillSchedule(t, s)
	assert.Equal(t, StepComment, s.Step())
	require.NoError(t, s.SetComment("  消化/練習  "))
	assert.Equal(t, StepConfirm, s.Step())

	_, err = m.Update(s.ID, "org", func(s *Session) error {
		d, role, err := s.Confirm()
		require.NoError(t, err)
		assert.Equal(t, "H1", role)
		assert.Equal(t, model.Descriptor{
			Content:       "絶もうひとつの未来",
			Type:          model.TypeFull,
			Venue:         model.Venue{DataCenter: "Elemental", World: "Tonberry"},
			Time:          "10/19(月) 21:30",
			Comment:       "消化/練習",
			OrganizerName: "Lucy",
			OrganizerID:   "org",
		}, d)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len(), "finished sessions are dropped")
}

func TestFreeTypeSkipsRoleStep(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "マップ")

	require.NoError(t, s.ChooseType("FREE8"))
	assert.Equal(t, StepSchedule, s.Step())
	assert.Equal(t, "Slot1", s.Role)
	assert.ErrorIs(t, s.ChooseRole("Slot2"), ErrWrongStep)
}

func TestStepsAreOrdered(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")

	assert.ErrorIs(t, s.ChooseRole("MT"), ErrWrongStep)
	assert.ErrorIs(t, s.Select(FieldHour, "21"), ErrWrongStep)
	assert.ErrorIs(t, s.SetComment("x"), ErrWrongStep)
	_, _, err := s.Confirm()
	assert.ErrorIs(t, err, ErrWrongStep)

	assert.ErrorIs(t, s.ChooseType("RAID"), ErrInvalidChoice)
	require.NoError(t, s.ChooseType("LIGHT"))
	assert.ErrorIs(t, s.ChooseRole("MT"), ErrInvalidChoice)
	require.NoError(t, s.ChooseRole("adjustable"))
	assert.Equal(t, model.RoleAdjustable, s.Role)
}

func TestWorldDependsOnDatacenter(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")
	require.NoError(t, s.ChooseType("FREE4"))

	assert.ErrorIs(t, s.Select(FieldWorld, "Tonberry"), ErrInvalidChoice, "world before datacenter")
	require.NoError(t, s.Select(FieldDataCenter, "Elemental"))
	assert.ErrorIs(t, s.Select(FieldWorld, "Bahamut"), ErrInvalidChoice)
	require.NoError(t, s.Select(FieldWorld, "Tonberry"))

	require.NoError(t, s.Select(FieldDataCenter, "Gaia"))
	assert.Empty(t, s.World, "world cleared when it is not in the new datacenter")
	assert.Contains(t, s.Missing(), FieldWorld)
}

func TestScheduleValidation(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")
	require.NoError(t, s.ChooseType("FREE4"))

	assert.ErrorIs(t, s.Select(FieldHour, "24"), ErrInvalidChoice)
	assert.ErrorIs(t, s.Select(FieldHour, "9"), ErrInvalidChoice)
	assert.ErrorIs(t, s.Select(FieldMinute, "60"), ErrInvalidChoice)
	assert.ErrorIs(t, s.Select(FieldDate, "10/19"), ErrInvalidChoice)
	assert.ErrorIs(t, s.Select(Field("weather"), "sunny"), ErrInvalidChoice)
}

func TestReselectAfterCompleteStaysAtComment(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")
	require.NoError(t, s.ChooseType("FREE4"))
	fillSchedule(t, s)
	require.Equal(t, StepComment, s.Step())

	require.NoError(t, s.Select(FieldHour, "22"))
	assert.Equal(t, StepComment, s.Step())

	require.NoError(t, s.Select(FieldDataCenter, "Mana"))
	assert.Equal(t, StepSchedule, s.Step(), "world cleared, schedule incomplete again")
}

func TestDiscardDropsSession(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")

	_, err := m.Update(s.ID, "org", func(s *Session) error {
		s.Discard()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StepDiscarded, s.Step())

	_, err = m.Update(s.ID, "org", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOnlyOrganizerDrivesSession(t *testing.T) {
	m := testManager(t)
	s := m.Start("org", "Lucy", "c")

	_, err := m.Update(s.ID, "intruder", func(s *Session) error { return s.ChooseType("FULL") })
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StepType, s.Step())
}

func TestSessionsExpire(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	m := NewManager(cat, 4, 20*time.Millisecond)
	s := m.Start("org", "Lucy", "c")

	require.Eventually(t, func() bool {
		_, err := m.Update(s.ID, "org", func(*Session) error { return nil })
		return err == ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)
}

func TestOptions(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	dates := DateOptions(time.Date(2026, 10, 19, 23, 0, 0, 0, jst), 3)
	require.Len(t, dates, 3)
	assert.Equal(t, Option{Label: "10/19(月)", Value: "2026-10-19"}, dates[0])
	assert.Equal(t, "2026-10-21", dates[2].Value)

	assert.Len(t, HourOptions(), 24)
	assert.Equal(t, "00", HourOptions()[0].Value)
	assert.Len(t, MinuteOptions(), 4)
}
