package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*3600)

func at(day, hour int) time.Time {
	// 2026-10-19 is a Monday.
	return time.Date(2026, 10, day, hour, 0, 0, 0, jst)
}

func newMonitor() *Monitor {
	return New(Config{UserID: "target", Location: jst})
}

func TestAlertsOncePerDay(t *testing.T) {
	m := newMonitor()

	a, ok := m.Observe("target", "FINAL FANTASY XIV", at(19, 11))
	require.True(t, ok)
	assert.Equal(t, "FINAL FANTASY XIV", a.Game)
	m.MarkSent(a)

	_, ok = m.Observe("target", "", at(19, 12))
	assert.False(t, ok)
	_, ok = m.Observe("target", "Monster Hunter Wilds", at(19, 13))
	assert.False(t, ok, "already nagged today")

	_, ok = m.Observe("target", "Steam", at(20, 10))
	assert.True(t, ok, "next day re-arms")
}

func TestUndeliveredAlertKeepsTheDay(t *testing.T) {
	m := newMonitor()

	_, ok := m.Observe("target", "FINAL FANTASY XIV", at(19, 11))
	require.True(t, ok)
	// The send failed, so MarkSent is never called.

	a, ok := m.Observe("target", "Monster Hunter Wilds", at(19, 12))
	require.True(t, ok, "a failed send must not use up the day")
	assert.Equal(t, "Monster Hunter Wilds", a.Game)

	m.MarkSent(a)
	_, ok = m.Observe("target", "Steam", at(19, 13))
	assert.False(t, ok)
}

func TestIgnoresUnchangedActivity(t *testing.T) {
	m := newMonitor()
	_, ok := m.Observe("target", "Spotify", at(19, 11))
	assert.False(t, ok)
	_, ok = m.Observe("target", "FINAL FANTASY XIV", at(19, 9))
	assert.False(t, ok, "before the window")
	_, ok = m.Observe("target", "FINAL FANTASY XIV", at(19, 11))
	assert.False(t, ok, "same activity as before is not a change")
}

func TestWindowAndTarget(t *testing.T) {
	tests := []struct {
		name string
		user string
		when time.Time
		want bool
	}{
		{"weekday start", "target", at(19, 10), true},
		{"weekday end is exclusive", "target", at(19, 18), false},
		{"saturday", "target", at(24, 12), false},
		{"sunday", "target", at(25, 12), false},
		{"other user", "someone", at(19, 12), false},
		{"utc input converted", "target", time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := newMonitor().Observe(tt.user, "FINAL FANTASY XIV", tt.when)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDisabledWithoutTarget(t *testing.T) {
	m := New(Config{})
	assert.False(t, m.Enabled())
	_, ok := m.Observe("", "Steam", at(19, 12))
	assert.False(t, ok)
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(Alert{UserID: "42", Game: "Steam"})
	assert.Equal(t, "<@42> **ちょっと！平日のお昼だよ！？** 😡\n『Steam』やってる場合じゃないでしょ！研究進んだの！？", msg)
}
