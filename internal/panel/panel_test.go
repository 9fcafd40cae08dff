package panel

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

func lightInstance(t *testing.T) *model.Instance {
	t.Helper()
	in, err := model.NewInstance("rec-1", model.Descriptor{
		Content:       "極ルビカンテ",
		Type:          model.TypeLight,
		Venue:         model.Venue{DataCenter: "Elemental", World: "Tonberry"},
		Time:          "10/19 21:00",
		Comment:       "初見歓迎",
		OrganizerID:   "org",
		OrganizerName: "Lucy",
	}, "Tank", time.Now())
	require.NoError(t, err)
	return in
}

func TestRenderOpenPanel(t *testing.T) {
	in := lightInstance(t)

	got := Render(in)
	want := Document{
		Title: "⚔️ 募集中: 極ルビカンテ (1/4)",
		Color: 0x00b0f4,
		Fields: []Field{
			{Name: "🌍 場所", Value: "Elemental / Tonberry", Inline: true},
			{Name: "⏰ 時間", Value: "10/19 21:00", Inline: true},
			{Name: "📝 コメント", Value: "初見歓迎", Inline: true},
			{Name: "現在のメンバー", Value: strings.Join([]string{
				"🛡️ **Tank**: **Lucy**",
				"🏥 **Healer**: (募集中...)",
				"⚔️ **DPS1**: (募集中...)",
				"⚔️ **DPS2**: (募集中...)",
			}, "\n")},
		},
		Footer: "主催: Lucy | タイプ: LIGHT",
		Buttons: []Button{
			{Action: ActionJoin, Role: "Tank", Label: "Tank: Lucy", Style: StyleSecondary, Disabled: true},
			{Action: ActionJoin, Role: "Healer", Label: "Healer に参加", Style: StyleSuccess},
			{Action: ActionJoin, Role: "DPS1", Label: "DPS1 に参加", Style: StyleDanger},
			{Action: ActionJoin, Role: "DPS2", Label: "DPS2 に参加", Style: StyleDanger},
			{Action: ActionAdjustable, Label: "🔀 調整枠で参加", Style: StylePrimary},
			{Action: ActionLeave, Label: "🚪 抜ける", Style: StyleSecondary},
			{Action: ActionCancel, Label: "❌ 募集を締める", Style: StyleDanger},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFullPanelWithRoster(t *testing.T) {
	in := lightInstance(t)
	require.NoError(t, in.OccupySeat("Healer", model.Member{ID: "u1", Name: "Mika"}))
	require.NoError(t, in.AddAdjustable(model.Member{ID: "u2", Name: "Ren"}, "melee/caster"))
	require.NoError(t, in.AddAdjustable(model.Member{ID: "u3", Name: "Sora"}, "any"))

	doc := Render(in)
	assert.Equal(t, "⚔️ 満員: 極ルビカンテ (4/4)", doc.Title)

	last := doc.Fields[len(doc.Fields)-1]
	assert.Equal(t, "🔀 調整枠", last.Name)
	assert.Equal(t, "🔀 **Ren**: melee/caster\n🔀 **Sora**: any", last.Value)

	var adjustable Button
	for _, b := range doc.Buttons {
		if b.Action == ActionAdjustable {
			adjustable = b
		}
	}
	assert.True(t, adjustable.Disabled)
	assert.Equal(t, "🔀 満員です", adjustable.Label)
}

func TestRenderIsPure(t *testing.T) {
	in := lightInstance(t)
	before, err := json.Marshal(in)
	require.NoError(t, err)

	_ = Render(in)
	_ = RenderCancelled(in)

	after, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRenderCancelledHasNoControls(t *testing.T) {
	in := lightInstance(t)
	require.NoError(t, in.Cancel("org"))

	doc := RenderCancelled(in)
	assert.Empty(t, doc.Buttons)
	assert.Contains(t, doc.Title, "募集終了")
}

func TestRenderEmptyDescriptiveFieldsShowDash(t *testing.T) {
	in, err := model.NewInstance("r", model.Descriptor{
		Content: "零式", Type: model.TypeFree4, OrganizerID: "org", OrganizerName: "Lucy",
	}, "Slot1", time.Now())
	require.NoError(t, err)

	doc := Render(in)
	for _, f := range doc.Fields[:3] {
		assert.Equal(t, "-", f.Value, f.Name)
	}
	assert.Equal(t, 0xeb459e, doc.Color)
}

func TestRoleIcon(t *testing.T) {
	assert.Equal(t, "🛡️", RoleIcon("MT"))
	assert.Equal(t, "🛡️", RoleIcon("Tank"))
	assert.Equal(t, "🏥", RoleIcon("H2"))
	assert.Equal(t, "⚔️", RoleIcon("D3"))
	assert.Equal(t, "⚔️", RoleIcon("DPS1"))
	assert.Equal(t, "👤", RoleIcon("Slot5"))
}

func TestTruncateKeepsGraphemes(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	// The family emoji is one grapheme of several runes and is never split.
	got := Truncate("ab👨‍👩‍👧xyz", 4)
	assert.Equal(t, "ab…", got)
	assert.Empty(t, Truncate("anything", 0))
}

func TestLongNamesFitButtonLimit(t *testing.T) {
	in := lightInstance(t)
	require.NoError(t, in.OccupySeat("Healer", model.Member{ID: "u1", Name: strings.Repeat("長", 200)}))
	doc := Render(in)
	for _, b := range doc.Buttons {
		assert.LessOrEqual(t, len([]rune(b.Label)), maxLabel)
	}
}
