// Package panel projects a recruitment instance into a display document:
// an embed-like header with fields plus the control surface (buttons).
// Rendering is a pure function of the instance; it never mutates state.
package panel

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// Style is the visual weight of a button.
type Style int

const (
	StylePrimary Style = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Action is what pressing a button asks the lifecycle controller to do.
type Action string

const (
	ActionJoin       Action = "join"
	ActionAdjustable Action = "adj"
	ActionLeave      Action = "leave"
	ActionCancel     Action = "cancel"
)

// Button is one control on the panel. Role is set for ActionJoin only.
type Button struct {
	Action   Action
	Role     string
	Label    string
	Style    Style
	Disabled bool
}

// Field is a named block of text in the document body.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Document is everything the transport needs to draw a panel.
type Document struct {
	Title   string
	Color   int
	Fields  []Field
	Footer  string
	Buttons []Button
}

const (
	openPlaceholder = "(募集中...)"
	emptyValue      = "-"
)

// Platform limits, counted in characters.
const (
	maxTitle      = 256
	maxFieldValue = 1024
	maxLabel      = 80
)

var typeColors = map[model.RecruitmentType]int{
	model.TypeFull:  0xff9900,
	model.TypeLight: 0x00b0f4,
	model.TypeFree8: 0xeb459e,
	model.TypeFree4: 0xeb459e,
}

// cancelledColor is a neutral grey for closed panels.
const cancelledColor = 0x95a5a6

// Render builds the live panel for an open recruitment.
func Render(in *model.Instance) Document {
	d := in.Descriptor
	occupancy, capacity := in.Occupancy(), in.MaxCapacity()

	status := "募集中"
	if occupancy >= capacity {
		status = "満員"
	}

	doc := Document{
		Title: Truncate(fmt.Sprintf("⚔️ %s: %s (%d/%d)", status, d.Content, occupancy, capacity), maxTitle),
		Color: colorFor(d.Type),
		Fields: []Field{
			{Name: "🌍 場所", Value: orDash(d.Venue.String()), Inline: true},
			{Name: "⏰ 時間", Value: orDash(d.Time), Inline: true},
			{Name: "📝 コメント", Value: orDash(d.Comment), Inline: true},
			{Name: "現在のメンバー", Value: memberLines(in.Seats), Inline: false},
		},
		Footer: footer(d),
	}
	if len(in.Roster) > 0 {
		doc.Fields = append(doc.Fields, Field{Name: "🔀 調整枠", Value: rosterLines(in.Roster), Inline: false})
	}
	doc.Buttons = controls(in, occupancy >= capacity)
	return doc
}

// RenderCancelled builds the terminal notice that replaces a cancelled panel.
func RenderCancelled(in *model.Instance) Document {
	d := in.Descriptor
	return Document{
		Title: Truncate("🔒 募集終了: "+d.Content, maxTitle),
		Color: cancelledColor,
		Fields: []Field{
			{Name: "⏰ 時間", Value: orDash(d.Time), Inline: true},
			{Name: "状態", Value: "主催者によって募集が締め切られました。", Inline: false},
		},
		Footer: footer(d),
	}
}

// RoleIcon returns the emoji shown next to a role label.
func RoleIcon(role string) string {
	switch roleCategory(role) {
	case "tank":
		return "🛡️"
	case "healer":
		return "🏥"
	case "dps":
		return "⚔️"
	}
	return "👤"
}

func controls(in *model.Instance, full bool) []Button {
	buttons := make([]Button, 0, len(in.Seats)+3)
	for _, s := range in.Seats {
		if s.Open() {
			buttons = append(buttons, Button{
				Action: ActionJoin,
				Role:   s.Role,
				Label:  Truncate(s.Role+" に参加", maxLabel),
				Style:  roleStyle(s.Role),
			})
			continue
		}
		buttons = append(buttons, Button{
			Action:   ActionJoin,
			Role:     s.Role,
			Label:    Truncate(s.Role+": "+s.Occupant.Name, maxLabel),
			Style:    StyleSecondary,
			Disabled: true,
		})
	}

	adjustable := Button{Action: ActionAdjustable, Label: "🔀 調整枠で参加", Style: StylePrimary}
	if full {
		adjustable.Label = "🔀 満員です"
		adjustable.Style = StyleSecondary
		adjustable.Disabled = true
	}
	return append(buttons,
		adjustable,
		Button{Action: ActionLeave, Label: "🚪 抜ける", Style: StyleSecondary},
		Button{Action: ActionCancel, Label: "❌ 募集を締める", Style: StyleDanger},
	)
}

func memberLines(seats []model.Seat) string {
	var b strings.Builder
	for _, s := range seats {
		status := openPlaceholder
		if !s.Open() {
			status = "**" + s.Occupant.Name + "**"
		}
		fmt.Fprintf(&b, "%s **%s**: %s\n", RoleIcon(s.Role), s.Role, status)
	}
	return Truncate(strings.TrimRight(b.String(), "\n"), maxFieldValue)
}

func rosterLines(roster []model.RosterEntry) string {
	var b strings.Builder
	for _, e := range roster {
		fmt.Fprintf(&b, "🔀 **%s**: %s\n", e.Member.Name, orDash(e.Note))
	}
	return Truncate(strings.TrimRight(b.String(), "\n"), maxFieldValue)
}

func footer(d model.Descriptor) string {
	return fmt.Sprintf("主催: %s | タイプ: %s", d.OrganizerName, d.Type)
}

func roleStyle(role string) Style {
	switch roleCategory(role) {
	case "healer":
		return StyleSuccess
	case "dps":
		return StyleDanger
	}
	return StylePrimary
}

func roleCategory(role string) string {
	switch {
	case strings.Contains(role, "Tank") || role == "MT" || role == "ST":
		return "tank"
	case strings.Contains(role, "Healer") || role == "H1" || role == "H2":
		return "healer"
	case strings.Contains(role, "DPS") || (len(role) == 2 && role[0] == 'D'):
		return "dps"
	}
	return ""
}

func colorFor(t model.RecruitmentType) int {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return typeColors[model.TypeFull]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyValue
	}
	return Truncate(s, maxFieldValue)
}

// Truncate shortens s to at most limit characters without splitting a
// grapheme cluster, marking the cut with "…".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len([]rune(s)) <= limit {
		return s
	}
	var (
		b     strings.Builder
		n     int
		state = -1
		rest  = s
	)
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		runes := len([]rune(cluster))
		if n+runes > limit-1 {
			break
		}
		b.WriteString(cluster)
		n += runes
	}
	b.WriteString("…")
	return b.String()
}
