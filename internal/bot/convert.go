package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rivo/uniseg"

	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
)

const (
	maxButtonsPerRow = 5
	maxMessageLength = 2000
)

// panelContent is the text above every recruitment panel.
const panelContent = "参加ボタンを押してね！"

func toEmbed(doc panel.Document) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Title: doc.Title, Color: doc.Color}
	for _, f := range doc.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if doc.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: doc.Footer}
	}
	return e
}

// panelComponents lays the panel buttons out in rows of five.
func panelComponents(recruitmentID string, doc panel.Document) []discordgo.MessageComponent {
	rows := []discordgo.MessageComponent{}
	var row []discordgo.MessageComponent
	for _, b := range doc.Buttons {
		id := encodeID(scopeRecruit, recruitmentID, string(b.Action))
		if b.Action == panel.ActionJoin {
			id = encodeID(scopeRecruit, recruitmentID, string(b.Action), b.Role)
		}
		row = append(row, discordgo.Button{
			Label:    b.Label,
			Style:    buttonStyle(b.Style),
			CustomID: id,
			Disabled: b.Disabled,
		})
		if len(row) == maxButtonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func buttonStyle(s panel.Style) discordgo.ButtonStyle {
	switch s {
	case panel.StyleSecondary:
		return discordgo.SecondaryButton
	case panel.StyleSuccess:
		return discordgo.SuccessButton
	case panel.StyleDanger:
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}

// panelResponse edits the pressed panel in place.
func panelResponse(recruitmentID string, doc panel.Document) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    panelContent,
			Embeds:     []*discordgo.MessageEmbed{toEmbed(doc)},
			Components: panelComponents(recruitmentID, doc),
		},
	}
}

func ephemeral(text string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// displayName prefers the server nickname, then the global display name.
func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil && m != nil {
		u = m.User
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// interactionUser returns the acting user and their member record (nil in
// direct messages).
func interactionUser(i *discordgo.Interaction) (*discordgo.User, *discordgo.Member) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User, i.Member
	}
	return i.User, nil
}

// splitMessage cuts text into chunks of at most limit characters, at line
// breaks where possible and never inside a grapheme cluster. Line breaks at
// chunk edges are dropped and blank chunks are never returned.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    []string // graphemes of the chunk being built
		curLen int
		lastNL = -1 // index in cur just after the last line break
	)
	emit := func(parts []string) {
		if c := strings.Trim(strings.Join(parts, ""), "\r\n"); c != "" {
			chunks = append(chunks, c)
		}
	}
	runes := func(parts []string) int {
		n := 0
		for _, p := range parts {
			n += len([]rune(p))
		}
		return n
	}

	state := -1
	for rest := text; len(rest) > 0; {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		n := len([]rune(cluster))
		for curLen > 0 && curLen+n > limit {
			cut := len(cur)
			if lastNL > 0 {
				cut = lastNL
			}
			emit(cur[:cut])
			cur = append([]string(nil), cur[cut:]...)
			curLen = runes(cur)
			lastNL = -1
		}
		cur = append(cur, cluster)
		curLen += n
		if cluster == "\n" || cluster == "\r\n" {
			lastNL = len(cur)
		}
	}
	emit(cur)
	return chunks
}
