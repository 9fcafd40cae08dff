package chat

import (
	"strings"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// recruitPrefix marks a model reply that asks the bot to publish a
// recruitment: CMD:RECRUIT|content|time|comment[|type[|role]].
const recruitPrefix = "CMD:RECRUIT"

// ReplyKind tags a parsed model reply.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyRecruit
)

// RecruitCommand is a recruitment the model asked to publish.
type RecruitCommand struct {
	Content string
	Time    string
	Comment string
	Type    model.RecruitmentType
	Role    string
}

// Reply is a model reply: plain text, or a recruit command.
type Reply struct {
	Kind    ReplyKind
	Text    string
	Recruit RecruitCommand
}

// ParseReply classifies a model reply. A command with missing or invalid
// fields is treated as plain text.
func ParseReply(text string) Reply {
	text = strings.TrimSpace(text)
	plain := Reply{Kind: ReplyText, Text: text}
	if !strings.HasPrefix(text, recruitPrefix) {
		return plain
	}

	// Only the first line carries the command.
	line, _, _ := strings.Cut(text, "\n")
	parts := strings.Split(line, "|")
	if len(parts) < 4 || strings.TrimSpace(parts[0]) != recruitPrefix {
		return plain
	}
	cmd := RecruitCommand{
		Content: strings.TrimSpace(parts[1]),
		Time:    strings.TrimSpace(parts[2]),
		Comment: strings.TrimSpace(parts[3]),
		Type:    model.TypeFull,
	}
	if cmd.Content == "" {
		return plain
	}
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		t, err := model.ParseRecruitmentType(parts[4])
		if err != nil {
			return plain
		}
		cmd.Type = t
	}
	if len(parts) > 5 {
		role, ok := model.ResolveOrganizerRole(cmd.Type, parts[5])
		if !ok {
			return plain
		}
		cmd.Role = role
	}
	return Reply{Kind: ReplyRecruit, Text: text, Recruit: cmd}
}
