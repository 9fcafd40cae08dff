package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Shivanand-hulikatti/lucybot/internal/knowledge"
)

// Slash command names.
const (
	cmdRecruit             = "recruit"
	cmdAddMacro            = "addmacro"
	cmdDeleteMacro         = "deletemacro"
	cmdViewMacro           = "viewmacro"
	cmdAddStrategyBoard    = "addstrategyboard"
	cmdDeleteStrategyBoard = "deletestrategyboard"
	cmdViewStrategyBoard   = "viewstrategyboard"
)

// Option names.
const (
	optContent = "content"
	optName    = "name"
	optCode    = "code"
)

// knowledgeCommand describes one knowledge slash command.
type knowledgeCommand struct {
	kind  knowledge.Kind
	op    string // "add", "delete" or "view"
	label string // what the collection holds, for replies
}

var knowledgeCommands = map[string]knowledgeCommand{
	cmdAddMacro:            {kind: knowledge.KindMacro, op: "add", label: "マクロ"},
	cmdDeleteMacro:         {kind: knowledge.KindMacro, op: "delete", label: "マクロ"},
	cmdViewMacro:           {kind: knowledge.KindMacro, op: "view", label: "マクロ"},
	cmdAddStrategyBoard:    {kind: knowledge.KindStrategy, op: "add", label: "攻略ボード"},
	cmdDeleteStrategyBoard: {kind: knowledge.KindStrategy, op: "delete", label: "攻略ボード"},
	cmdViewStrategyBoard:   {kind: knowledge.KindStrategy, op: "view", label: "攻略ボード"},
}

func nameOption(autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         optName,
		Description:  "コンテンツ名",
		Required:     true,
		Autocomplete: autocomplete,
	}
}

func textOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

// Commands returns every slash command the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdRecruit,
			Description: "パーティ募集を作成します",
			Options:     []*discordgo.ApplicationCommandOption{textOption(optContent, "募集するコンテンツ")},
		},
		{
			Name:        cmdAddMacro,
			Description: "マクロを登録します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(false), textOption(optContent, "マクロ内容")},
		},
		{
			Name:        cmdDeleteMacro,
			Description: "マクロを削除します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(true)},
		},
		{
			Name:        cmdViewMacro,
			Description: "マクロを表示します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(true)},
		},
		{
			Name:        cmdAddStrategyBoard,
			Description: "攻略ボードのコードを登録します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(false), textOption(optCode, "コード")},
		},
		{
			Name:        cmdDeleteStrategyBoard,
			Description: "攻略ボードを削除します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(true)},
		},
		{
			Name:        cmdViewStrategyBoard,
			Description: "攻略ボードを表示します",
			Options:     []*discordgo.ApplicationCommandOption{nameOption(true)},
		},
	}
}

// SyncCommands replaces the registered commands with Commands(). An empty
// guildID registers them globally.
func SyncCommands(ctx context.Context, s *discordgo.Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		return nil, fmt.Errorf("application id is required to sync commands")
	}
	out, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("overwrite commands: %w", err)
	}
	return out, nil
}

// commandOptions indexes the options of a command invocation by name.
func commandOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		out[o.Name] = o
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	o, ok := opts[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return o.StringValue()
}
