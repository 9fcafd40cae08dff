package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/knowledge"
)

const (
	kbYes = "yes"
	kbNo  = "no"

	maxPreview = 1500
)

func (b *Bot) handleKnowledgeCommand(i *discordgo.Interaction, kc knowledgeCommand, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user, _ := interactionUser(i)
	if user == nil {
		return
	}
	name := strings.TrimSpace(stringOption(opts, optName))
	if name == "" {
		b.respond(i, ephemeral("コンテンツ名を入れてね！"))
		return
	}
	store := b.deps.Knowledge

	switch kc.op {
	case "view":
		text, ok := store.Get(kc.kind, name)
		if !ok {
			b.respond(i, ephemeral("❌ 見つかりません"))
			return
		}
		b.respond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: viewText(kc.kind, name, text)},
		})

	case "add":
		body := stringOption(opts, optContent)
		if kc.kind == knowledge.KindStrategy {
			body = stringOption(opts, optCode)
		}
		if strings.TrimSpace(body) == "" {
			b.respond(i, ephemeral("内容が空っぽだよ！"))
			return
		}
		ch := knowledge.Change{Op: knowledge.OpPut, Kind: kc.kind, Name: name, Content: body, RequesterID: user.ID}
		b.respond(i, confirmPrompt(b.deps.Confirmations.Stage(ch), addPromptText(ch)))

	case "delete":
		if _, ok := store.Get(kc.kind, name); !ok {
			b.respond(i, ephemeral(fmt.Sprintf("❌ 「%s」という%sは見つかりません。", name, notFoundLabel(kc.kind))))
			return
		}
		ch := knowledge.Change{Op: knowledge.OpDelete, Kind: kc.kind, Name: name, RequesterID: user.ID}
		b.respond(i, confirmPrompt(b.deps.Confirmations.Stage(ch), fmt.Sprintf("⚠️ **本当に削除しますか？**\n%s: `%s`", kc.label, name)))
	}
}

func (b *Bot) handleKnowledgeAnswer(i *discordgo.Interaction, id customID) {
	user, _ := interactionUser(i)
	if user == nil {
		return
	}
	ch, err := b.deps.Confirmations.Take(id.Key, user.ID)
	switch {
	case errors.Is(err, knowledge.ErrNotRequester):
		b.respond(i, ephemeral("これはコマンドを実行した人だけが答えられるよ！"))
		return
	case err != nil:
		b.respond(i, updateText("⌛ 確認の時間が切れちゃった。もう一度コマンドを実行してね。"))
		return
	}

	if id.Action != kbYes {
		b.respond(i, updateText("❌ 操作をキャンセルしました。"))
		return
	}
	existed, err := b.deps.Knowledge.Apply(ch)
	if err != nil {
		b.logger.Error("apply knowledge change", zap.String("kind", string(ch.Kind)), zap.String("name", ch.Name), zap.Error(err))
		b.respond(i, updateText(chat.Apology(err)))
		return
	}
	b.logger.Info("knowledge changed",
		zap.String("op", string(ch.Op)),
		zap.String("kind", string(ch.Kind)),
		zap.String("name", ch.Name),
		zap.String("by", user.ID),
	)
	b.respond(i, updateText(resultText(ch, existed)))
}

func (b *Bot) autocompleteKnowledge(i *discordgo.Interaction, kc knowledgeCommand, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if kc.op == "add" {
		return
	}
	current := ""
	for _, o := range opts {
		if o.Focused && o.Type == discordgo.ApplicationCommandOptionString {
			current = o.StringValue()
		}
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, knowledge.MaxSuggestions)
	for _, k := range b.deps.Knowledge.Suggest(kc.kind, current) {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: k, Value: k})
	}
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

// ─── Texts ────────────────────────────────────────────────────────────────────

func viewText(kind knowledge.Kind, name, text string) string {
	if kind == knowledge.KindMacro {
		return fmt.Sprintf("**%s**:\n```text\n%s\n```", name, knowledge.FormatMacro(text))
	}
	return fmt.Sprintf("**%s**:\n```%s```", name, text)
}

func addPromptText(ch knowledge.Change) string {
	preview := ch.Content
	if ch.Kind == knowledge.KindMacro {
		preview = knowledge.FormatMacro(preview)
	}
	if r := []rune(preview); len(r) > maxPreview {
		preview = string(r[:maxPreview]) + "…"
	}
	return fmt.Sprintf("**以下の内容で登録しますか？**\nコンテンツ名: `%s`\n\nプレビュー:\n```text\n%s\n```", ch.Name, preview)
}

func resultText(ch knowledge.Change, existed bool) string {
	label := "マクロ"
	if ch.Kind == knowledge.KindStrategy {
		label = "攻略ボード"
	}
	switch {
	case ch.Op == knowledge.OpPut:
		return fmt.Sprintf("✅ %s **「%s」** を登録しました！", label, ch.Name)
	case existed:
		return fmt.Sprintf("🗑️ %s **「%s」** を削除しました。", label, ch.Name)
	}
	return fmt.Sprintf("❌ エラー: その%sは既にありません。", label)
}

func notFoundLabel(kind knowledge.Kind) string {
	if kind == knowledge.KindStrategy {
		return "ボード"
	}
	return "マクロ"
}

func confirmPrompt(changeID, text string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "はい (実行)", Style: discordgo.SuccessButton, CustomID: encodeID(scopeKnowledge, changeID, kbYes)},
					discordgo.Button{Label: "いいえ (キャンセル)", Style: discordgo.DangerButton, CustomID: encodeID(scopeKnowledge, changeID, kbNo)},
				}},
			},
		},
	}
}

// updateText replaces the pressed message with text and drops its buttons.
func updateText(text string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    text,
			Components: []discordgo.MessageComponent{},
		},
	}
}
