package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/llm"
	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
)

// chatThreadArchiveMinutes is the auto-archive duration of chat threads.
const chatThreadArchiveMinutes = 60

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := b.botUserID()
	if botID == "" {
		return
	}
	inThread := b.isChatThread(m.ChannelID, botID)
	if !inThread && !mentions(m.Mentions, botID) {
		return
	}

	ctx, done := b.eventContext("message")
	defer done()

	text := StripMention(m.Content, botID)
	if text == "" {
		b.reply(ctx, m.Message, "呼んだ？なにかあったら話しかけてね！")
		return
	}
	if err := b.api.ChannelTyping(m.ChannelID, discordgo.WithContext(ctx)); err != nil {
		b.logger.Debug("typing indicator", zap.Error(err))
	}

	// A thread started from a message shares the message's id, so the
	// opening exchange is already in the new thread's history.
	session := m.ID
	if inThread {
		session = m.ChannelID
	}
	resp, err := b.deps.Assistant.Handle(ctx, session, text)
	if err != nil {
		b.reply(ctx, m.Message, failureText(err))
		return
	}
	if resp.Recruit != nil {
		b.publishFromChat(ctx, m, *resp.Recruit)
		return
	}
	if resp.Route == chat.RouteChat && !inThread {
		err = b.replyInThread(ctx, m, resp.Text)
	} else {
		err = b.reply(ctx, m.Message, resp.Text)
	}
	if err != nil {
		// Undelivered answers are not remembered.
		b.deps.Assistant.Reset(session)
	}
}

// isChatThread reports whether channelID is a thread the bot started for a
// conversation. Recruitment posts in the forum are excluded.
func (b *Bot) isChatThread(channelID, botID string) bool {
	ch, err := b.cachedChannel(channelID)
	if err != nil {
		if ch, err = b.api.Channel(channelID); err != nil {
			b.logger.Debug("look up channel", zap.String("channel", channelID), zap.Error(err))
			return false
		}
	}
	if !ch.IsThread() || ch.OwnerID != botID {
		return false
	}
	return b.cfg.RecruitForumID == "" || ch.ParentID != b.cfg.RecruitForumID
}

func (b *Bot) publishFromChat(ctx context.Context, m *discordgo.MessageCreate, cmd chat.RecruitCommand) {
	if !b.cfg.RecruitmentEnabled() {
		b.reply(ctx, m.Message, "IDの設定を確認してね！")
		return
	}
	d := model.Descriptor{
		Content:       cmd.Content,
		Type:          cmd.Type,
		Time:          cmd.Time,
		Comment:       cmd.Comment,
		OrganizerID:   m.Author.ID,
		OrganizerName: displayName(m.Member, m.Author),
	}
	out, err := b.deps.Recruitments.Publish(ctx, d, cmd.Role)
	if err != nil {
		b.logger.Error("publish recruitment from chat", zap.String("author", m.Author.ID), zap.Error(err))
		b.reply(ctx, m.Message, chat.Apology(err))
		return
	}
	b.reply(ctx, m.Message, PublishedText(out.Instance, cmd.Role))
}

// cachedChannel looks channelID up in the gateway state.
func (b *Bot) cachedChannel(channelID string) (*discordgo.Channel, error) {
	if b.session == nil || b.session.State == nil {
		return nil, discordgo.ErrStateNotFound
	}
	return b.session.State.Channel(channelID)
}

// replyInThread moves the conversation into a thread started from m. When
// the thread cannot be created the reply goes to the channel instead.
func (b *Bot) replyInThread(ctx context.Context, m *discordgo.MessageCreate, text string) error {
	th, err := b.api.MessageThreadStart(m.ChannelID, m.ID, ChatThreadName(displayName(m.Member, m.Author)), chatThreadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.Warn("start chat thread", zap.String("channel", m.ChannelID), zap.Error(err))
		return b.reply(ctx, m.Message, text)
	}
	return b.send(ctx, th.ID, fmt.Sprintf("%s ここでゆっくり話そう！\n\n%s", m.Author.Mention(), text))
}

// reply answers m, splitting long text over several messages. It stops at
// the first failed send.
func (b *Bot) reply(ctx context.Context, m *discordgo.Message, text string) error {
	for n, chunk := range splitMessage(text, maxMessageLength) {
		var err error
		if n == 0 {
			_, err = b.api.ChannelMessageSendReply(m.ChannelID, chunk, m.Reference(), discordgo.WithContext(ctx))
		} else {
			_, err = b.api.ChannelMessageSend(m.ChannelID, chunk, discordgo.WithContext(ctx))
		}
		if err != nil {
			b.logger.Warn("send reply", zap.String("channel", m.ChannelID), zap.Error(err))
			return err
		}
	}
	return nil
}

func (b *Bot) send(ctx context.Context, channelID, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if _, err := b.api.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			b.logger.Warn("send message", zap.String("channel", channelID), zap.Error(err))
			return err
		}
	}
	return nil
}

// ChatThreadName is the title of a conversation thread.
func ChatThreadName(name string) string {
	return panel.Truncate(fmt.Sprintf("Lucyとのナイショ話 (%s)", name), maxThreadName)
}

// StripMention removes the bot's mention from text.
func StripMention(text, botID string) string {
	text = strings.ReplaceAll(text, "<@"+botID+">", "")
	text = strings.ReplaceAll(text, "<@!"+botID+">", "")
	return strings.TrimSpace(text)
}

func mentions(users []*discordgo.User, id string) bool {
	for _, u := range users {
		if u != nil && u.ID == id {
			return true
		}
	}
	return false
}

func failureText(err error) string {
	if errors.Is(err, llm.ErrNotConfigured) {
		return "ごめんね、今はおしゃべりできないみたい…（GEMINI_API_KEY が設定されていないよ）"
	}
	return chat.Apology(err)
}
