package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
	"github.com/Shivanand-hulikatti/lucybot/internal/service"
)

// ErrRecruitmentDisabled is returned when no recruitment forum is configured.
var ErrRecruitmentDisabled = errors.New("recruitment forum is not configured")

const (
	maxThreadName = 100
	// threadArchiveMinutes is the forum thread auto-archive duration (1 day).
	threadArchiveMinutes = 1440
)

// Transport publishes recruitment panels to a forum channel and implements
// service.Transport.
type Transport struct {
	session       *discordgo.Session
	guildID       string
	forumID       string
	announceID    string
	mentionRoleID string
}

var _ service.Transport = (*Transport)(nil)

// NewTransport creates a Transport. An empty announceID disables
// announcements; an empty mentionRoleID announces without a role ping.
func NewTransport(session *discordgo.Session, guildID, forumID, announceID, mentionRoleID string) *Transport {
	return &Transport{
		session:       session,
		guildID:       guildID,
		forumID:       forumID,
		announceID:    announceID,
		mentionRoleID: mentionRoleID,
	}
}

// ThreadName is the forum post title of a recruitment.
func ThreadName(in *model.Instance) string {
	name := fmt.Sprintf("【募集中】%s", in.Descriptor.Content)
	if in.Descriptor.Time != "" {
		name += " @" + in.Descriptor.Time
	}
	return panel.Truncate(name, maxThreadName)
}

// JumpURL links to a message or channel.
func JumpURL(guildID, channelID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s", guildID, channelID)
}

// AnnouncementText is the community announcement for a published
// recruitment.
func AnnouncementText(in *model.Instance, roleID string) string {
	mention := ""
	if roleID != "" {
		mention = "<@&" + roleID + "> "
	}
	return fmt.Sprintf("%s**%s** の募集が出たよ！\n参加する人はこっち！ -> %s", mention, in.Descriptor.Content, in.JumpURL)
}

// PublishPanel starts a forum post whose first message is the panel.
func (t *Transport) PublishPanel(ctx context.Context, in *model.Instance, doc panel.Document) (service.PanelRef, error) {
	if t.forumID == "" {
		return service.PanelRef{}, ErrRecruitmentDisabled
	}
	th, err := t.session.ForumThreadStartComplex(t.forumID,
		&discordgo.ThreadStart{
			Name:                ThreadName(in),
			AutoArchiveDuration: threadArchiveMinutes,
		},
		&discordgo.MessageSend{
			Content:    panelContent,
			Embeds:     []*discordgo.MessageEmbed{toEmbed(doc)},
			Components: panelComponents(in.ID, doc),
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return service.PanelRef{}, fmt.Errorf("start forum thread: %w", err)
	}
	guildID := th.GuildID
	if guildID == "" {
		guildID = t.guildID
	}
	// The starter message of a forum post shares the thread's id.
	return service.PanelRef{ThreadID: th.ID, MessageID: th.ID, URL: JumpURL(guildID, th.ID)}, nil
}

// Announce posts the announcement to the announcement channel, if any.
func (t *Transport) Announce(ctx context.Context, in *model.Instance) error {
	if t.announceID == "" {
		return nil
	}
	msg := &discordgo.MessageSend{Content: AnnouncementText(in, t.mentionRoleID)}
	if t.mentionRoleID != "" {
		msg.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: []string{t.mentionRoleID}}
	}
	if _, err := t.session.ChannelMessageSendComplex(t.announceID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}
	return nil
}

// Notify sends text to a channel or thread.
func (t *Transport) Notify(ctx context.Context, channelID, text string) error {
	if _, err := t.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// LockThread locks and archives a thread.
func (t *Transport) LockThread(ctx context.Context, threadID string) error {
	locked, archived := true, true
	_, err := t.session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Locked:   &locked,
		Archived: &archived,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("lock thread: %w", err)
	}
	return nil
}
