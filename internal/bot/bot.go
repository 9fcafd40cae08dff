// Package bot connects the domain packages to Discord: it posts and updates
// recruitment panels, drives the creation wizard, answers knowledge
// commands, relays conversation to the assistant and watches presences.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/config"
	"github.com/Shivanand-hulikatti/lucybot/internal/knowledge"
	"github.com/Shivanand-hulikatti/lucybot/internal/monitor"
	"github.com/Shivanand-hulikatti/lucybot/internal/service"
	"github.com/Shivanand-hulikatti/lucybot/internal/wizard"
)

// handlerTimeout bounds the work done for a single gateway event.
const handlerTimeout = 30 * time.Second

// Intents are the gateway intents the bot needs. Message content and guild
// presences are privileged and must be enabled in the developer portal.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildPresences

// Deps are the collaborators of a Bot.
type Deps struct {
	Recruitments  *service.RecruitmentService
	Wizards       *wizard.Manager
	Assistant     *chat.Assistant
	Knowledge     *knowledge.Store
	Confirmations *knowledge.Confirmations
	Monitor       *monitor.Monitor
}

// restAPI is the part of the Discord REST surface the handlers call.
// *discordgo.Session satisfies it.
type restAPI interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, ref *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	MessageThreadStart(channelID, messageID, name string, archiveDuration int, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

var _ restAPI = (*discordgo.Session)(nil)

// Bot owns the gateway session and dispatches its events.
type Bot struct {
	session *discordgo.Session
	api     restAPI
	cfg     config.Config
	deps    Deps
	logger  *zap.Logger
	now     func() time.Time

	ctx context.Context
	// wizard sessions with a publication in flight
	publishing sync.Map
}

// NewSession creates a discordgo session with the bot's intents.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	return s, nil
}

// New wires a Bot to session.
func New(session *discordgo.Session, cfg config.Config, deps Deps, logger *zap.Logger) *Bot {
	return &Bot{
		session: session,
		api:     session,
		cfg:     cfg,
		deps:    deps,
		logger:  logger.Named("bot"),
		now:     time.Now,
		ctx:     context.Background(),
	}
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	remove := []func(){
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onInteractionCreate),
		b.session.AddHandler(b.onPresenceUpdate),
	}
	defer func() {
		for _, fn := range remove {
			fn()
		}
	}()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	<-ctx.Done()
	b.logger.Info("closing discord gateway")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("logged in",
		zap.String("user", r.User.Username),
		zap.String("id", r.User.ID),
		zap.Int("guilds", len(r.Guilds)),
	)
}

// eventContext bounds one handler and logs panics instead of taking the
// gateway loop down with them.
func (b *Bot) eventContext(event string) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	return ctx, func() {
		cancel()
		if r := recover(); r != nil {
			b.logger.Error("handler panic",
				zap.String("event", event),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}
}

func (b *Bot) botUserID() string {
	if b.session != nil && b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) {
	if err := b.api.InteractionRespond(i, resp); err != nil {
		b.logger.Warn("interaction response failed", zap.String("interaction", i.ID), zap.Error(err))
	}
}

// deferUpdate acknowledges a component interaction whose work may outlast
// Discord's three second response window. Finish with editResponse or
// followUp.
func (b *Bot) deferUpdate(i *discordgo.Interaction) bool {
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.logger.Warn("defer interaction", zap.String("interaction", i.ID), zap.Error(err))
		return false
	}
	return true
}

// editResponse replaces the message a deferred interaction belongs to.
func (b *Bot) editResponse(ctx context.Context, i *discordgo.Interaction, text string) {
	edit := &discordgo.WebhookEdit{
		Content:    &text,
		Components: &[]discordgo.MessageComponent{},
		Embeds:     &[]*discordgo.MessageEmbed{},
	}
	if _, err := b.api.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("edit interaction response", zap.String("interaction", i.ID), zap.Error(err))
	}
}

// followUp sends an ephemeral message after a deferred response.
func (b *Bot) followUp(ctx context.Context, i *discordgo.Interaction, text string) {
	params := &discordgo.WebhookParams{Content: text, Flags: discordgo.MessageFlagsEphemeral}
	if _, err := b.api.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("interaction follow-up", zap.String("interaction", i.ID), zap.Error(err))
	}
}
