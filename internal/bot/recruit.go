package bot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
	"github.com/Shivanand-hulikatti/lucybot/internal/repository"
	"github.com/Shivanand-hulikatti/lucybot/internal/service"
)

const (
	actionNote  = "note"
	noteInputID = "note"
	maxNoteLen  = 100
)

// rejectionText is the ephemeral reply for a rejected panel action.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, model.ErrFull):
		return "満員だよ！ごめんね🙏"
	case errors.Is(err, model.ErrRoleTaken):
		return "そのロールはもう埋まってるよ！"
	case errors.Is(err, model.ErrUnknownRole):
		return "そのロールはこの募集にはないよ！"
	case errors.Is(err, model.ErrNotJoined):
		return "まだ参加してないよ！"
	case errors.Is(err, model.ErrNotOrganizer):
		return "募集を締められるのは主催者だけだよ！"
	case errors.Is(err, model.ErrCancelled):
		return "この募集はもう締め切られてるよ！"
	case errors.Is(err, model.ErrNoteRequired):
		return "調整枠で参加するときはひとことメモを書いてね！"
	case errors.Is(err, repository.ErrNotFound):
		return "この募集が見つからないよ…"
	}
	return chat.Apology(err)
}

func (b *Bot) handlePanelButton(ctx context.Context, i *discordgo.Interaction, id customID) {
	user, member := interactionUser(i)
	if user == nil {
		return
	}
	actor := model.Member{ID: user.ID, Name: displayName(member, user)}
	svc := b.deps.Recruitments

	var (
		out service.Outcome
		err error
	)
	switch panel.Action(id.Action) {
	case panel.ActionJoin:
		out, err = svc.Join(ctx, id.Key, actor, id.Arg)
	case panel.ActionAdjustable:
		if err := svc.CanJoinAdjustable(ctx, id.Key, actor.ID); err != nil {
			b.respond(i, ephemeral(rejectionText(err)))
			return
		}
		b.respond(i, noteModal(id.Key))
		return
	case panel.ActionLeave:
		out, err = svc.Leave(ctx, id.Key, actor.ID)
	case panel.ActionCancel:
		present := func(doc panel.Document) error {
			return b.api.InteractionRespond(i, panelResponse(id.Key, doc))
		}
		_, err = svc.Cancel(ctx, id.Key, actor.ID, present)
		if err != nil {
			b.respond(i, ephemeral(rejectionText(err)))
		}
		return
	default:
		b.logger.Debug("unknown panel action", zap.String("action", id.Action))
		return
	}

	if err != nil {
		b.respond(i, ephemeral(rejectionText(err)))
		return
	}
	b.respond(i, panelResponse(id.Key, out.Document))
	svc.Deliver(ctx, out)
}

func (b *Bot) handleAdjustableNote(ctx context.Context, i *discordgo.Interaction, id customID, note string) {
	if id.Action != actionNote {
		return
	}
	user, member := interactionUser(i)
	if user == nil {
		return
	}
	actor := model.Member{ID: user.ID, Name: displayName(member, user)}
	out, err := b.deps.Recruitments.JoinAdjustable(ctx, id.Key, actor, note)
	if err != nil {
		b.respond(i, ephemeral(rejectionText(err)))
		return
	}
	b.respond(i, panelResponse(id.Key, out.Document))
	b.deps.Recruitments.Deliver(ctx, out)
}

// noteModal asks an adjustable joiner which roles they can cover.
func noteModal(recruitmentID string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: encodeID(scopeRecruit, recruitmentID, actionNote),
			Title:    "調整枠で参加",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    noteInputID,
						Label:       "出せるロール・ひとこと",
						Style:       discordgo.TextInputShort,
						Placeholder: "例: タンク/ヒーラーどちらでも",
						Required:    true,
						MaxLength:   maxNoteLen,
					},
				}},
			},
		},
	}
}
