package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/panel"
	"github.com/Shivanand-hulikatti/lucybot/internal/wizard"
)

// Wizard control actions.
const (
	wzType    = "type"
	wzRole    = "role"
	wzMinute  = "minute"
	wzComment = "comment"
	wzPublish = "publish"
	wzDiscard = "discard"

	commentInputID = "comment"
	maxCommentLen  = 200
	dateChoices    = 14
	noRole         = "none"
)

var typeLabels = map[model.RecruitmentType]string{
	model.TypeFull:  "FULL (8人・ロール固定)",
	model.TypeLight: "LIGHT (4人・ロール固定)",
	model.TypeFree8: "FREE8 (8人・ロール自由)",
	model.TypeFree4: "FREE4 (4人・ロール自由)",
}

func (b *Bot) startWizard(i *discordgo.Interaction, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user, member := interactionUser(i)
	if user == nil {
		return
	}
	if !b.cfg.RecruitmentEnabled() {
		b.respond(i, ephemeral("IDの設定を確認してね！"))
		return
	}
	content := strings.TrimSpace(stringOption(opts, optContent))
	if content == "" {
		b.respond(i, ephemeral("コンテンツ名を入れてね！"))
		return
	}
	s := b.deps.Wizards.Start(user.ID, displayName(member, user), content)
	b.logger.Debug("wizard started", zap.String("session", s.ID), zap.String("organizer", user.ID))

	view := wizardView(s, b.now().In(b.cfg.Location()))
	view.Flags = discordgo.MessageFlagsEphemeral
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: view,
	})
}

func (b *Bot) handleWizardComponent(ctx context.Context, i *discordgo.Interaction, id customID, values []string) {
	user, _ := interactionUser(i)
	if user == nil {
		return
	}
	value := ""
	if len(values) > 0 {
		value = values[0]
	}

	switch id.Action {
	case wzComment:
		// The modal opens without touching the session; the step is
		// checked when it is submitted.
		b.respond(i, commentModal(id.Key))
		return
	case wzPublish:
		b.publishWizard(ctx, i, id.Key, user.ID)
		return
	}

	s, err := b.deps.Wizards.Update(id.Key, user.ID, func(s *wizard.Session) error {
		switch id.Action {
		case wzType:
			return s.ChooseType(value)
		case wzRole:
			return s.ChooseRole(value)
		case wzMinute:
			return s.Select(wizard.FieldMinute, id.Arg)
		case wzDiscard:
			s.Discard()
			return nil
		case string(wizard.FieldDataCenter), string(wizard.FieldWorld), string(wizard.FieldDate), string(wizard.FieldHour):
			return s.Select(wizard.Field(id.Action), value)
		}
		return wizard.ErrInvalidChoice
	})
	if err != nil {
		b.respond(i, ephemeral(wizardErrorText(err)))
		return
	}
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: wizardView(s, b.now().In(b.cfg.Location())),
	})
}

func (b *Bot) handleWizardComment(i *discordgo.Interaction, id customID, comment string) {
	user, _ := interactionUser(i)
	if user == nil || id.Action != wzComment {
		return
	}
	s, err := b.deps.Wizards.Update(id.Key, user.ID, func(s *wizard.Session) error {
		return s.SetComment(comment)
	})
	if err != nil {
		b.respond(i, ephemeral(wizardErrorText(err)))
		return
	}
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: wizardView(s, b.now().In(b.cfg.Location())),
	})
}

// publishWizard publishes the pending recruitment and only then finishes
// the session, so a failed publication can be retried.
func (b *Bot) publishWizard(ctx context.Context, i *discordgo.Interaction, sessionID, actorID string) {
	if _, busy := b.publishing.LoadOrStore(sessionID, struct{}{}); busy {
		b.respond(i, ephemeral("いま作成中だよ！ちょっと待ってね"))
		return
	}
	defer b.publishing.Delete(sessionID)

	var (
		d    model.Descriptor
		role string
	)
	_, err := b.deps.Wizards.Update(sessionID, actorID, func(s *wizard.Session) error {
		var err error
		d, role, err = s.Pending()
		return err
	})
	if err != nil {
		b.respond(i, ephemeral(wizardErrorText(err)))
		return
	}

	// Publication posts the forum thread and the announcement; answer now
	// and edit the wizard message when it is done.
	if !b.deferUpdate(i) {
		return
	}
	out, err := b.deps.Recruitments.Publish(ctx, d, role)
	if err != nil {
		b.logger.Error("publish recruitment", zap.String("session", sessionID), zap.Error(err))
		b.followUp(ctx, i, chat.Apology(err))
		return
	}
	if _, err := b.deps.Wizards.Update(sessionID, actorID, func(s *wizard.Session) error {
		_, _, err := s.Confirm()
		return err
	}); err != nil {
		b.logger.Warn("finish wizard session", zap.String("session", sessionID), zap.Error(err))
	}
	b.editResponse(ctx, i, PublishedText(out.Instance, role))
}

// PublishedText is the organizer's confirmation after publication.
func PublishedText(in *model.Instance, role string) string {
	roleMsg := ""
	if role != "" && in.Descriptor.Type.HasFixedRoles() {
		roleMsg = fmt.Sprintf("（**%s** に入れておいたよ！）", roleLabel(role))
	}
	text := fmt.Sprintf("完了！募集タイプ **%s** で作成しました！%s📢", in.Descriptor.Type, roleMsg)
	if in.JumpURL != "" {
		text += "\n" + in.JumpURL
	}
	return text
}

func roleLabel(role string) string {
	if role == model.RoleAdjustable {
		return "調整枠"
	}
	return role
}

func wizardErrorText(err error) string {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		return "この募集作成は期限切れだよ。もう一度 `/recruit` してね！"
	case errors.Is(err, wizard.ErrNotOwner):
		return "これは主催者だけが操作できるよ！"
	case errors.Is(err, wizard.ErrWrongStep):
		return "いまはその操作はできないよ！"
	case errors.Is(err, wizard.ErrInvalidChoice):
		return "その選択肢は使えないよ！"
	}
	return chat.Apology(err)
}

// ─── Views ────────────────────────────────────────────────────────────────────

const maxSelectOptions = 25

// wizardView renders the session's current step.
func wizardView(s *wizard.Session, now time.Time) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Components: []discordgo.MessageComponent{},
		Embeds:     []*discordgo.MessageEmbed{},
	}
	id := s.ID
	discard := wizardButton(id, wzDiscard, "🗑️ 破棄", discordgo.DangerButton)

	switch s.Step() {
	case wizard.StepType:
		data.Content = summary(s) + "募集タイプを選んでね！"
		data.Components = []discordgo.MessageComponent{
			selectRow(id, wzType, "募集タイプ", typeOptions(), false),
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{discard}},
		}

	case wizard.StepRole:
		data.Content = summary(s) + "あなたのロールを選んでね！"
		data.Components = []discordgo.MessageComponent{
			selectRow(id, wzRole, "あなたのロール", roleOptions(s.Type), false),
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{discard}},
		}

	case wizard.StepSchedule, wizard.StepComment:
		data.Content = summary(s) + scheduleLine(s) + "データセンター・ワールド・日時を選んでね！"
		if s.Step() == wizard.StepComment {
			data.Content = summary(s) + scheduleLine(s) + "よければ「次へ」でコメントを書いてね！"
		}
		data.Components = scheduleRows(s, now, discard)

	case wizard.StepConfirm:
		data.Content = summary(s) + "この内容で募集を出すよ！"
		if in, err := model.NewInstance("preview", s.Descriptor(), s.Role, now); err == nil {
			data.Embeds = []*discordgo.MessageEmbed{toEmbed(panel.Render(in))}
		}
		data.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				wizardButton(id, wzPublish, "✅ 募集を出す", discordgo.SuccessButton),
				discard,
			}},
		}

	case wizard.StepDiscarded:
		data.Content = "🗑️ 募集作成をやめたよ。"

	case wizard.StepDone:
		data.Content = "完了！"
	}
	return data
}

// scheduleRows lays out the four select menus and a button row holding
// the minute choices. Discord allows five rows per message.
func scheduleRows(s *wizard.Session, now time.Time, discard discordgo.Button) []discordgo.MessageComponent {
	id := s.ID
	cat := s.Catalog()

	dcs := make([]discordgo.SelectMenuOption, 0, len(cat.DataCenters))
	for _, dc := range cat.DataCenters {
		dcs = append(dcs, discordgo.SelectMenuOption{
			Label:       dc.Name,
			Value:       dc.Name,
			Description: dc.Region,
			Default:     dc.Name == s.DataCenter,
		})
	}

	worlds := []discordgo.SelectMenuOption{{Label: "先にデータセンターを選んでね", Value: "-"}}
	worldsDisabled := true
	if dc, ok := cat.DataCenter(s.DataCenter); ok {
		worlds = worlds[:0]
		for _, w := range dc.Worlds {
			worlds = append(worlds, discordgo.SelectMenuOption{Label: w, Value: w, Default: w == s.World})
		}
		worldsDisabled = false
	}

	minutes := make([]discordgo.MessageComponent, 0, maxButtonsPerRow)
	for _, o := range wizard.MinuteOptions() {
		style := discordgo.SecondaryButton
		if o.Value == s.Minute {
			style = discordgo.PrimaryButton
		}
		minutes = append(minutes, wizardButton(id, wzMinute, o.Label, style, o.Value))
	}
	if s.Step() == wizard.StepComment {
		minutes = append(minutes, wizardButton(id, wzComment, "📝 次へ", discordgo.SuccessButton))
	} else {
		minutes = append(minutes, discard)
	}

	return []discordgo.MessageComponent{
		selectRow(id, string(wizard.FieldDataCenter), "データセンター", limitOptions(dcs), false),
		selectRow(id, string(wizard.FieldWorld), "ワールド", limitOptions(worlds), worldsDisabled),
		selectRow(id, string(wizard.FieldDate), "日付", limitOptions(menuOptions(wizard.DateOptions(now, dateChoices), s.Date)), false),
		selectRow(id, string(wizard.FieldHour), "時", limitOptions(menuOptions(wizard.HourOptions(), s.Hour)), false),
		discordgo.ActionsRow{Components: minutes},
	}
}

func scheduleLine(s *wizard.Session) string {
	venue := model.Venue{DataCenter: s.DataCenter, World: s.World}.String()
	when := s.TimeString()
	if venue == "" && when == "" {
		return ""
	}
	return fmt.Sprintf("場所: `%s` / 日時: `%s`\n", orUnset(venue), orUnset(when))
}

func orUnset(s string) string {
	if s == "" {
		return "未選択"
	}
	return s
}

func limitOptions(opts []discordgo.SelectMenuOption) []discordgo.SelectMenuOption {
	if len(opts) > maxSelectOptions {
		return opts[:maxSelectOptions]
	}
	return opts
}

func commentModal(sessionID string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: encodeID(scopeWizard, sessionID, wzComment),
			Title:    "コメント",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    commentInputID,
						Label:       "コメント (空欄でもOK)",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "例: 初見歓迎！練習多めです",
						Required:    false,
						MaxLength:   maxCommentLen,
					},
				}},
			},
		},
	}
}

func selectRow(sessionID, action, placeholder string, options []discordgo.SelectMenuOption, disabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    encodeID(scopeWizard, sessionID, action),
			Placeholder: placeholder,
			Options:     options,
			Disabled:    disabled,
		},
	}}
}

func wizardButton(sessionID, action, label string, style discordgo.ButtonStyle, arg ...string) discordgo.Button {
	return discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: encodeID(scopeWizard, sessionID, action, arg...),
	}
}

func menuOptions(opts []wizard.Option, current string) []discordgo.SelectMenuOption {
	out := make([]discordgo.SelectMenuOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, discordgo.SelectMenuOption{Label: o.Label, Value: o.Value, Default: o.Value == current})
	}
	return out
}

func summary(s *wizard.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** の募集を作るよ！\n", s.Content)
	if s.Type != "" {
		fmt.Fprintf(&sb, "タイプ: `%s`", s.Type)
		if s.Type.HasFixedRoles() && s.Step() != wizard.StepRole {
			role := s.Role
			if role == "" {
				role = "参加しない"
			}
			fmt.Fprintf(&sb, " / あなたのロール: `%s`", roleLabel(role))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func roleOptions(t model.RecruitmentType) []discordgo.SelectMenuOption {
	var out []discordgo.SelectMenuOption
	for _, r := range t.Roles() {
		out = append(out, discordgo.SelectMenuOption{Label: panel.RoleIcon(r) + " " + r, Value: r})
	}
	out = append(out,
		discordgo.SelectMenuOption{Label: "🔀 調整枠", Value: model.RoleAdjustable},
		discordgo.SelectMenuOption{Label: "参加しない", Value: noRole},
	)
	return out
}

func typeOptions() []discordgo.SelectMenuOption {
	var out []discordgo.SelectMenuOption
	for _, t := range model.Types() {
		out = append(out, discordgo.SelectMenuOption{Label: typeLabels[t], Value: string(t)})
	}
	return out
}
