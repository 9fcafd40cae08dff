package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, done := b.eventContext("interaction")
	defer done()
	i := ic.Interaction

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name == cmdRecruit {
			b.startWizard(i, commandOptions(data.Options))
			return
		}
		if kc, ok := knowledgeCommands[data.Name]; ok {
			b.handleKnowledgeCommand(i, kc, commandOptions(data.Options))
			return
		}
		b.logger.Warn("unknown command", zap.String("command", data.Name))

	case discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		if kc, ok := knowledgeCommands[data.Name]; ok {
			b.autocompleteKnowledge(i, kc, data.Options)
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		id, ok := parseID(data.CustomID)
		if !ok {
			b.logger.Debug("ignoring component", zap.String("custom_id", data.CustomID))
			return
		}
		switch id.Scope {
		case scopeRecruit:
			b.handlePanelButton(ctx, i, id)
		case scopeWizard:
			b.handleWizardComponent(ctx, i, id, data.Values)
		case scopeKnowledge:
			b.handleKnowledgeAnswer(i, id)
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		id, ok := parseID(data.CustomID)
		if !ok {
			return
		}
		values := modalValues(data.Components)
		switch id.Scope {
		case scopeRecruit:
			b.handleAdjustableNote(ctx, i, id, values[noteInputID])
		case scopeWizard:
			b.handleWizardComment(i, id, values[commentInputID])
		}
	}
}

// modalValues collects text input values by custom id.
func modalValues(rows []discordgo.MessageComponent) map[string]string {
	out := make(map[string]string)
	for _, c := range rows {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if in, ok := inner.(*discordgo.TextInput); ok {
				out[in.CustomID] = in.Value
			}
		}
	}
	return out
}
