package appcmd

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const (
	maxModalTitleLen = 45
	maxModalInputs   = 5
)

// ModalHandler receives a modal submission. values maps each text input's
// custom ID to the submitted text.
type ModalHandler func(ctx context.Context, itx *Interaction, values map[string]string) error

// TextInput is a single text field of a modal.
type TextInput struct {
	CustomID    string
	Label       string
	Placeholder string
	Value       string
	Style       discordgo.TextInputStyle
	Required    bool
	MinLength   int
	MaxLength   int
}

// ShortInput returns a single-line text input.
func ShortInput(customID, label string) *TextInput {
	return &TextInput{CustomID: customID, Label: label, Style: discordgo.TextInputShort}
}

// ParagraphInput returns a multi-line text input.
func ParagraphInput(customID, label string) *TextInput {
	return &TextInput{CustomID: customID, Label: label, Style: discordgo.TextInputParagraph}
}

// Modal is a popup form presented as an interaction response. Register it
// with a router so submissions reach OnSubmit.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []*TextInput
	OnSubmit ModalHandler
}

// Validate checks the modal against Discord's limits.
func (m *Modal) Validate() error {
	if m.CustomID == "" {
		return &ValidationError{Command: m.Title, Field: "custom_id", Reason: "modal custom ID is required"}
	}

	if m.Title == "" || len(m.Title) > maxModalTitleLen {
		return &ValidationError{Command: m.CustomID, Field: "title", Reason: "must be 1-45 characters"}
	}

	if len(m.Inputs) == 0 || len(m.Inputs) > maxModalInputs {
		return &ValidationError{Command: m.CustomID, Field: "inputs", Reason: "modals need 1-5 text inputs"}
	}

	seen := make(map[string]struct{}, len(m.Inputs))
	for _, input := range m.Inputs {
		if input.CustomID == "" || input.Label == "" {
			return &ValidationError{Command: m.CustomID, Field: "inputs", Reason: "every input needs a custom ID and a label"}
		}
		if _, dup := seen[input.CustomID]; dup {
			return &ValidationError{Command: m.CustomID, Field: "inputs", Reason: "duplicate input custom ID " + input.CustomID}
		}
		seen[input.CustomID] = struct{}{}
	}

	return nil
}

func (m *Modal) build() (*discordgo.InteractionResponseData, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	components := make([]discordgo.MessageComponent, len(m.Inputs))
	for i, input := range m.Inputs {
		style := input.Style
		if style == 0 {
			style = discordgo.TextInputShort
		}

		components[i] = discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    input.CustomID,
					Label:       input.Label,
					Style:       style,
					Placeholder: input.Placeholder,
					Value:       input.Value,
					Required:    input.Required,
					MinLength:   input.MinLength,
					MaxLength:   input.MaxLength,
				},
			},
		}
	}

	return &discordgo.InteractionResponseData{
		CustomID:   m.CustomID,
		Title:      m.Title,
		Components: components,
	}, nil
}

// modalValues flattens a submit payload into custom ID to text mappings.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}

		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}

	return values
}
