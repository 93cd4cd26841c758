package appcmd

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Choice is a predefined value a user can pick for an option. Value must be
// a string for string options and numeric for integer/number options.
type Choice struct {
	Name  string
	Value any
}

// Autocompleter produces choices for a focused option while the user types.
// The query typed so far is available through Interaction.FocusedValue.
// At most 25 choices are sent back; excess entries are truncated.
type Autocompleter func(ctx context.Context, itx *Interaction) ([]*Choice, error)

// Option is a single parameter of a chat-input command.
type Option struct {
	Type         discordgo.ApplicationCommandOptionType
	Name         string
	Description  string
	Required     bool
	Choices      []*Choice
	ChannelTypes []discordgo.ChannelType
	MinValue     *float64
	MaxValue     *float64
	MinLength    *int
	MaxLength    *int

	// Autocomplete and Choices are mutually exclusive.
	Autocomplete Autocompleter
}

func newOption(t discordgo.ApplicationCommandOptionType, name, description string) *Option {
	return &Option{Type: t, Name: strings.ToLower(name), Description: description}
}

// StringOption returns a string option.
func StringOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionString, name, description)
}

// IntegerOption returns an integer option.
func IntegerOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionInteger, name, description)
}

// NumberOption returns a double-precision float option.
func NumberOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionNumber, name, description)
}

// BoolOption returns a boolean option.
func BoolOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionBoolean, name, description)
}

// UserOption returns an option resolving to a user or guild member.
func UserOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionUser, name, description)
}

// ChannelOption returns an option resolving to a channel, optionally
// restricted to the given channel types.
func ChannelOption(name, description string, channelTypes ...discordgo.ChannelType) *Option {
	opt := newOption(discordgo.ApplicationCommandOptionChannel, name, description)
	opt.ChannelTypes = channelTypes

	return opt
}

// RoleOption returns an option resolving to a role.
func RoleOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionRole, name, description)
}

// MentionableOption returns an option resolving to either a user or a role.
func MentionableOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionMentionable, name, description)
}

// AttachmentOption returns an option resolving to an uploaded attachment.
func AttachmentOption(name, description string) *Option {
	return newOption(discordgo.ApplicationCommandOptionAttachment, name, description)
}

// Require marks the option as required and returns it for chaining.
func (o *Option) Require() *Option {
	o.Required = true
	return o
}

// WithChoices sets the option's fixed choices.
func (o *Option) WithChoices(choices ...*Choice) *Option {
	o.Choices = choices
	return o
}

// WithStringChoices sets choices whose name and value are the same string,
// a shorthand for plain enumerations.
func (o *Option) WithStringChoices(values ...string) *Option {
	o.Choices = make([]*Choice, len(values))
	for i, v := range values {
		o.Choices[i] = &Choice{Name: v, Value: v}
	}

	return o
}

// WithBounds sets the minimum and maximum numeric value.
func (o *Option) WithBounds(min, max float64) *Option {
	o.MinValue = &min
	o.MaxValue = &max

	return o
}

// WithLengthBounds sets the minimum and maximum string length.
func (o *Option) WithLengthBounds(min, max int) *Option {
	o.MinLength = &min
	o.MaxLength = &max

	return o
}

// WithAutocomplete attaches an autocomplete callback.
func (o *Option) WithAutocomplete(fn Autocompleter) *Option {
	o.Autocomplete = fn
	return o
}

func (o *Option) validate(commandName string) error {
	if !chatInputNameRe.MatchString(o.Name) || o.Name != strings.ToLower(o.Name) {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "name must be 1-32 lowercase characters"}
	}

	if o.Description == "" || len(o.Description) > maxDescriptionLen {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "description must be 1-100 characters"}
	}

	if len(o.Choices) > maxChoices {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "cannot have more than 25 choices"}
	}

	if len(o.Choices) > 0 && o.Autocomplete != nil {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "choices and autocomplete are mutually exclusive"}
	}

	if o.MinValue != nil && o.MaxValue != nil && *o.MinValue > *o.MaxValue {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "min value exceeds max value"}
	}

	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "min length exceeds max length"}
	}

	numeric := o.Type == discordgo.ApplicationCommandOptionInteger || o.Type == discordgo.ApplicationCommandOptionNumber
	if (o.MinValue != nil || o.MaxValue != nil) && !numeric {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "value bounds only apply to integer and number options"}
	}

	if len(o.ChannelTypes) > 0 && o.Type != discordgo.ApplicationCommandOptionChannel {
		return &ValidationError{Command: commandName, Field: "option " + o.Name, Reason: "channel types only apply to channel options"}
	}

	return nil
}

func (o *Option) build() *discordgo.ApplicationCommandOption {
	out := &discordgo.ApplicationCommandOption{
		Type:         o.Type,
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		ChannelTypes: o.ChannelTypes,
		MinValue:     o.MinValue,
		MinLength:    o.MinLength,
		Autocomplete: o.Autocomplete != nil,
	}

	if o.MaxValue != nil {
		out.MaxValue = *o.MaxValue
	}

	if o.MaxLength != nil {
		out.MaxLength = *o.MaxLength
	}

	for _, choice := range o.Choices {
		out.Choices = append(out.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  choice.Name,
			Value: choice.Value,
		})
	}

	return out
}
