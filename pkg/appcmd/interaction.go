package appcmd

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder is the slice of the Discord REST surface used to answer an
// interaction. *discordgo.Session satisfies it.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
}

// Interaction wraps an incoming interaction with its bound options, resolved
// entities and response helpers. An interaction accepts exactly one initial
// response; further Respond/Defer calls return ErrAlreadyResponded. Followups
// are unlimited once the initial response is out.
type Interaction struct {
	// Session is the gateway session the interaction arrived on. Nil when the
	// interaction was constructed for tests.
	Session *discordgo.Session

	Event *discordgo.InteractionCreate

	responder Responder
	command   *Command
	options   map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved  *discordgo.ApplicationCommandInteractionDataResolved
	focused   *discordgo.ApplicationCommandInteractionDataOption
	targetID  string

	mu        sync.Mutex
	responded bool
}

// Command returns the resolved command definition. For subcommands this is
// the leaf, not the top-level grouping command. Nil for component and modal
// interactions.
func (i *Interaction) Command() *Command {
	return i.command
}

// Responded reports whether the initial response has been sent.
func (i *Interaction) Responded() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.responded
}

// GuildID returns the guild the interaction happened in, or "" in DMs.
func (i *Interaction) GuildID() string {
	return i.Event.GuildID
}

// ChannelID returns the channel the interaction happened in.
func (i *Interaction) ChannelID() string {
	return i.Event.ChannelID
}

// Locale returns the invoking user's client locale.
func (i *Interaction) Locale() discordgo.Locale {
	return i.Event.Locale
}

// Invoker returns the user who triggered the interaction, whether it
// happened in a guild or a DM.
func (i *Interaction) Invoker() *discordgo.User {
	if i.Event.Member != nil {
		return i.Event.Member.User
	}

	return i.Event.User
}

// Member returns the invoking guild member, or nil in DMs.
func (i *Interaction) Member() *discordgo.Member {
	return i.Event.Member
}

// --- initial responses ---

func (i *Interaction) respond(resp *discordgo.InteractionResponse) error {
	i.mu.Lock()
	if i.responded {
		i.mu.Unlock()
		return ErrAlreadyResponded
	}
	i.responded = true
	i.mu.Unlock()

	if err := i.responder.InteractionRespond(i.Event.Interaction, resp); err != nil {
		i.mu.Lock()
		i.responded = false
		i.mu.Unlock()

		return err
	}

	return nil
}

// Respond sends a plain text message as the initial response.
func (i *Interaction) Respond(content string) error {
	return i.RespondMessage(&discordgo.InteractionResponseData{Content: content})
}

// RespondEphemeral sends a text message only the invoking user can see.
func (i *Interaction) RespondEphemeral(content string) error {
	return i.RespondMessage(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// RespondEmbed sends one or more embeds as the initial response.
func (i *Interaction) RespondEmbed(embeds ...*discordgo.MessageEmbed) error {
	return i.RespondMessage(&discordgo.InteractionResponseData{Embeds: embeds})
}

// RespondMessage sends an arbitrary message payload as the initial response.
func (i *Interaction) RespondMessage(data *discordgo.InteractionResponseData) error {
	return i.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// UpdateMessage edits the message a component interaction came from as the
// initial response.
func (i *Interaction) UpdateMessage(data *discordgo.InteractionResponseData) error {
	return i.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// Defer acknowledges the interaction and shows a loading state; the actual
// content must follow via Followup or EditResponse. For component and modal
// interactions this defers the message update instead.
func (i *Interaction) Defer(ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}

	switch i.Event.Type {
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	default:
		if ephemeral {
			resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
		}
	}

	return i.respond(resp)
}

// Pong answers a ping interaction.
func (i *Interaction) Pong() error {
	return i.respond(&discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
}

// ShowModal presents a modal as the initial response.
func (i *Interaction) ShowModal(modal *Modal) error {
	data, err := modal.build()
	if err != nil {
		return err
	}

	return i.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
}

// RespondChoices answers an autocomplete interaction with the given choices,
// truncated to Discord's limit of 25.
func (i *Interaction) RespondChoices(choices []*Choice) error {
	if i.Event.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return &IncompatibleSignatureError{Command: i.commandName(), Detail: "choices can only answer autocomplete interactions"}
	}

	if len(choices) > maxAutocompleteSize {
		choices = choices[:maxAutocompleteSize]
	}

	payload := make([]*discordgo.ApplicationCommandOptionChoice, len(choices))
	for idx, choice := range choices {
		payload[idx] = &discordgo.ApplicationCommandOptionChoice{Name: choice.Name, Value: choice.Value}
	}

	return i.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: payload},
	})
}

// --- followups ---

// Followup sends a followup text message. Valid once the initial response
// (or a defer) is out.
func (i *Interaction) Followup(content string) (*discordgo.Message, error) {
	return i.responder.FollowupMessageCreate(i.Event.Interaction, true, &discordgo.WebhookParams{Content: content})
}

// FollowupEphemeral sends a followup message only the invoker can see.
func (i *Interaction) FollowupEphemeral(content string) (*discordgo.Message, error) {
	return i.responder.FollowupMessageCreate(i.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// EditResponse replaces the content of the original response.
func (i *Interaction) EditResponse(content string) (*discordgo.Message, error) {
	return i.responder.InteractionResponseEdit(i.Event.Interaction, &discordgo.WebhookEdit{Content: &content})
}

// DeleteResponse deletes the original response.
func (i *Interaction) DeleteResponse() error {
	return i.responder.InteractionResponseDelete(i.Event.Interaction)
}

// --- option access ---

// Has reports whether the option was supplied by the user.
func (i *Interaction) Has(name string) bool {
	_, ok := i.options[name]
	return ok
}

// Raw returns the raw payload option, or nil if it was not supplied.
func (i *Interaction) Raw(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return i.options[name]
}

// String returns the value of a string option, or "".
func (i *Interaction) String(name string) string {
	if opt, ok := i.options[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}

	return ""
}

// Int returns the value of an integer option, or 0.
func (i *Interaction) Int(name string) int64 {
	if opt, ok := i.options[name]; ok {
		if v, ok := opt.Value.(float64); ok {
			return int64(v)
		}
	}

	return 0
}

// Float returns the value of a number option, or 0.
func (i *Interaction) Float(name string) float64 {
	if opt, ok := i.options[name]; ok {
		if v, ok := opt.Value.(float64); ok {
			return v
		}
	}

	return 0
}

// Bool returns the value of a boolean option, or false.
func (i *Interaction) Bool(name string) bool {
	if opt, ok := i.options[name]; ok {
		if v, ok := opt.Value.(bool); ok {
			return v
		}
	}

	return false
}

func (i *Interaction) optionID(name string) string {
	if opt, ok := i.options[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}

	return ""
}

// User returns the user a user or mentionable option resolves to, or nil.
func (i *Interaction) User(name string) *discordgo.User {
	return i.resolveUser(i.optionID(name))
}

// MemberOption returns the guild member a user option resolves to, or nil
// outside guilds. The member's User field is filled from the resolved user
// data.
func (i *Interaction) MemberOption(name string) *discordgo.Member {
	return i.resolveMember(i.optionID(name))
}

// Role returns the role a role or mentionable option resolves to, or nil.
func (i *Interaction) Role(name string) *discordgo.Role {
	if i.resolved == nil {
		return nil
	}

	return i.resolved.Roles[i.optionID(name)]
}

// Channel returns the partial channel a channel option resolves to, or nil.
func (i *Interaction) Channel(name string) *discordgo.Channel {
	if i.resolved == nil {
		return nil
	}

	return i.resolved.Channels[i.optionID(name)]
}

// Attachment returns the attachment an attachment option resolves to, or nil.
func (i *Interaction) Attachment(name string) *discordgo.MessageAttachment {
	if i.resolved == nil {
		return nil
	}

	return i.resolved.Attachments[i.optionID(name)]
}

// Mentionable resolves a mentionable option to either a role or a user.
// Exactly one of the results is non-nil for a supplied option.
func (i *Interaction) Mentionable(name string) (*discordgo.User, *discordgo.Role) {
	id := i.optionID(name)
	if i.resolved != nil {
		if role, ok := i.resolved.Roles[id]; ok {
			return nil, role
		}
	}

	return i.resolveUser(id), nil
}

func (i *Interaction) resolveUser(id string) *discordgo.User {
	if id == "" || i.resolved == nil {
		return nil
	}

	if user, ok := i.resolved.Users[id]; ok {
		return user
	}

	if member, ok := i.resolved.Members[id]; ok && member.User != nil {
		return member.User
	}

	return nil
}

func (i *Interaction) resolveMember(id string) *discordgo.Member {
	if id == "" || i.resolved == nil {
		return nil
	}

	member, ok := i.resolved.Members[id]
	if !ok {
		return nil
	}

	// Discord omits the user object inside resolved members.
	if member.User == nil {
		member.User = i.resolved.Users[id]
	}

	return member
}

// --- autocomplete ---

// FocusedOption returns the name of the option currently being typed, or "".
func (i *Interaction) FocusedOption() string {
	if i.focused == nil {
		return ""
	}

	return i.focused.Name
}

// FocusedValue returns the raw text typed so far in the focused option.
func (i *Interaction) FocusedValue() string {
	if i.focused == nil {
		return ""
	}

	switch v := i.focused.Value.(type) {
	case string:
		return v
	default:
		return ""
	}
}

// --- context menus ---

// TargetUser returns the user a user context-menu command targets, or nil.
func (i *Interaction) TargetUser() *discordgo.User {
	return i.resolveUser(i.targetID)
}

// TargetMember returns the guild member a user context-menu command targets,
// or nil outside guilds.
func (i *Interaction) TargetMember() *discordgo.Member {
	return i.resolveMember(i.targetID)
}

// TargetMessage returns the message a message context-menu command targets,
// or nil.
func (i *Interaction) TargetMessage() *discordgo.Message {
	if i.resolved == nil {
		return nil
	}

	return i.resolved.Messages[i.targetID]
}

// --- components ---

// ComponentData returns the component payload for component interactions.
func (i *Interaction) ComponentData() discordgo.MessageComponentInteractionData {
	return i.Event.MessageComponentData()
}

func (i *Interaction) commandName() string {
	if i.command != nil {
		return i.command.Name
	}

	return ""
}
