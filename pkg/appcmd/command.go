// Package appcmd is a declarative application-command layer on top of
// discordgo. Commands (slash commands, user and message context menus) are
// described as data, grouped into a Tree, synchronized against Discord by a
// Syncer and dispatched to handlers by a Router.
package appcmd

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Handler executes a command invocation. Respond through the Interaction;
// a returned error flows to the command's OnError and the router error hook.
type Handler func(ctx context.Context, itx *Interaction) error

// CheckFunc gates an invocation. The handler only runs when it returns
// (true, nil). Respond to the interaction here on failure to avoid a
// client-side "application did not respond" error.
type CheckFunc func(ctx context.Context, itx *Interaction) (bool, error)

// ErrorHandler receives errors raised by a command's check or handler.
type ErrorHandler func(ctx context.Context, itx *Interaction, err error)

// chat-input names: 1-32 lowercase letters, digits, dashes or underscores.
var chatInputNameRe = regexp.MustCompile(`^[-_\p{L}\p{N}]{1,32}$`)

const (
	maxOptions          = 25
	maxChoices          = 25
	maxDescriptionLen   = 100
	maxContextNameLen   = 32
	maxSubcommandDepth  = 2
	maxAutocompleteSize = 25
)

// Command is a declarative application command definition together with its
// runtime behavior. Zero or one of Options/Subcommands may be set; a command
// with subcommands is a pure grouping node and carries no handler of its own.
type Command struct {
	Type        discordgo.ApplicationCommandType
	Name        string
	Description string

	// GuildID scopes the command to a single guild. Empty means global,
	// unless the tree it is added to carries a default guild ID.
	GuildID string

	Options     []*Option
	Subcommands []*Command

	DefaultMemberPermissions *int64
	DMPermission             *bool

	Handler Handler
	Check   CheckFunc
	OnError ErrorHandler
}

// NewSlashCommand returns a chat-input command. The name is case-folded,
// matching Discord's requirement that slash command names be lowercase.
func NewSlashCommand(name, description string) *Command {
	return &Command{
		Type:        discordgo.ChatApplicationCommand,
		Name:        strings.ToLower(name),
		Description: description,
	}
}

// NewUserCommand returns a user context-menu command. Context-menu names
// keep their case and may contain spaces.
func NewUserCommand(name string) *Command {
	return &Command{
		Type: discordgo.UserApplicationCommand,
		Name: name,
	}
}

// NewMessageCommand returns a message context-menu command.
func NewMessageCommand(name string) *Command {
	return &Command{
		Type: discordgo.MessageApplicationCommand,
		Name: name,
	}
}

// Group adds a subcommand (or, when sub itself has subcommands, a
// subcommand group) and returns the receiver for chaining.
func (c *Command) Group(sub *Command) *Command {
	c.Subcommands = append(c.Subcommands, sub)
	return c
}

// Validate checks the definition against Discord's documented limits.
func (c *Command) Validate() error {
	if c.Type == 0 {
		c.Type = discordgo.ChatApplicationCommand
	}

	switch c.Type {
	case discordgo.ChatApplicationCommand:
		if err := c.validateChatInput(0); err != nil {
			return err
		}
	case discordgo.UserApplicationCommand, discordgo.MessageApplicationCommand:
		if c.Name == "" || len(c.Name) > maxContextNameLen {
			return &ValidationError{Command: c.Name, Field: "name", Reason: "must be 1-32 characters"}
		}
		if c.Description != "" {
			return &ValidationError{Command: c.Name, Field: "description", Reason: "context-menu commands cannot have a description"}
		}
		if len(c.Options) > 0 || len(c.Subcommands) > 0 {
			return &ValidationError{Command: c.Name, Field: "options", Reason: "context-menu commands cannot have options"}
		}
	default:
		return &ValidationError{Command: c.Name, Field: "type", Reason: "unknown application command type"}
	}

	return nil
}

func (c *Command) validateChatInput(depth int) error {
	if !chatInputNameRe.MatchString(c.Name) || c.Name != strings.ToLower(c.Name) {
		return &ValidationError{Command: c.Name, Field: "name", Reason: "must be 1-32 lowercase characters (letters, digits, - or _)"}
	}

	if c.Description == "" || len(c.Description) > maxDescriptionLen {
		return &ValidationError{Command: c.Name, Field: "description", Reason: "must be 1-100 characters"}
	}

	if len(c.Subcommands) > 0 {
		if len(c.Options) > 0 {
			return &ValidationError{Command: c.Name, Field: "options", Reason: "cannot mix options and subcommands at the same level"}
		}
		if c.Handler != nil {
			return &ValidationError{Command: c.Name, Field: "handler", Reason: "grouping commands cannot have a handler"}
		}
		if depth >= maxSubcommandDepth {
			return &ValidationError{Command: c.Name, Field: "subcommands", Reason: "subcommands can only be nested two levels deep"}
		}
		seen := make(map[string]struct{}, len(c.Subcommands))
		for _, sub := range c.Subcommands {
			if _, dup := seen[sub.Name]; dup {
				return &ValidationError{Command: c.Name, Field: "subcommands", Reason: "duplicate subcommand " + sub.Name}
			}
			seen[sub.Name] = struct{}{}

			if err := sub.validateChatInput(depth + 1); err != nil {
				return err
			}
		}

		return nil
	}

	if len(c.Options) > maxOptions {
		return &ValidationError{Command: c.Name, Field: "options", Reason: "cannot have more than 25 options"}
	}

	seen := make(map[string]struct{}, len(c.Options))
	required := true
	for _, opt := range c.Options {
		if _, dup := seen[opt.Name]; dup {
			return &ValidationError{Command: c.Name, Field: "options", Reason: "duplicate option " + opt.Name}
		}
		seen[opt.Name] = struct{}{}

		// Discord rejects required options that follow optional ones.
		if opt.Required && !required {
			return &ValidationError{Command: c.Name, Field: "options", Reason: "required option " + opt.Name + " cannot follow an optional one"}
		}
		required = required && opt.Required

		if err := opt.validate(c.Name); err != nil {
			return err
		}
	}

	return nil
}

// Build lowers the definition to the discordgo payload struct.
func (c *Command) Build() *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Type:                     c.Type,
		Name:                     c.Name,
		Description:              c.Description,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
		DMPermission:             c.DMPermission,
	}

	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}

	for _, sub := range c.Subcommands {
		def.Options = append(def.Options, sub.buildAsOption())
	}

	for _, opt := range c.Options {
		def.Options = append(def.Options, opt.build())
	}

	return def
}

func (c *Command) buildAsOption() *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Name:        c.Name,
		Description: c.Description,
	}

	if len(c.Subcommands) > 0 {
		opt.Type = discordgo.ApplicationCommandOptionSubCommandGroup
		for _, sub := range c.Subcommands {
			opt.Options = append(opt.Options, sub.buildAsOption())
		}

		return opt
	}

	opt.Type = discordgo.ApplicationCommandOptionSubCommand
	for _, o := range c.Options {
		opt.Options = append(opt.Options, o.build())
	}

	return opt
}

// subcommand returns the direct child with the given name, or nil.
func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}

	return nil
}

// option returns the defined option with the given name, or nil.
func (c *Command) option(name string) *Option {
	for _, opt := range c.Options {
		if opt.Name == name {
			return opt
		}
	}

	return nil
}
