package appcmd

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		command *Command
		wantErr bool
		field   string
	}{
		{
			name:    "minimal slash command",
			command: NewSlashCommand("ping", "Pong?"),
		},
		{
			name:    "uppercase slash name is folded by constructor",
			command: NewSlashCommand("PING", "Pong?"),
		},
		{
			name:    "missing description",
			command: &Command{Type: discordgo.ChatApplicationCommand, Name: "ping"},
			wantErr: true,
			field:   "description",
		},
		{
			name:    "name too long",
			command: NewSlashCommand(strings.Repeat("a", 33), "desc"),
			wantErr: true,
			field:   "name",
		},
		{
			name:    "name with spaces",
			command: NewSlashCommand("bad name", "desc"),
			wantErr: true,
			field:   "name",
		},
		{
			name:    "context menu keeps case and spaces",
			command: NewUserCommand("Greet User"),
		},
		{
			name: "context menu with description",
			command: &Command{
				Type:        discordgo.MessageApplicationCommand,
				Name:        "Quote",
				Description: "not allowed",
			},
			wantErr: true,
			field:   "description",
		},
		{
			name: "options and subcommands are exclusive",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "math",
				Description: "math ops",
				Options:     []*Option{IntegerOption("x", "x")},
				Subcommands: []*Command{NewSlashCommand("add", "add")},
			},
			wantErr: true,
			field:   "options",
		},
		{
			name: "grouping command with handler",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "math",
				Description: "math ops",
				Subcommands: []*Command{NewSlashCommand("add", "add")},
				Handler:     func(context.Context, *Interaction) error { return nil },
			},
			wantErr: true,
			field:   "handler",
		},
		{
			name: "required option after optional",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "swap",
				Description: "swap",
				Options: []*Option{
					IntegerOption("first", "first"),
					IntegerOption("second", "second").Require(),
				},
			},
			wantErr: true,
			field:   "options",
		},
		{
			name: "choices and autocomplete conflict",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "animal",
				Description: "choose",
				Options: []*Option{
					StringOption("animal", "the animal").
						WithStringChoices("cat", "dog").
						WithAutocomplete(func(context.Context, *Interaction) ([]*Choice, error) { return nil, nil }),
				},
			},
			wantErr: true,
			field:   "option animal",
		},
		{
			name: "min above max",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "roll",
				Description: "roll",
				Options:     []*Option{IntegerOption("sides", "sides").WithBounds(20, 4)},
			},
			wantErr: true,
			field:   "option sides",
		},
		{
			name: "bounds on string option",
			command: &Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "say",
				Description: "say",
				Options: []*Option{
					{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "text", MinValue: ptr(1.0)},
				},
			},
			wantErr: true,
			field:   "option text",
		},
		{
			name: "third nesting level",
			command: NewSlashCommand("a", "a").Group(
				NewSlashCommand("b", "b").Group(
					NewSlashCommand("c", "c").Group(NewSlashCommand("d", "d")),
				),
			),
			wantErr: true,
			field:   "subcommands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.command.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCommandBuildSubcommands(t *testing.T) {
	math := NewSlashCommand("math", "Basic math operations").Group(
		&Command{
			Type:        discordgo.ChatApplicationCommand,
			Name:        "add",
			Description: "Sum of x + y",
			Options: []*Option{
				IntegerOption("x", "Value of x").Require(),
				IntegerOption("y", "Value of y").Require(),
			},
		},
	)
	require.NoError(t, math.Validate())

	def := math.Build()
	require.Len(t, def.Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, def.Options[0].Type)
	assert.Equal(t, "add", def.Options[0].Name)
	require.Len(t, def.Options[0].Options, 2)
	assert.True(t, def.Options[0].Options[0].Required)
}

func TestCommandBuildSubcommandGroup(t *testing.T) {
	root := NewSlashCommand("config", "Configure the bot").Group(
		NewSlashCommand("feed", "Feed settings").Group(
			&Command{
				Type:        discordgo.ChatApplicationCommand,
				Name:        "enable",
				Description: "Enable the feed",
			},
		),
	)
	require.NoError(t, root.Validate())

	def := root.Build()
	require.Len(t, def.Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, def.Options[0].Type)
	require.Len(t, def.Options[0].Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, def.Options[0].Options[0].Type)
}

func TestOptionBuild(t *testing.T) {
	opt := StringOption("animal", "The animal to choose").
		Require().
		WithAutocomplete(func(context.Context, *Interaction) ([]*Choice, error) { return nil, nil })

	built := opt.build()
	assert.Equal(t, discordgo.ApplicationCommandOptionString, built.Type)
	assert.True(t, built.Required)
	assert.True(t, built.Autocomplete)
	assert.Empty(t, built.Choices)

	bounded := IntegerOption("sides", "Number of sides").WithBounds(2, 120)
	built = bounded.build()
	require.NotNil(t, built.MinValue)
	assert.Equal(t, 2.0, *built.MinValue)
	assert.Equal(t, 120.0, built.MaxValue)
}

func ptr[T any](v T) *T { return &v }
