// Package demo is a small cog exercising every interaction kind the bot
// supports: slash commands, subcommands, autocomplete, context menus,
// modals and paged component navigation.
package demo

import (
	"context"
	"fmt"
	"strings"

	"slashtree/internal/embeds"
	"slashtree/internal/logger"
	"slashtree/pkg/appcmd"
	"slashtree/pkg/funcs"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const animalsPerPage = 10

type animal struct {
	name  string
	emoji string
}

type Cog struct {
	logger  *zap.Logger
	animals []animal
}

func New(log *zap.Logger) *Cog {
	return &Cog{
		logger: log,
		animals: []animal{
			{"ant", "🐜"}, {"bear", "🐻"}, {"bird", "🐦"}, {"cat", "🐱"},
			{"cow", "🐮"}, {"dog", "🐶"}, {"duck", "🦆"}, {"elephant", "🐘"},
			{"fox", "🦊"}, {"frog", "🐸"}, {"horse", "🐴"}, {"koala", "🐨"},
			{"lion", "🦁"}, {"monkey", "🐵"}, {"mouse", "🐭"}, {"owl", "🦉"},
			{"panda", "🐼"}, {"penguin", "🐧"}, {"pig", "🐷"}, {"rabbit", "🐰"},
			{"snake", "🐍"}, {"tiger", "🐯"}, {"turtle", "🐢"}, {"whale", "🐳"},
			{"wolf", "🐺"},
		},
	}
}

// Register adds the cog's commands to the tree and wires their handlers,
// component routes and modals into the router.
func (c *Cog) Register(router *appcmd.Router, tree *appcmd.Tree) error {
	commands := c.commands()

	if err := tree.AddAll(commands...); err != nil {
		return fmt.Errorf("adding demo commands: %w", err)
	}

	for _, cmd := range commands {
		if err := router.Register(cmd); err != nil {
			return fmt.Errorf("registering demo commands: %w", err)
		}
	}

	router.ComponentPrefix(embeds.PagerPrefix, c.handleAnimalsPager)

	if err := router.RegisterModal(c.introModal()); err != nil {
		return fmt.Errorf("registering intro modal: %w", err)
	}

	return nil
}

func (c *Cog) commands() []*appcmd.Command {
	ping := appcmd.NewSlashCommand("ping", "Check whether the bot is alive")
	ping.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		return itx.Respond("Pong! 🏓")
	}

	add := appcmd.NewSlashCommand("add", "Add two numbers")
	add.Options = []*appcmd.Option{
		appcmd.IntegerOption("x", "First operand").Require(),
		appcmd.IntegerOption("y", "Second operand").Require(),
	}
	add.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		return itx.Respond(fmt.Sprintf("%d", itx.Int("x")+itx.Int("y")))
	}

	subtract := appcmd.NewSlashCommand("subtract", "Subtract the second number from the first")
	subtract.Options = []*appcmd.Option{
		appcmd.IntegerOption("x", "First operand").Require(),
		appcmd.IntegerOption("y", "Second operand").Require(),
	}
	subtract.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		return itx.Respond(fmt.Sprintf("%d", itx.Int("x")-itx.Int("y")))
	}

	math := appcmd.NewSlashCommand("math", "Basic arithmetic").Group(add).Group(subtract)

	animalCmd := appcmd.NewSlashCommand("animal", "Look up an animal's emoji")
	animalCmd.Options = []*appcmd.Option{
		appcmd.StringOption("name", "The animal to look up").Require().WithAutocomplete(c.completeAnimal),
	}
	animalCmd.Handler = c.handleAnimal
	animalCmd.OnError = func(_ context.Context, itx *appcmd.Interaction, err error) {
		c.logger.Warn("animal lookup failed", zap.Error(err), logger.GuildID(itx.GuildID()))
		_ = itx.RespondEphemeral("I don't know that animal.")
	}

	animalsCmd := appcmd.NewSlashCommand("animals", "Browse every animal I know")
	animalsCmd.Handler = c.handleAnimals

	intro := appcmd.NewSlashCommand("introduce", "Introduce yourself to the server")
	intro.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		return itx.ShowModal(c.introModal())
	}

	greet := appcmd.NewUserCommand("Greet")
	greet.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		target := itx.TargetUser()
		if target == nil {
			return fmt.Errorf("greet target did not resolve")
		}

		return itx.Respond(fmt.Sprintf("👋 Say hello to %s!", target.Mention()))
	}

	quote := appcmd.NewMessageCommand("Quote")
	quote.Handler = func(_ context.Context, itx *appcmd.Interaction) error {
		target := itx.TargetMessage()
		if target == nil {
			return fmt.Errorf("quote target did not resolve")
		}

		return itx.RespondEmbed(embeds.QuoteEmbed(target))
	}

	return []*appcmd.Command{ping, math, animalCmd, animalsCmd, intro, greet, quote}
}

func (c *Cog) handleAnimal(_ context.Context, itx *appcmd.Interaction) error {
	name := strings.ToLower(itx.String("name"))
	for _, candidate := range c.animals {
		if candidate.name == name {
			return itx.Respond(fmt.Sprintf("%s %s", candidate.emoji, candidate.name))
		}
	}

	return fmt.Errorf("unknown animal %q", name)
}

func (c *Cog) completeAnimal(_ context.Context, itx *appcmd.Interaction) ([]*appcmd.Choice, error) {
	typed := strings.ToLower(itx.FocusedValue())

	matches := funcs.Filter(c.animals, func(a animal) bool {
		return strings.Contains(a.name, typed)
	})

	return funcs.Map(matches, func(a animal) *appcmd.Choice {
		return &appcmd.Choice{Name: a.name, Value: a.name}
	}), nil
}

func (c *Cog) handleAnimals(_ context.Context, itx *appcmd.Interaction) error {
	embed, components := c.animalsPage(1)

	return itx.RespondMessage(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
}

func (c *Cog) handleAnimalsPager(_ context.Context, itx *appcmd.Interaction) error {
	page, err := embeds.PagerTargetPage(itx.ComponentData().CustomID)
	if err != nil {
		return err
	}

	embed, components := c.animalsPage(page)

	return itx.UpdateMessage(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
}

func (c *Cog) animalsPage(page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	pages := funcs.Chunk(c.animals, animalsPerPage)
	if page < 1 {
		page = 1
	}
	if page > len(pages) {
		page = len(pages)
	}

	lines := funcs.Map(pages[page-1], func(a animal) string {
		return fmt.Sprintf("%s %s", a.emoji, a.name)
	})

	embed := embeds.ListEmbed("Animals", lines, page, len(pages))

	return embed, embeds.PagerButtons(page, len(pages))
}

func (c *Cog) introModal() *appcmd.Modal {
	return &appcmd.Modal{
		CustomID: "intro",
		Title:    "Introduce yourself",
		Inputs: []*appcmd.TextInput{
			appcmd.ShortInput("name", "What should we call you?"),
			appcmd.ParagraphInput("about", "Tell us about yourself"),
		},
		OnSubmit: func(_ context.Context, itx *appcmd.Interaction, values map[string]string) error {
			return itx.Respond(fmt.Sprintf("Welcome, %s! %s", values["name"], values["about"]))
		},
	}
}
