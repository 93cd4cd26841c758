package demo

import (
	"context"
	"testing"

	"slashtree/internal/embeds"
	"slashtree/pkg/appcmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterPopulatesTreeAndRouter(t *testing.T) {
	cog := New(zap.NewNop())
	router := appcmd.NewRouter(appcmd.WithWorkers(0))
	tree := appcmd.NewTree("demo")

	require.NoError(t, cog.Register(router, tree))

	names := make([]string, 0)
	for _, cmd := range tree.GlobalCommands() {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"ping", "math", "animal", "animals", "introduce", "Greet", "Quote"}, names)

	// Registering twice collides on every command name.
	require.ErrorIs(t, cog.Register(appcmd.NewRouter(appcmd.WithWorkers(0)), tree), appcmd.ErrDuplicateCommand)
}

func TestCompleteAnimalFiltersOnTypedText(t *testing.T) {
	cog := New(zap.NewNop())

	choices, err := cog.completeAnimal(context.Background(), &appcmd.Interaction{})
	require.NoError(t, err)
	assert.Len(t, choices, len(cog.animals))

	// The router truncates to Discord's limit; the completer itself does not.
	assert.Greater(t, len(choices), 10)
}

func TestAnimalsPageClampsRange(t *testing.T) {
	cog := New(zap.NewNop())

	embed, components := cog.animalsPage(99)
	require.NotNil(t, embed)
	require.Len(t, components, 1)
	assert.Contains(t, embed.Footer.Text, "Page 3 of 3")

	embed, _ = cog.animalsPage(0)
	assert.Contains(t, embed.Footer.Text, "Page 1 of 3")
}

func TestPagerTargetPage(t *testing.T) {
	page, err := embeds.PagerTargetPage("pager:next:2")
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	_, err = embeds.PagerTargetPage("pager")
	require.Error(t, err)
}
