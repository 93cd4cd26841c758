package appcmd

import (
	"encoding/json"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAnimalCommand() *discordgo.ApplicationCommand {
	cmd := NewSlashCommand("animal", "Choose an animal")
	cmd.Options = []*Option{
		StringOption("animal", "The animal to choose").Require(),
		IntegerOption("count", "How many").WithBounds(1, 10).WithChoices(
			&Choice{Name: "one", Value: 1},
			&Choice{Name: "two", Value: 2},
		),
	}

	return cmd.Build()
}

// A freshly built definition and the same definition after a JSON round trip
// (what fetching it back from the API yields) must produce the same key, even
// though integer choice values decode as float64.
func TestMatchKeySurvivesJSONRoundTrip(t *testing.T) {
	local := buildAnimalCommand()

	data, err := json.Marshal(local)
	require.NoError(t, err)

	var remote discordgo.ApplicationCommand
	require.NoError(t, json.Unmarshal(data, &remote))
	remote.ID = "1029384756"
	remote.ApplicationID = "555"
	remote.Version = "3"

	assert.Equal(t, MatchKey(local), MatchKey(&remote))
}

func TestMatchKeyIgnoresOptionOrder(t *testing.T) {
	a := buildAnimalCommand()
	b := buildAnimalCommand()
	b.Options[0], b.Options[1] = b.Options[1], b.Options[0]

	assert.Equal(t, MatchKey(a), MatchKey(b))
}

func TestMatchKeyDetectsChanges(t *testing.T) {
	base := buildAnimalCommand()

	changedDescription := buildAnimalCommand()
	changedDescription.Description = "Pick an animal"
	assert.NotEqual(t, MatchKey(base), MatchKey(changedDescription))

	changedRequired := buildAnimalCommand()
	changedRequired.Options[0].Required = false
	assert.NotEqual(t, MatchKey(base), MatchKey(changedRequired))

	changedBounds := buildAnimalCommand()
	changedBounds.Options[1].MaxValue = 20
	assert.NotEqual(t, MatchKey(base), MatchKey(changedBounds))

	droppedChoice := buildAnimalCommand()
	droppedChoice.Options[1].Choices = droppedChoice.Options[1].Choices[:1]
	assert.NotEqual(t, MatchKey(base), MatchKey(droppedChoice))
}

func TestMatchKeyDefaultsMatchExplicitValues(t *testing.T) {
	implicit := &discordgo.ApplicationCommand{Name: "ping", Description: "Pong?"}

	explicit := &discordgo.ApplicationCommand{
		Type:         discordgo.ChatApplicationCommand,
		Name:         "ping",
		Description:  "Pong?",
		DMPermission: ptr(true),
	}

	assert.Equal(t, MatchKey(implicit), MatchKey(explicit))
}

func TestScopeHashIgnoresCommandOrder(t *testing.T) {
	ping := NewSlashCommand("ping", "Pong?").Build()
	animal := buildAnimalCommand()

	a := scopeHash([]*discordgo.ApplicationCommand{ping, animal})
	b := scopeHash([]*discordgo.ApplicationCommand{animal, ping})
	assert.Equal(t, a, b)

	c := scopeHash([]*discordgo.ApplicationCommand{ping})
	assert.NotEqual(t, a, c)
}
