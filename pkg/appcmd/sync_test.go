package appcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements API against an in-memory command store, round-tripping
// stored definitions through JSON the way the live REST layer would.
type fakeAPI struct {
	mu     sync.Mutex
	nextID int
	store  map[string][]*discordgo.ApplicationCommand // keyed by guild ID, "" = global

	creates    int
	edits      int
	deletes    int
	lists      int
	bulkWrites int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{store: make(map[string][]*discordgo.ApplicationCommand)}
}

func (f *fakeAPI) roundTrip(cmd *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	data, _ := json.Marshal(cmd)
	var out discordgo.ApplicationCommand
	_ = json.Unmarshal(data, &out)

	return &out
}

func (f *fakeAPI) ApplicationCommands(_, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists++

	return append([]*discordgo.ApplicationCommand(nil), f.store[guildID]...), nil
}

func (f *fakeAPI) ApplicationCommandCreate(_, guildID string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates++
	f.nextID++

	stored := f.roundTrip(cmd)
	stored.ID = fmt.Sprint(f.nextID)
	f.store[guildID] = append(f.store[guildID], stored)

	return stored, nil
}

func (f *fakeAPI) ApplicationCommandEdit(_, guildID, cmdID string, cmd *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.edits++

	for i, existing := range f.store[guildID] {
		if existing.ID == cmdID {
			stored := f.roundTrip(cmd)
			stored.ID = cmdID
			f.store[guildID][i] = stored

			return stored, nil
		}
	}

	return nil, fmt.Errorf("unknown command %s", cmdID)
}

func (f *fakeAPI) ApplicationCommandDelete(_, guildID, cmdID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes++

	for i, existing := range f.store[guildID] {
		if existing.ID == cmdID {
			f.store[guildID] = append(f.store[guildID][:i], f.store[guildID][i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("unknown command %s", cmdID)
}

func (f *fakeAPI) ApplicationCommandBulkOverwrite(_, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bulkWrites++
	f.store[guildID] = nil
	for _, cmd := range commands {
		f.nextID++
		stored := f.roundTrip(cmd)
		stored.ID = fmt.Sprint(f.nextID)
		f.store[guildID] = append(f.store[guildID], stored)
	}

	return f.store[guildID], nil
}

func testSyncer(api API, opts ...SyncerOption) *Syncer {
	base := []SyncerOption{WithWriteInterval(time.Nanosecond)}
	return NewSyncer(api, append(base, opts...)...)
}

func demoTree(t *testing.T) *Tree {
	t.Helper()

	tree := NewTree("main")

	ping := NewSlashCommand("ping", "Pong?")
	animal := NewSlashCommand("animal", "Choose an animal")
	animal.Options = []*Option{StringOption("animal", "The animal to choose").Require()}
	guild := NewSlashCommand("local", "Guild-scoped command")
	guild.GuildID = "42"

	require.NoError(t, tree.AddAll(ping, animal, guild))

	return tree
}

func TestSyncCreatesMissingCommands(t *testing.T) {
	api := newFakeAPI()
	syncer := testSyncer(api)

	require.NoError(t, syncer.SyncAll(context.Background(), "app", demoTree(t)))

	assert.Equal(t, 3, api.creates)
	assert.Zero(t, api.edits)
	assert.Zero(t, api.deletes)
	assert.Len(t, api.store[""], 2)
	assert.Len(t, api.store["42"], 1)
}

func TestSyncSkipsUnchangedScope(t *testing.T) {
	api := newFakeAPI()
	cache := NewMemoryCache()
	syncer := testSyncer(api, WithHashCache(cache))
	tree := demoTree(t)

	require.NoError(t, syncer.SyncAll(context.Background(), "app", tree))
	lists := api.lists

	require.NoError(t, syncer.SyncAll(context.Background(), "app", tree))

	assert.Equal(t, lists, api.lists, "an unchanged scope must not hit the API at all")
	assert.Equal(t, 3, api.creates)
}

func TestSyncEditsChangedCommand(t *testing.T) {
	api := newFakeAPI()
	syncer := testSyncer(api)
	tree := demoTree(t)

	require.NoError(t, syncer.SyncAll(context.Background(), "app", tree))

	changed := NewTree("main")
	ping := NewSlashCommand("ping", "A different description")
	animal := NewSlashCommand("animal", "Choose an animal")
	animal.Options = []*Option{StringOption("animal", "The animal to choose").Require()}
	require.NoError(t, changed.AddAll(ping, animal))

	require.NoError(t, syncer.SyncScope(context.Background(), "app", "", changed.GlobalCommands()))

	assert.Equal(t, 1, api.edits, "only the drifted command is rewritten")
	assert.Equal(t, 3, api.creates)
}

func TestSyncPrunesObsoleteCommands(t *testing.T) {
	api := newFakeAPI()
	_, err := api.ApplicationCommandCreate("app", "", NewSlashCommand("stale", "No longer defined").Build())
	require.NoError(t, err)

	tree := NewTree("main")
	require.NoError(t, tree.Add(NewSlashCommand("ping", "Pong?")))

	// Without pruning the stale command survives.
	require.NoError(t, testSyncer(api).SyncAll(context.Background(), "app", tree))
	assert.Zero(t, api.deletes)
	assert.Len(t, api.store[""], 2)

	require.NoError(t, testSyncer(api, WithPruning(true)).SyncAll(context.Background(), "app", tree))
	assert.Equal(t, 1, api.deletes)
	require.Len(t, api.store[""], 1)
	assert.Equal(t, "ping", api.store[""][0].Name)
}

func TestSyncBulkOverwrite(t *testing.T) {
	api := newFakeAPI()
	syncer := testSyncer(api, WithBulkOverwrite())

	require.NoError(t, syncer.SyncAll(context.Background(), "app", demoTree(t)))

	assert.Equal(t, 2, api.bulkWrites, "one overwrite per scope")
	assert.Zero(t, api.creates)
	assert.Zero(t, api.lists)
}

func TestSyncConvergesToNoOp(t *testing.T) {
	api := newFakeAPI()
	tree := demoTree(t)

	// Fresh syncer each round: no scope-hash shortcut, the diff itself must
	// find nothing to do against the stored remote state.
	require.NoError(t, testSyncer(api).SyncAll(context.Background(), "app", tree))
	require.NoError(t, testSyncer(api).SyncAll(context.Background(), "app", tree))

	assert.Equal(t, 3, api.creates)
	assert.Zero(t, api.edits)
}

func TestFileCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewFileCache(dir)
	require.NoError(t, first.Set(context.Background(), "app/global", "abc123"))

	second := NewFileCache(dir)
	value, err := second.Get(context.Background(), "app/global")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)

	missing, err := second.Get(context.Background(), "app/guild/1")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
