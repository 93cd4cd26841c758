package appcmd

import (
	"fmt"
	"sort"
	"sync"
)

// Tree groups application commands for batch registration, holding one
// global set and one set per guild. A command's scope is its own GuildID,
// falling back to the tree's default guild ID.
type Tree struct {
	name           string
	defaultGuildID string

	mu     sync.RWMutex
	global map[string]*Command
	guilds map[string]map[string]*Command
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithDefaultGuildID makes commands without an explicit guild ID register
// against the given guild instead of globally.
func WithDefaultGuildID(guildID string) TreeOption {
	return func(t *Tree) {
		t.defaultGuildID = guildID
	}
}

// NewTree returns an empty command tree.
func NewTree(name string, opts ...TreeOption) *Tree {
	tree := &Tree{
		name:   name,
		global: make(map[string]*Command),
		guilds: make(map[string]map[string]*Command),
	}

	for _, opt := range opts {
		opt(tree)
	}

	return tree
}

// Name returns the tree's name.
func (t *Tree) Name() string {
	return t.name
}

func commandKey(cmd *Command) string {
	return fmt.Sprintf("%d/%s", cmd.Type, cmd.Name)
}

// Add validates the command and places it in its scope. Adding a command
// whose type and name already exist in the same scope returns
// ErrDuplicateCommand and leaves the tree unchanged.
func (t *Tree) Add(cmd *Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	guildID := cmd.GuildID
	if guildID == "" {
		guildID = t.defaultGuildID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	scope := t.global
	if guildID != "" {
		if t.guilds[guildID] == nil {
			t.guilds[guildID] = make(map[string]*Command)
		}
		scope = t.guilds[guildID]
	}

	key := commandKey(cmd)
	if _, exists := scope[key]; exists {
		scopeName := "global scope"
		if guildID != "" {
			scopeName = "guild " + guildID
		}

		return fmt.Errorf("%w: %q in %s", ErrDuplicateCommand, cmd.Name, scopeName)
	}

	scope[key] = cmd

	return nil
}

// AddAll adds every command, stopping at the first error.
func (t *Tree) AddAll(cmds ...*Command) error {
	for _, cmd := range cmds {
		if err := t.Add(cmd); err != nil {
			return err
		}
	}

	return nil
}

// Commands returns every command in the tree, global first, then per guild.
func (t *Tree) Commands() []*Command {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := sortedCommands(t.global)
	for _, guildID := range t.lockedGuildIDs() {
		out = append(out, sortedCommands(t.guilds[guildID])...)
	}

	return out
}

// GlobalCommands returns the commands registered globally, sorted by name.
func (t *Tree) GlobalCommands() []*Command {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return sortedCommands(t.global)
}

// GuildCommands returns the commands registered for the given guild,
// sorted by name.
func (t *Tree) GuildCommands(guildID string) []*Command {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return sortedCommands(t.guilds[guildID])
}

// GuildIDs returns the guilds this tree holds commands for, sorted.
func (t *Tree) GuildIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lockedGuildIDs()
}

func (t *Tree) lockedGuildIDs() []string {
	ids := make([]string, 0, len(t.guilds))
	for id := range t.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func sortedCommands(scope map[string]*Command) []*Command {
	out := make([]*Command, 0, len(scope))
	for _, cmd := range scope {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})

	return out
}
