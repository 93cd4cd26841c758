package appcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// API is the slice of the Discord REST surface the syncer needs.
// *discordgo.Session satisfies it.
type API interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandEdit(appID, guildID, cmdID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Syncer reconciles a command tree with the commands registered on Discord.
// Unchanged scopes are skipped via the hash cache; changed scopes are diffed
// command by command and only the drifted entries are written.
type Syncer struct {
	api         API
	cache       HashCache
	limiter     *rate.Limiter
	logger      *zap.Logger
	prune       bool
	bulk        bool
	concurrency int
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithHashCache sets the cache used for scope-level short-circuiting.
func WithHashCache(cache HashCache) SyncerOption {
	return func(s *Syncer) { s.cache = cache }
}

// WithSyncLogger sets the syncer's logger.
func WithSyncLogger(logger *zap.Logger) SyncerOption {
	return func(s *Syncer) { s.logger = logger }
}

// WithPruning makes the syncer delete remote commands that have no local
// definition. Off by default so a partial tree never wipes commands owned
// by another process.
func WithPruning(enabled bool) SyncerOption {
	return func(s *Syncer) { s.prune = enabled }
}

// WithBulkOverwrite replaces the per-command diff with a single bulk
// overwrite call per scope.
func WithBulkOverwrite() SyncerOption {
	return func(s *Syncer) { s.bulk = true }
}

// WithWriteInterval sets the minimum delay between mutating REST calls.
func WithWriteInterval(interval time.Duration) SyncerOption {
	return func(s *Syncer) { s.limiter = rate.NewLimiter(rate.Every(interval), 1) }
}

// WithConcurrency bounds how many scopes sync in parallel.
func WithConcurrency(n int) SyncerOption {
	return func(s *Syncer) { s.concurrency = n }
}

// NewSyncer returns a Syncer with an in-memory cache, a 50ms write interval
// and a parallelism of 4.
func NewSyncer(api API, opts ...SyncerOption) *Syncer {
	syncer := &Syncer{
		api:         api,
		cache:       NewMemoryCache(),
		limiter:     rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		logger:      zap.NewNop(),
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(syncer)
	}

	return syncer
}

// SyncAll reconciles every scope the tree holds: the global scope and each
// guild scope, in parallel.
func (s *Syncer) SyncAll(ctx context.Context, appID string, tree *Tree) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	if cmds := tree.GlobalCommands(); len(cmds) > 0 {
		group.Go(func() error {
			return s.SyncScope(ctx, appID, "", cmds)
		})
	}

	for _, guildID := range tree.GuildIDs() {
		guildID := guildID
		group.Go(func() error {
			return s.SyncScope(ctx, appID, guildID, tree.GuildCommands(guildID))
		})
	}

	return group.Wait()
}

// SyncScope reconciles one scope. An empty guildID means the global scope.
func (s *Syncer) SyncScope(ctx context.Context, appID, guildID string, cmds []*Command) error {
	defs := make([]*discordgo.ApplicationCommand, len(cmds))
	for i, cmd := range cmds {
		defs[i] = cmd.Build()
	}

	hash := scopeHash(defs)
	cacheKey := scopeCacheKey(appID, guildID)

	if cached, err := s.cache.Get(ctx, cacheKey); err != nil {
		s.logger.Warn("hash cache read failed", zap.Error(err), zap.String("scope", scopeName(guildID)))
	} else if cached == hash {
		s.logger.Debug("command scope unchanged, skipping sync", zap.String("scope", scopeName(guildID)))
		return nil
	}

	if s.bulk {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		if _, err := s.api.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
			return fmt.Errorf("bulk overwriting %s: %w", scopeName(guildID), err)
		}
	} else if err := s.reconcile(ctx, appID, guildID, defs); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, cacheKey, hash); err != nil {
		s.logger.Warn("hash cache write failed", zap.Error(err), zap.String("scope", scopeName(guildID)))
	}

	s.logger.Info("command scope synchronized",
		zap.String("scope", scopeName(guildID)),
		zap.Int("commands", len(defs)),
	)

	return nil
}

// reconcile fetches the remote scope and applies the minimal set of
// create/edit/delete calls. Failures on individual commands are collected so
// one bad definition does not block the rest of the scope.
func (s *Syncer) reconcile(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	remote, err := s.api.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("listing commands for %s: %w", scopeName(guildID), err)
	}

	remoteByKey := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByKey[remoteKey(rc)] = rc
	}

	var errs []error

	for _, def := range defs {
		key := remoteKey(def)
		existing, registered := remoteByKey[key]
		delete(remoteByKey, key)

		if registered && MatchKey(existing) == MatchKey(def) {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		if registered {
			if _, err := s.api.ApplicationCommandEdit(appID, guildID, existing.ID, def); err != nil {
				errs = append(errs, fmt.Errorf("updating %q: %w", def.Name, err))
				continue
			}
			s.logger.Info("command updated", zap.String("command", def.Name), zap.String("scope", scopeName(guildID)))
		} else {
			if _, err := s.api.ApplicationCommandCreate(appID, guildID, def); err != nil {
				errs = append(errs, fmt.Errorf("creating %q: %w", def.Name, err))
				continue
			}
			s.logger.Info("command created", zap.String("command", def.Name), zap.String("scope", scopeName(guildID)))
		}
	}

	if s.prune {
		for _, rc := range remoteByKey {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}

			if err := s.api.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
				errs = append(errs, fmt.Errorf("deleting %q: %w", rc.Name, err))
				continue
			}
			s.logger.Info("obsolete command deleted", zap.String("command", rc.Name), zap.String("scope", scopeName(guildID)))
		}
	}

	return errors.Join(errs...)
}

func remoteKey(def *discordgo.ApplicationCommand) string {
	cmdType := def.Type
	if cmdType == 0 {
		cmdType = discordgo.ChatApplicationCommand
	}

	return fmt.Sprintf("%d/%s", cmdType, def.Name)
}

func scopeCacheKey(appID, guildID string) string {
	if guildID == "" {
		return appID + "/global"
	}

	return appID + "/guild/" + guildID
}

func scopeName(guildID string) string {
	if guildID == "" {
		return "global"
	}

	return "guild " + guildID
}
