// Package prefs memoizes viewers' hidden preferences in front of the store.
package prefs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/robertmeta/feedq/config"
	"github.com/robertmeta/feedq/model"
)

// Source is the authoritative store of hidden preferences.
type Source interface {
	HiddenPreferences(ctx context.Context, userID int64) (model.HiddenPreferenceSet, error)
	Hide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error
	Unhide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error
}

// Cache holds preference sets by user id. A miss is (zero, false, nil).
type Cache interface {
	Get(ctx context.Context, userID int64) (model.HiddenPreferenceSet, bool, error)
	Set(ctx context.Context, userID int64, set model.HiddenPreferenceSet) error
	Delete(ctx context.Context, userID int64) error
}

// Provider serves hidden preferences from a Cache, falling back to the
// Source. Returned sets are shared and must not be modified.
type Provider struct {
	source Source
	cache  Cache
	logger *slog.Logger

	// gens counts invalidations per user. A load only writes back to the
	// cache when no invalidation happened since it read the Source.
	mu   sync.Mutex
	gens map[int64]uint64
}

// NewProvider creates a Provider. A nil cache disables memoization and a nil
// logger discards.
func NewProvider(source Source, cache Cache, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{source: source, cache: cache, logger: logger, gens: make(map[int64]uint64)}
}

// NewFromConfig builds the Provider cfg describes.
func NewFromConfig(cfg config.PreferencesConfig, source Source, logger *slog.Logger) (*Provider, error) {
	switch cfg.Type {
	case "none":
		return NewProvider(source, nil, logger), nil
	case "memory":
		return NewProvider(source, NewMemoryCache(cfg.Size, cfg.TTL.Duration), logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewProvider(source, NewRedisCache(client, cfg.TTL.Duration), logger), nil
	default:
		return nil, fmt.Errorf("unknown preferences type %q", cfg.Type)
	}
}

// HiddenPreferences returns userID's hidden preferences. Cache failures are
// logged and served from the Source.
func (p *Provider) HiddenPreferences(ctx context.Context, userID int64) (model.HiddenPreferenceSet, error) {
	if p.cache != nil {
		set, ok, err := p.cache.Get(ctx, userID)
		if err != nil {
			p.logger.Warn("preference cache read failed", "user", userID, "error", err)
		} else if ok {
			return set, nil
		}
	}

	gen := p.generation(userID)
	set, err := p.source.HiddenPreferences(ctx, userID)
	if err != nil {
		return model.HiddenPreferenceSet{}, err
	}
	if p.cache != nil {
		p.remember(ctx, userID, gen, set)
	}
	return set, nil
}

func (p *Provider) generation(userID int64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gens[userID]
}

// remember caches set unless userID was invalidated after gen was taken. The
// check and the write share the lock with the generation bump in Invalidate.
func (p *Provider) remember(ctx context.Context, userID int64, gen uint64, set model.HiddenPreferenceSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gens[userID] != gen {
		p.logger.Debug("dropping stale preference load", "user", userID)
		return
	}
	if err := p.cache.Set(ctx, userID, set); err != nil {
		p.logger.Warn("preference cache write failed", "user", userID, "error", err)
	}
}

// Invalidate drops the memoized set of userID. Loads that started before the
// call do not repopulate the cache.
func (p *Provider) Invalidate(ctx context.Context, userID int64) error {
	if p.cache == nil {
		return nil
	}
	p.mu.Lock()
	p.gens[userID]++
	p.mu.Unlock()
	if err := p.cache.Delete(ctx, userID); err != nil {
		return model.Backend("invalidate hidden preferences", err)
	}
	return nil
}

// Hide records the preference and invalidates the viewer's cached set.
func (p *Provider) Hide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error {
	if err := p.source.Hide(ctx, userID, kind, targetID); err != nil {
		return err
	}
	return p.Invalidate(ctx, userID)
}

// Unhide removes the preference and invalidates the viewer's cached set.
func (p *Provider) Unhide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error {
	if err := p.source.Unhide(ctx, userID, kind, targetID); err != nil {
		return err
	}
	return p.Invalidate(ctx, userID)
}
