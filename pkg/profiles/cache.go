package profiles

import (
	"context"
	"sort"
	"sync"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/logging"
	"github.com/sirupsen/logrus"
)

// Store is the profile state the extender refreshes and reads back.
type Store interface {
	// Refresh reloads profiles from their backing source.
	Refresh(ctx context.Context) error
	// GetProfiles returns the cached profiles of one type.
	GetProfiles(profileType string) []*Profile
}

// Loader produces the full set of profiles.
type Loader func(ctx context.Context) ([]*Profile, error)

// snapshot is an immutable view of loaded profiles.
type snapshot struct {
	ordered []*Profile
	byName  map[string]*Profile
	byType  map[string][]*Profile
}

func newSnapshot(list []*Profile) *snapshot {
	s := &snapshot{
		ordered: list,
		byName:  make(map[string]*Profile, len(list)),
		byType:  make(map[string][]*Profile),
	}
	for _, p := range list {
		s.byName[p.Name] = p
		s.byType[p.Type] = append(s.byType[p.Type], p)
	}
	return s
}

// Cache is a Store backed by a Loader. A successful Refresh swaps the whole
// snapshot; a failed one keeps the previous snapshot.
type Cache struct {
	loader Loader
	logger *logrus.Entry

	mu         sync.RWMutex
	snap       *snapshot
	generation uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the logger used by the cache.
func WithCacheLogger(logger *logrus.Entry) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates an empty cache. Nothing is loaded until Refresh.
func NewCache(loader Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader: loader,
		snap:   newSnapshot(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogger("profiles")
	}
	return c
}

// Refresh runs the loader and installs its result.
func (c *Cache) Refresh(ctx context.Context) error {
	list, err := c.loader(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Profile refresh failed, keeping previous profiles")
		return err
	}

	snap := newSnapshot(list)

	c.mu.Lock()
	c.snap = snap
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"profiles":   len(list),
		"generation": gen,
	}).Debug("Profiles refreshed")
	return nil
}

func (c *Cache) current() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// GetProfiles returns the profiles of profileType in load order.
func (c *Cache) GetProfiles(profileType string) []*Profile {
	list := c.current().byType[profileType]
	out := make([]*Profile, len(list))
	copy(out, list)
	return out
}

// Get returns the profile called name.
func (c *Cache) Get(name string) (*Profile, bool) {
	p, ok := c.current().byName[name]
	return p, ok
}

// Default returns the default profile of profileType. When none is flagged
// default the first profile of that type is used.
func (c *Cache) Default(profileType string) (*Profile, bool) {
	list := c.current().byType[profileType]
	for _, p := range list {
		if p.Default {
			return p, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return nil, false
}

// Types returns every profile type present, sorted.
func (c *Cache) Types() []string {
	snap := c.current()
	types := make([]string, 0, len(snap.byType))
	for t := range snap.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// All returns every cached profile in load order.
func (c *Cache) All() []*Profile {
	snap := c.current()
	out := make([]*Profile, len(snap.ordered))
	copy(out, snap.ordered)
	return out
}

// Generation counts successful refreshes.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// ConfigLoader loads profiles from the layered extender config found from
// the working directory.
func ConfigLoader(ctx context.Context) ([]*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg), nil
}

var (
	defaultCache   *Cache
	defaultCacheMu sync.Mutex
)

// Default returns the process-wide cache, creating it with ConfigLoader on
// first use.
func Default() *Cache {
	defaultCacheMu.Lock()
	defer defaultCacheMu.Unlock()
	if defaultCache == nil {
		defaultCache = NewCache(ConfigLoader)
	}
	return defaultCache
}

// SetDefault replaces the process-wide cache.
func SetDefault(c *Cache) {
	defaultCacheMu.Lock()
	defer defaultCacheMu.Unlock()
	defaultCache = c
}
