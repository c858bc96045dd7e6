package extender

import (
	"sync"

	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/pkg/queue"
)

var (
	instance   *Extender
	instanceMu sync.Mutex

	// newDefault builds the process-wide broker on first access.
	newDefault = func() *Extender {
		cache := profiles.Default()
		return New(cache, profilelink.NewResolver(cache), queue.New())
	}
)

// Instance returns the process-wide broker, creating it on first use. It
// never changes the registered providers.
func Instance() *Extender {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instanceLocked()
}

// GetInstance returns the process-wide broker. When p sets any provider,
// the broker's providers are reset to exactly p, as RegisterProviders does.
// When p is zero the broker is returned unchanged.
//
// Callers registering a subset of providers drop the others; pass all the
// providers you own in one call.
func GetInstance(p Providers) *Extender {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	e := instanceLocked()
	if !p.IsZero() {
		e.RegisterProviders(p)
	}
	return e
}

func instanceLocked() *Extender {
	if instance == nil {
		instance = newDefault()
	}
	return instance
}
