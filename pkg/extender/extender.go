// Package extender is the broker through which extension modules register
// alternative tree-view providers and request coordinated profile reloads.
//
// Reloads are serialized: every ReloadProfiles call submits one cache
// refresh to a FIFO queue that runs a single refresh at a time, waits for
// it, then signals each registered provider in a fixed order (dataset,
// filesystem, job).
package extender

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/pkg/queue"
	"github.com/grovetools/extender/pkg/views"
	"github.com/sirupsen/logrus"
)

// Providers holds the optional view providers. A nil field means no
// provider is registered for that view.
type Providers struct {
	Dataset    views.Provider
	Filesystem views.Provider
	Job        views.Provider
}

// IsZero reports whether no provider is set. A nil pointer stored in a
// field counts as unset.
func (p Providers) IsZero() bool {
	p = p.normalize()
	return p.Dataset == nil && p.Filesystem == nil && p.Job == nil
}

// normalize replaces typed nil providers, such as a nil *views.SessionTree
// for a disabled view, with untyped nils.
func (p Providers) normalize() Providers {
	return Providers{
		Dataset:    orNil(p.Dataset),
		Filesystem: orNil(p.Filesystem),
		Job:        orNil(p.Job),
	}
}

func orNil(p views.Provider) views.Provider {
	if isNil(p) {
		return nil
	}
	return p
}

func isNil(p views.Provider) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Get returns the provider registered for kind, or nil.
func (p Providers) Get(kind views.Kind) views.Provider {
	p = p.normalize()
	switch kind {
	case views.KindDataset:
		return p.Dataset
	case views.KindFilesystem:
		return p.Filesystem
	case views.KindJob:
		return p.Job
	default:
		return nil
	}
}

// FromTrees builds a Providers value from per-view session trees.
func FromTrees(trees map[views.Kind]*views.SessionTree) Providers {
	var p Providers
	if t, ok := trees[views.KindDataset]; ok {
		p.Dataset = t
	}
	if t, ok := trees[views.KindFilesystem]; ok {
		p.Filesystem = t
	}
	if t, ok := trees[views.KindJob]; ok {
		p.Job = t
	}
	return p
}

// ProfileResolver resolves tree nodes to profiles.
type ProfileResolver interface {
	Resolve(node profilelink.Node) (*profiles.Profile, error)
	ResolveLinked(ctx context.Context, node profilelink.Node, profileType string) (*profiles.Profile, error)
}

// ReloadHook receives the profiles of the type named in a reload request,
// after the refresh and before providers are signalled. It cannot change
// which providers are signalled.
type ReloadHook func(ctx context.Context, profileType string, matched []*profiles.Profile)

// Extender is the broker. Use Instance or GetInstance for the process-wide
// broker; New is for hosts and tests that need their own.
type Extender struct {
	store    profiles.Store
	resolver ProfileResolver
	queue    *queue.Queue
	logger   *logrus.Entry
	hook     ReloadHook

	mu        sync.RWMutex
	providers Providers
}

// Option configures an Extender.
type Option func(*Extender)

// WithLogger sets the broker logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(e *Extender) {
		e.logger = logger
	}
}

// WithReloadHook sets the hook run for typed reload requests.
func WithReloadHook(hook ReloadHook) Option {
	return func(e *Extender) {
		e.hook = hook
	}
}

// New creates a broker with no providers.
func New(store profiles.Store, resolver ProfileResolver, q *queue.Queue, opts ...Option) *Extender {
	e := &Extender{
		store:    store,
		resolver: resolver,
		queue:    q,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewLogger("extender")
	}
	if e.hook == nil {
		e.hook = e.logMatched
	}
	return e
}

// RegisterProviders replaces every provider reference with those in p.
// Fields left nil in p are cleared, not preserved.
func (e *Extender) RegisterProviders(p Providers) {
	p = p.normalize()
	e.mu.Lock()
	e.providers = p
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"dataset":    p.Dataset != nil,
		"filesystem": p.Filesystem != nil,
		"job":        p.Job != nil,
	}).Debug("Providers registered")
}

// Providers returns the current provider references.
func (e *Extender) Providers() Providers {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.providers
}

// PendingReloads returns the number of refreshes queued or running.
func (e *Extender) PendingReloads() int {
	n := e.queue.Len()
	if e.queue.InFlight() {
		n++
	}
	return n
}

// GetProfile returns the profile associated with node.
func (e *Extender) GetProfile(node profilelink.Node) (*profiles.Profile, error) {
	return e.resolver.Resolve(node)
}

// GetLinkedProfile returns the profile of profileType linked to the
// profile of node.
func (e *Extender) GetLinkedProfile(ctx context.Context, node profilelink.Node, profileType string) (*profiles.Profile, error) {
	return e.resolver.ResolveLinked(ctx, node, profileType)
}

// ReloadProfiles refreshes the profile cache through the serialized queue
// and then signals every registered provider. profileType may be empty.
//
// A refresh failure is returned as a CACHE_REFRESH error and no provider is
// signalled. If ctx ends while the refresh is still queued or running, the
// call returns early but the refresh still runs in its turn. Provider
// failures do not stop the fan-out; they are returned together as one
// PROVIDER_SIGNAL error.
func (e *Extender) ReloadProfiles(ctx context.Context, profileType string) error {
	log := e.logger.WithField("profile_type", profileType)

	pending := e.queue.Submit(func(taskCtx context.Context) error {
		return e.store.Refresh(taskCtx)
	})
	log.WithField("task", pending.ID()).Debug("Profile refresh queued")

	if err := pending.Wait(ctx); err != nil {
		log.WithError(err).Warn("Profile refresh did not complete")
		return errors.CacheRefresh(err).WithDetail("task", pending.ID())
	}

	if profileType != "" {
		e.hook(ctx, profileType, e.store.GetProfiles(profileType))
	}

	return e.signalProviders(ctx, log)
}

func (e *Extender) signalProviders(ctx context.Context, log *logrus.Entry) error {
	providers := e.Providers()

	var results []errors.SignalResult
	for _, kind := range views.Kinds() {
		p := providers.Get(kind)
		if p == nil {
			continue
		}
		err := signal(ctx, p)
		if err != nil {
			log.WithError(err).WithField("provider", kind.String()).Warn("Provider failed to add sessions")
		}
		results = append(results, errors.SignalResult{Provider: kind.String(), Err: err})
	}

	log.WithField("signalled", len(results)).Debug("Providers signalled")
	return errors.ProviderSignal(results)
}

// signal calls AddSession, turning a panic into an error for that provider.
func signal(ctx context.Context, p views.Provider) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(fmt.Errorf("%v", r), errors.ErrCodeInternal, "provider panicked")
		}
	}()
	return p.AddSession(ctx)
}

func (e *Extender) logMatched(_ context.Context, profileType string, matched []*profiles.Profile) {
	e.logger.WithFields(logrus.Fields{
		"profile_type": profileType,
		"matched":      len(matched),
	}).Debug("Profiles available after reload")
}
