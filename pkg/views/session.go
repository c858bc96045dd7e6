package views

import (
	"context"
	"sort"
	"sync"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/sirupsen/logrus"
)

// Session is the root node of a profile inside a tree view.
type Session struct {
	kind    Kind
	profile *profiles.Profile
}

// Kind returns the view the session belongs to.
func (s *Session) Kind() Kind { return s.kind }

// Profile returns the profile the session was built from.
func (s *Session) Profile() *profiles.Profile { return s.profile }

func (s *Session) Label() string            { return s.profile.Name }
func (s *Session) ProfileName() string      { return s.profile.Name }
func (s *Session) Parent() profilelink.Node { return nil }

// Item is a non-root node below a session, such as a data set or a job.
type Item struct {
	label  string
	parent profilelink.Node
}

// NewItem creates a child node under parent.
func NewItem(label string, parent profilelink.Node) *Item {
	return &Item{label: label, parent: parent}
}

func (i *Item) Label() string            { return i.label }
func (i *Item) ProfileName() string      { return "" }
func (i *Item) Parent() profilelink.Node { return i.parent }

// SessionTree is a Provider that keeps one session per profile of the
// accepted types.
type SessionTree struct {
	kind   Kind
	store  profiles.Store
	types  []string
	logger *logrus.Entry

	mu       sync.RWMutex
	sessions map[string]*Session
	onChange func(Kind, []*Session)
	signals  int
}

// TreeOption configures a SessionTree.
type TreeOption func(*SessionTree)

// WithTreeLogger sets the logger used by the tree.
func WithTreeLogger(logger *logrus.Entry) TreeOption {
	return func(t *SessionTree) {
		t.logger = logger
	}
}

// NewSessionTree creates an empty tree for kind showing profiles of
// profileTypes read from store.
func NewSessionTree(kind Kind, store profiles.Store, profileTypes []string, opts ...TreeOption) *SessionTree {
	t := &SessionTree{
		kind:     kind,
		store:    store,
		types:    append([]string(nil), profileTypes...),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewLogger("views").WithField("view", kind.String())
	}
	return t
}

// Kind returns the view kind.
func (t *SessionTree) Kind() Kind { return t.kind }

// ProfileTypes returns the accepted profile types.
func (t *SessionTree) ProfileTypes() []string {
	return append([]string(nil), t.types...)
}

// AddSession syncs sessions with the store. Profiles that appeared get a
// session, sessions whose profile vanished are pruned, and the remaining
// sessions pick up the refreshed profile.
func (t *SessionTree) AddSession(ctx context.Context) error {
	// A nil tree stands for a disabled view.
	if t == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	current := make(map[string]*profiles.Profile)
	for _, profileType := range t.types {
		for _, p := range t.store.GetProfiles(profileType) {
			current[p.Name] = p
		}
	}

	t.mu.Lock()
	var added, removed int
	for name := range t.sessions {
		if _, ok := current[name]; !ok {
			delete(t.sessions, name)
			removed++
		}
	}
	for name, p := range current {
		if _, ok := t.sessions[name]; !ok {
			added++
		}
		t.sessions[name] = &Session{kind: t.kind, profile: p}
	}
	t.signals++
	onChange := t.onChange
	snapshot := t.sortedLocked()
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"added":    added,
		"removed":  removed,
		"sessions": len(snapshot),
	}).Debug("Sessions synced")

	if onChange != nil {
		onChange(t.kind, snapshot)
	}
	return nil
}

// Sessions returns the sessions sorted by profile name.
func (t *SessionTree) Sessions() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedLocked()
}

// Session returns the session for a profile.
func (t *SessionTree) Session(name string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[name]
	return s, ok
}

// Signals counts AddSession calls that ran.
func (t *SessionTree) Signals() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.signals
}

// OnChange registers fn to run after every sync. fn runs on the caller of
// AddSession and must not block.
func (t *SessionTree) OnChange(fn func(Kind, []*Session)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

func (t *SessionTree) sortedLocked() []*Session {
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].profile.Name < out[j].profile.Name
	})
	return out
}

var defaultProfileTypes = []string{"zosmf"}

// BuildTrees creates a tree per enabled view from cfg. Views without
// configured profile types show zosmf profiles.
func BuildTrees(cfg *config.Config, store profiles.Store, opts ...TreeOption) map[Kind]*SessionTree {
	var viewsCfg config.ViewsConfig
	if cfg != nil && cfg.Views != nil {
		viewsCfg = *cfg.Views
	}

	byKind := map[Kind]*config.ViewConfig{
		KindDataset:    viewsCfg.Dataset,
		KindFilesystem: viewsCfg.Filesystem,
		KindJob:        viewsCfg.Job,
	}

	trees := make(map[Kind]*SessionTree)
	for _, kind := range Kinds() {
		vc := byKind[kind]
		if vc != nil && vc.Disabled {
			continue
		}
		types := defaultProfileTypes
		if vc != nil && len(vc.ProfileTypes) > 0 {
			types = vc.ProfileTypes
		}
		trees[kind] = NewSessionTree(kind, store, types, opts...)
	}
	return trees
}
