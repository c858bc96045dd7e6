package views

import (
	"context"
	"testing"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves a fixed set of profiles that tests can swap.
type fakeStore struct {
	list []*profiles.Profile
}

func (s *fakeStore) Refresh(ctx context.Context) error { return nil }

func (s *fakeStore) GetProfiles(profileType string) []*profiles.Profile {
	var out []*profiles.Profile
	for _, p := range s.list {
		if p.Type == profileType {
			out = append(out, p)
		}
	}
	return out
}

func sessionNames(sessions []*Session) []string {
	var names []string
	for _, s := range sessions {
		names = append(names, s.Label())
	}
	return names
}

func TestKind(t *testing.T) {
	assert.Equal(t, "dataset", KindDataset.String())
	assert.Equal(t, "filesystem", KindFilesystem.String())
	assert.Equal(t, "job", KindJob.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())

	k, err := ParseKind("job")
	require.NoError(t, err)
	assert.Equal(t, KindJob, k)

	_, err = ParseKind("uss")
	assert.Error(t, err)
}

func TestAddSessionAddsAndPrunes(t *testing.T) {
	store := &fakeStore{list: []*profiles.Profile{
		{Name: "lpar2", Type: "zosmf"},
		{Name: "lpar1", Type: "zosmf"},
		{Name: "lpar1-ssh", Type: "ssh"},
	}}
	tree := NewSessionTree(KindFilesystem, store, []string{"zosmf", "ssh"}, WithTreeLogger(testutil.DiscardLogger()))

	require.NoError(t, tree.AddSession(context.Background()))
	assert.Equal(t, []string{"lpar1", "lpar1-ssh", "lpar2"}, sessionNames(tree.Sessions()))

	store.list = []*profiles.Profile{
		{Name: "lpar1", Type: "zosmf", Properties: map[string]interface{}{"host": "new"}},
		{Name: "lpar4", Type: "zosmf"},
	}
	require.NoError(t, tree.AddSession(context.Background()))
	assert.Equal(t, []string{"lpar1", "lpar4"}, sessionNames(tree.Sessions()))

	s, ok := tree.Session("lpar1")
	require.True(t, ok)
	assert.Equal(t, "new", s.Profile().Properties["host"], "sessions pick up refreshed profiles")
	assert.Equal(t, KindFilesystem, s.Kind())
	assert.Equal(t, 2, tree.Signals())
}

func TestAddSessionFiltersTypes(t *testing.T) {
	store := &fakeStore{list: []*profiles.Profile{
		{Name: "lpar1", Type: "zosmf"},
		{Name: "lpar1-ssh", Type: "ssh"},
	}}
	tree := NewSessionTree(KindJob, store, []string{"zosmf"}, WithTreeLogger(testutil.DiscardLogger()))

	require.NoError(t, tree.AddSession(context.Background()))
	assert.Equal(t, []string{"lpar1"}, sessionNames(tree.Sessions()))
}

func TestAddSessionCancelled(t *testing.T) {
	tree := NewSessionTree(KindDataset, &fakeStore{}, []string{"zosmf"}, WithTreeLogger(testutil.DiscardLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tree.AddSession(ctx), context.Canceled)
	assert.Equal(t, 0, tree.Signals())
}

func TestOnChange(t *testing.T) {
	store := &fakeStore{list: []*profiles.Profile{{Name: "lpar1", Type: "zosmf"}}}
	tree := NewSessionTree(KindDataset, store, []string{"zosmf"}, WithTreeLogger(testutil.DiscardLogger()))

	var gotKind Kind = -1
	var got []string
	tree.OnChange(func(kind Kind, sessions []*Session) {
		gotKind = kind
		got = sessionNames(sessions)
	})

	require.NoError(t, tree.AddSession(context.Background()))
	assert.Equal(t, KindDataset, gotKind)
	assert.Equal(t, []string{"lpar1"}, got)
}

func TestSessionNodesResolve(t *testing.T) {
	store := &fakeStore{list: []*profiles.Profile{{Name: "lpar1", Type: "zosmf"}}}
	tree := NewSessionTree(KindDataset, store, []string{"zosmf"}, WithTreeLogger(testutil.DiscardLogger()))
	require.NoError(t, tree.AddSession(context.Background()))

	session, ok := tree.Session("lpar1")
	require.True(t, ok)
	member := NewItem("USER.JCL(TEST)", NewItem("USER.JCL", session))

	assert.Equal(t, "lpar1", profilelink.ProfileNameOf(member))
	assert.Nil(t, session.Parent())
}

func TestBuildTrees(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(testutil.SampleConfigYAML))
	require.NoError(t, err)
	cfg.Views.Job.Disabled = true

	trees := BuildTrees(cfg, &fakeStore{}, WithTreeLogger(testutil.DiscardLogger()))
	require.Len(t, trees, 2)
	assert.Equal(t, []string{"zosmf", "ssh"}, trees[KindFilesystem].ProfileTypes())
	_, ok := trees[KindJob]
	assert.False(t, ok)

	defaults := BuildTrees(nil, &fakeStore{}, WithTreeLogger(testutil.DiscardLogger()))
	require.Len(t, defaults, 3)
	assert.Equal(t, []string{"zosmf"}, defaults[KindJob].ProfileTypes())
}

func TestProviderFunc(t *testing.T) {
	called := false
	var p Provider = ProviderFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, p.AddSession(context.Background()))
	assert.True(t, called)
}

func TestNilTreeAddSession(t *testing.T) {
	var tree *SessionTree
	assert.NoError(t, tree.AddSession(context.Background()))
}
