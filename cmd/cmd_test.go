package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/pkg/views"
	"github.com/grovetools/extender/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against a fresh sample project.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := testutil.SetupProject(t, testutil.SampleConfigYAML)
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--config", filepath.Join(dir, "extender.yml")))
	err := root.Execute()
	return buf.String(), err
}

func TestProfilesListJSON(t *testing.T) {
	out, err := run(t, "profiles", "list", "--json")
	require.NoError(t, err)

	var rows []profileRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"lpar1", "lpar2", "lpar3", "lpar1-ssh", "lpar1-tso"}, names)
}

func TestProfilesListFilters(t *testing.T) {
	out, err := run(t, "profiles", "list", "--json", "--type", "zosmf", "--match", "lpar*", "--match", "!lpar3")
	require.NoError(t, err)

	var rows []profileRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"lpar1", "lpar2"}, names)
}

func TestProfilesListTable(t *testing.T) {
	out, err := run(t, "profiles", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "lpar1-tso")
	assert.Contains(t, out, "ssh=lpar1-ssh")
}

func TestProfilesShow(t *testing.T) {
	out, err := run(t, "profiles", "show", "lpar2")
	require.NoError(t, err)
	assert.Contains(t, out, "host: lpar2.example.com")
	assert.Contains(t, out, "# Source:")

	_, err = run(t, "profiles", "show", "lpar9")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProfileNotFound, errors.GetCode(err))
}

func TestProfilesShowConnection(t *testing.T) {
	out, err := run(t, "profiles", "show", "lpar2", "--json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "lpar2.example.com:10443", doc["connection"], "string port is decoded as a number")

	out, err = run(t, "profiles", "show", "lpar1")
	require.NoError(t, err)
	assert.Contains(t, out, "connection: ibmuser@lpar1.example.com:443")
}

func TestProfilesLinked(t *testing.T) {
	out, err := run(t, "profiles", "linked", "lpar1", "ssh")
	require.NoError(t, err)
	assert.Contains(t, out, "lpar1-ssh")

	_, err = run(t, "profiles", "linked", "lpar2", "ssh")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLinkedProfileTypeMismatch, errors.GetCode(err))

	_, err = run(t, "profiles", "linked", "lpar3", "ssh")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLinkedProfileTypeMismatch, errors.GetCode(err))

	_, err = run(t, "profiles", "linked", "lpar1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestProfilesLinkedAll(t *testing.T) {
	out, err := run(t, "profiles", "linked", "lpar1", "--all", "--json")
	require.NoError(t, err)

	var resolved map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &resolved))
	assert.Equal(t, map[string]string{"ssh": "lpar1-ssh", "tso": "lpar1-tso"}, resolved)
}

func TestReload(t *testing.T) {
	out, err := run(t, "reload")
	require.NoError(t, err)
	assert.Contains(t, out, "Reloaded 5 profiles")
	assert.Contains(t, out, "dataset")
	assert.Contains(t, out, "3 sessions")
	assert.Contains(t, out, "4 sessions")
}

func TestReloadPicksUpEdits(t *testing.T) {
	dir := testutil.SetupProject(t, testutil.SampleConfigYAML)
	path := filepath.Join(dir, "extender.yml")

	b, err := newBrokerForPath(t, path)
	require.NoError(t, err)
	require.NoError(t, b.reload(t.Context(), ""))
	assert.Len(t, b.trees[views.KindDataset].Sessions(), 3)

	testutil.WriteFile(t, dir, "extender.yml", `profiles:
  - name: lpar7
    type: zosmf
`)
	require.NoError(t, b.reload(t.Context(), "zosmf"))
	sessions := b.trees[views.KindDataset].Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "lpar7", sessions[0].Label())
}

func newBrokerForPath(t *testing.T, path string) (*broker, error) {
	t.Helper()
	root := NewRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--config", path}))
	return newBroker(root)
}

func TestSchemaCmd(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Extender Configuration")
	assert.Contains(t, out, "profiles")
}

func TestPathsCmd(t *testing.T) {
	out, err := run(t, "paths")
	require.NoError(t, err)

	var p PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, filepath.Join(p.ConfigDir, "extender.yml"), p.GlobalConfig)
	assert.Equal(t, filepath.Join(p.StateDir, "logs"), p.LogDir)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestSchemaCmdLogging(t *testing.T) {
	out, err := run(t, "schema", "--logging")
	require.NoError(t, err)
	assert.Contains(t, out, "Extender Logging Configuration")
}

func TestReloadViewFilter(t *testing.T) {
	out, err := run(t, "reload", "--view", "filesystem")
	require.NoError(t, err)
	assert.Contains(t, out, "4 sessions")
	assert.NotContains(t, out, "3 sessions")

	_, err = run(t, "reload", "--view", "uss")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestParseViews(t *testing.T) {
	kinds, err := parseViews(nil)
	require.NoError(t, err)
	assert.Equal(t, views.Kinds(), kinds)

	kinds, err = parseViews([]string{"job", "dataset", "job"})
	require.NoError(t, err)
	assert.Equal(t, []views.Kind{views.KindDataset, views.KindJob}, kinds)
}
