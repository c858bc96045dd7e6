package cli

import (
	"bytes"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/extender/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("extender", "test")
	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json", "-c", "/tmp/extender.yml"}))

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Equal(t, "/tmp/extender.yml", opts.ConfigFile)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "missing profile",
			err:  errors.ProfileNotFound("lpar9"),
			want: []string{"Profile 'lpar9' not found", "extender profiles list"},
		},
		{
			name: "linked type mismatch",
			err:  errors.LinkedProfileTypeMismatch("lpar2", "ssh"),
			want: []string{"'lpar2' has no linked 'ssh' profile"},
		},
		{
			name: "provider failures",
			err: errors.ProviderSignal([]errors.SignalResult{
				{Provider: "dataset"},
				{Provider: "job", Err: stderrors.New("tree gone")},
			}),
			want: []string{"job view failed to refresh: tree gone"},
		},
		{
			name: "plain error",
			err:  stderrors.New("boom"),
			want: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &ErrorHandler{Out: &buf}
			assert.Equal(t, tt.err, h.Handle(tt.err))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	assert.NoError(t, NewErrorHandler(false).Handle(nil))
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &ErrorHandler{Verbose: true, Out: &buf}
	_ = h.Handle(errors.CacheRefresh(stderrors.New("disk")))

	assert.Contains(t, buf.String(), "Profile reload failed")
	assert.Contains(t, buf.String(), `"code": "CACHE_REFRESH"`)
}

func TestWrapText(t *testing.T) {
	wrapped := wrapText("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", wrapped)
	assert.Equal(t, "short\nlines", wrapText("short\nlines", 20))
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("extender", "Profile broker")
	root.AddCommand(&cobra.Command{Use: "reload", Short: "Reload profiles", Run: func(*cobra.Command, []string) {}})
	ApplyStyledHelpRecursive(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.True(t, strings.Contains(out, "EXTENDER"))
	assert.Contains(t, out, "COMMANDS")
	assert.Contains(t, out, "reload")
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cmd := NewStandardCommand("extender", "test")
	path, err := ConfigPath(cmd)
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, cmd.ParseFlags([]string{"--config", "~/extender.yml"}))
	path, err = ConfigPath(cmd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "extender.yml"), path)
}
