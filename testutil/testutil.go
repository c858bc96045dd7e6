package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// SampleConfigYAML is a small extender.yml with linked and unlinked profiles.
//
//   - lpar1 (zosmf, default) links ssh -> lpar1-ssh and tso -> lpar1-tso
//   - lpar2 (zosmf) links nothing
//   - lpar3 (zosmf) links ssh -> lpar2, which is not an ssh profile
//   - lpar1-ssh (ssh), lpar1-tso (tso)
const SampleConfigYAML = `version: "1.0"
profiles:
  - name: lpar1
    type: zosmf
    default: true
    properties:
      host: lpar1.example.com
      port: 443
      user: ibmuser
      reject_unauthorized: true
    links:
      ssh: lpar1-ssh
      tso: lpar1-tso
  - name: lpar2
    type: zosmf
    properties:
      host: lpar2.example.com
      port: "10443"
  - name: lpar3
    type: zosmf
    properties:
      host: lpar3.example.com
    links:
      ssh: lpar2
  - name: lpar1-ssh
    type: ssh
    properties:
      host: lpar1.example.com
      port: 22
  - name: lpar1-tso
    type: tso
    properties:
      account: ACCT#
views:
  dataset:
    profile_types: [zosmf]
  filesystem:
    profile_types: [zosmf, ssh]
  job:
    profile_types: [zosmf]
`

// DiscardLogger returns a logger that writes nowhere, for components that
// would otherwise build a configured logger.
func DiscardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger)
}

// IsolateHome points EXTENDER_HOME and XDG_CONFIG_HOME at a fresh temporary
// directory so tests never read the developer's global configuration.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("EXTENDER_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// SetupProject creates an isolated project directory containing an
// extender.yml with the given content and returns the directory.
func SetupProject(t *testing.T, configYAML string) string {
	t.Helper()

	IsolateHome(t)
	dir := t.TempDir()
	WriteFile(t, dir, "extender.yml", configYAML)
	return dir
}

// RandomString generates a random string of the specified length
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
