package cmd

import (
	"context"
	"sync"

	"github.com/grovetools/extender/cli"
	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/extender"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/pkg/views"
	"github.com/spf13/cobra"
)

// broker bundles the process-wide extender with the cache and trees it was
// wired to.
type broker struct {
	cfg   *config.Config
	cache *profiles.Cache
	trees map[views.Kind]*views.SessionTree
	ext   *extender.Extender
}

var (
	// configFile is the --config value of the running command. Empty means
	// the layered config found from the working directory.
	configFile   string
	configFileMu sync.RWMutex
	installCache sync.Once
)

func setConfigFile(path string) {
	configFileMu.Lock()
	defer configFileMu.Unlock()
	configFile = path
}

func loadConfig() (*config.Config, error) {
	configFileMu.RLock()
	path := configFile
	configFileMu.RUnlock()

	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// loadProfiles re-reads the configuration on every cache refresh so edits
// show up on the next reload.
func loadProfiles(ctx context.Context) ([]*profiles.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return profiles.FromConfig(cfg), nil
}

// newBroker loads the configuration and registers one session tree per
// enabled view with the process-wide extender. The default cache is
// installed before the extender is first created so both share it.
func newBroker(cmd *cobra.Command) (*broker, error) {
	path, err := cli.ConfigPath(cmd)
	if err != nil {
		return nil, err
	}
	setConfigFile(path)
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	installCache.Do(func() {
		profiles.SetDefault(profiles.NewCache(loadProfiles,
			profiles.WithCacheLogger(logging.NewLogger("profiles"))))
	})
	cache := profiles.Default()

	trees := views.BuildTrees(cfg, cache)
	ext := extender.GetInstance(extender.FromTrees(trees))

	return &broker{cfg: cfg, cache: cache, trees: trees, ext: ext}, nil
}

// reload refreshes the cache and every registered view.
func (b *broker) reload(ctx context.Context, profileType string) error {
	return b.ext.ReloadProfiles(ctx, profileType)
}
