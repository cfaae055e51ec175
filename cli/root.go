// Package cli implements the ghostconf command line.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ghostconf/catalog"
	"ghostconf/logging"
	"ghostconf/preset"
	"ghostconf/settings"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool
	dataDir    string
	storage    string
)

var rootCmd = &cobra.Command{
	Use:   "ghostconf",
	Short: "Edit, normalize and share Ghostty terminal configs",
	Long: `ghostconf reads and writes Ghostty "key = value" config files, keeps a
local collection of named presets next to a community catalog, and serves
both over an HTTP API with try-out shells.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

// Execute runs the root command and reports a failure to the user.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file (.yaml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "log in JSON")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the preset store")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "", "preset storage backend: file, sqlite or memory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)

// loadSettings layers the command-line flags over the settings file and the
// environment.
func loadSettings() (settings.Settings, error) {
	path, explicit := configPath, configPath != ""
	if !explicit {
		path = settings.DefaultPath()
	}
	s, err := settings.Load(path, explicit)
	if err != nil {
		return settings.Settings{}, err
	}
	if dataDir != "" {
		s.DataDir = dataDir
	}
	if storage != "" {
		s.Storage = storage
	}
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

// env is what the preset commands run against.
type env struct {
	settings settings.Settings
	catalog  *catalog.Catalog
	presets  *preset.Manager
	close    func() error
}

func newCatalog(s settings.Settings) *catalog.Catalog {
	fetcher := catalog.NewHTTPFetcher(time.Duration(s.Catalog.Timeout), s.Catalog.RatePerSecond)
	return catalog.New(fetcher, s.Catalog.URL)
}

// openEnv loads the settings and opens the store. With refresh set it also
// fetches the remote catalog index; commands that only touch local presets
// skip it and see the bundled catalog, which never changes a local id.
// Callers must call close.
func openEnv(ctx context.Context, refresh bool) (*env, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := s.OpenStore()
	if err != nil {
		return nil, err
	}
	cat := newCatalog(s)
	if refresh {
		cat.Refresh(ctx)
	}
	return &env{
		settings: s,
		catalog:  cat,
		presets:  preset.NewManager(store, cat),
		close:    closeStore,
	}, nil
}
