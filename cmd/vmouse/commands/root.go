package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/store"
)

var (
	cfgFile   string
	flagDebug bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmouse",
	Short: "Hand gesture virtual mouse",
	Long: `vmouse watches the webcam for a hand and turns finger poses into
cursor movement, clicks, scrolling, drag, volume and screenshots.

Settings can be changed live from the local web UI; they are stored in
~/.vmouse/vmouse.db and override the YAML file.`,
	SilenceUsage: true,
	RunE:         runVmouse,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.vmouse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(eventsCmd)
}

// loadConfig reads --config, or the default file when it exists.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadIfExists(config.DefaultPath())
	}
	if err != nil {
		return nil, err
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg, nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore opens the settings and history database, creating the data
// directory on first use.
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openExistingStore is openStore for read-only commands; it does not create
// a database that is not there yet.
func openExistingStore(cfg *config.Config) (*store.Store, error) {
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		return nil, fmt.Errorf("no database at %s; run vmouse first", filepath.Clean(cfg.DatabasePath()))
	}
	return openStore(cfg)
}
