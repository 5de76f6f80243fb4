package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/store"
	"github.com/eunbi/vaxsight/pkg/config"
	"github.com/eunbi/vaxsight/pkg/database"
	"github.com/eunbi/vaxsight/pkg/logger"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command. Running vaxsight with no
// subcommand starts the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "vaxsight",
	Short: "MCV2 vaccination-coverage insight dashboard",
	Long: `vaxsight ingests the WHO MCV2 vaccination-coverage extract, cleans
and normalizes it into a local SQLite store, and offers interactive
filtering, aggregation, trend analysis, CSV export, and charting.

Examples:
  vaxsight              start the interactive shell
  vaxsight fetch        download the source extract
  vaxsight ingest       clean the extract and replace the stored data
  vaxsight chart trend --country CHN`,
	SilenceUsage: true,
	RunE:         runShell,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a .env config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
}

// setup loads configuration and builds the logger every command starts
// from.
func setup() (*config.Config, *logger.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// openRepo opens the local store. The caller closes the returned DB.
func openRepo(cfg *config.Config, log *logger.Logger) (*database.DB, *store.Repository, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	return db, store.New(db, log), nil
}
