package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinwheel/dicebox/config"
	"github.com/tinwheel/dicebox/internal/history"
	historysqlite "github.com/tinwheel/dicebox/internal/history/sqlite"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dicebox",
	Short: "Dicebox - dice notation CLI & MCP server",
	Long:  "A dice-notation roller usable from the terminal or as an MCP server over stdio, HTTP, and SSE.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite roll-history database")
	rootCmd.PersistentFlags().Bool("no-history", false, "Disable roll history")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.HistoryDB = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("no-history"); v {
		cfg.HistoryEnabled = false
	}
}

// openHistory builds the configured history store: SQLite when a path
// is set, in-memory otherwise. It returns nil when history is disabled.
func openHistory() (history.Store, error) {
	if !cfg.HistoryEnabled {
		return nil, nil
	}
	if cfg.HistoryDB == "" {
		return history.NewMemoryStore(cfg.HistoryKeep), nil
	}
	store, err := historysqlite.Open(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return store, nil
}
