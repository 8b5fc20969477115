package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent rolls",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of rolls to show")
	historyCmd.Flags().String("format", "text", "Output format: text, json")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	if !cfg.HistoryEnabled {
		return fmt.Errorf("roll history is disabled")
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database configured; pass --db or set DICEBOX_HISTORY_DB")
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		printHistoryTable(entries)
	}

	return nil
}
