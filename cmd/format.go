package cmd

import (
	"fmt"
	"os"

	"github.com/tinwheel/dicebox/internal/dice"
	"github.com/tinwheel/dicebox/internal/history"
)

// printResults prints roll outcomes in a human-friendly layout.
func printResults(results []dice.Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %s\n", r.Expression)
		fmt.Fprintf(os.Stdout, "    %s\n", r.Breakdown)
		fmt.Fprintf(os.Stdout, "    Total: %d\n", r.Total)
	}
}

// printHistoryTable prints history entries, newest first.
func printHistoryTable(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No rolls recorded yet.")
		return
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		header := fmt.Sprintf(" %d. %s = %d", i+1, e.Expression, e.Total)
		if e.Label != "" {
			header += fmt.Sprintf("  (%s)", e.Label)
		}
		fmt.Fprintln(os.Stdout, header)
		fmt.Fprintf(os.Stdout, "    %s\n", e.Breakdown)
		fmt.Fprintf(os.Stdout, "    %s\n", e.RolledAt.Local().Format("2006-01-02 15:04:05"))
	}
}
