package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tinwheel/dicebox/internal/dice"
	"github.com/tinwheel/dicebox/internal/history"
)

var rollCmd = &cobra.Command{
	Use:   "roll [expression]",
	Short: "Roll a dice expression",
	Long:  "Evaluate a dice expression such as 2d6+3, 4d6k3, d20, 3d6!, d%, or 4dF.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoll,
}

func init() {
	rollCmd.Flags().Int64("seed", 0, "Seed for a reproducible roll (0 = random)")
	rollCmd.Flags().Int("times", 1, "Number of times to roll the expression")
	rollCmd.Flags().String("format", "text", "Output format: text, json")
	rootCmd.AddCommand(rollCmd)
}

func runRoll(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetInt64("seed")
	times, _ := cmd.Flags().GetInt("times")
	format, _ := cmd.Flags().GetString("format")
	if times < 1 {
		times = 1
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	results := make([]dice.Result, 0, times)
	for i := 0; i < times; i++ {
		var result dice.Result
		var err error
		if seed != 0 {
			result, err = dice.ParseSeeded(args[0], seed+int64(i))
		} else {
			result, err = dice.Parse(args[0])
		}
		if err != nil {
			return fmt.Errorf("roll failed: %w", err)
		}
		results = append(results, result)

		if store != nil {
			entry := history.Entry{
				ID:         uuid.NewString(),
				Expression: result.Expression,
				Total:      result.Total,
				Breakdown:  result.Breakdown,
				RolledAt:   time.Now().UTC(),
			}
			if err := store.Record(cmd.Context(), entry); err != nil {
				log.Printf("record roll history: %v", err)
			}
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		printResults(results)
	}

	return nil
}
