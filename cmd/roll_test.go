package cmd

import (
	"testing"

	"github.com/tinwheel/dicebox/config"
)

func setupRollTest(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	cfg.HistoryEnabled = false
	t.Cleanup(func() {
		rollCmd.Flags().Set("format", "text")
		rollCmd.Flags().Set("seed", "0")
	})
}

func TestRunRollJSONFormat(t *testing.T) {
	setupRollTest(t)
	rollCmd.Flags().Set("format", "json")
	rollCmd.Flags().Set("seed", "42")

	if err := runRoll(rollCmd, []string{"4d6k3"}); err != nil {
		t.Fatalf("runRoll returned error: %v", err)
	}
}

func TestRunRollRejectsMalformedExpression(t *testing.T) {
	setupRollTest(t)

	if err := runRoll(rollCmd, []string{"2d6++"}); err == nil {
		t.Fatal("expected error for malformed expression")
	}
}
