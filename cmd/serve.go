package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	mcpserver "github.com/tinwheel/dicebox/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting dicebox MCP server on stdio...")

	if err := mcpserver.Serve(mcpserver.Deps{History: store}); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return nil
}
