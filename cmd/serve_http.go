package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tinwheel/dicebox/internal/ratelimit"
	mcpserver "github.com/tinwheel/dicebox/mcp"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start MCP HTTP server",
	Long:  "Start the MCP server over HTTP with streamable (/mcp) and SSE (/sse) transports.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	var limiter *ratelimit.Limiter
	limits := ratelimit.Config{
		PerMinute: cfg.RatePerMinute,
		PerHour:   cfg.RatePerHour,
		PerDay:    cfg.RatePerDay,
	}
	if limits.Enabled() {
		limiter = ratelimit.New(limits)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(ctx, addr, cfg.APIKey, limiter, mcpserver.Deps{History: store})
}
