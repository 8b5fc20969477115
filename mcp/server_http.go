package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/tinwheel/dicebox/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

// ServeHTTP starts the MCP server over HTTP, exposing the streamable
// transport on /mcp and the SSE transport on /sse, with optional Bearer
// token auth and per-client rate limiting. The server shuts down
// gracefully when ctx is cancelled.
func ServeHTTP(ctx context.Context, addr, apiKey string, limiter *ratelimit.Limiter, deps Deps) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     newHTTPHandler(apiKey, limiter, deps),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: SSE streams stay open indefinitely.
		IdleTimeout: 120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("dicebox MCP HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHTTPHandler builds the HTTP mux: the streamable MCP transport on
// /mcp, the SSE transport on /sse with its message endpoint on
// /sse/message, plus health and OAuth discovery endpoints.
func newHTTPHandler(apiKey string, limiter *ratelimit.Limiter, deps Deps) http.Handler {
	s := newServer(deps)

	streamable := server.NewStreamableHTTPServer(s, server.WithStateLess(true))
	sse := server.NewSSEServer(s,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/sse/message"),
	)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	registerOAuthMetadata(mux)

	var mcpHandler http.Handler = streamable
	var sseHandler http.Handler = sse
	if limiter != nil {
		mcpHandler = limiter.Middleware(mcpHandler)
		sseHandler = limiter.Middleware(sseHandler)
	}
	if apiKey != "" {
		mcpHandler = bearerAuth(apiKey, mcpHandler)
		sseHandler = bearerAuth(apiKey, sseHandler)
	}
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/sse", sseHandler)
	mux.Handle("/sse/", sseHandler)

	return mux
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
