package mcp

import (
	"encoding/json"
	"net/http"
)

// OAuth 2.0 discovery stubs. dicebox does not run an authorization
// server; these endpoints answer the RFC 8414 / RFC 9728 metadata
// probes some MCP clients issue so they get well-formed JSON instead of
// a 404.

type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

type authorizationServerMetadata struct {
	Issuer                 string   `json:"issuer"`
	ResponseTypesSupported []string `json:"response_types_supported"`
	GrantTypesSupported    []string `json:"grant_types_supported,omitempty"`
}

func registerOAuthMetadata(mux *http.ServeMux) {
	mux.HandleFunc("GET /.well-known/oauth-protected-resource", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, protectedResourceMetadata{
			Resource:               baseURL(r),
			BearerMethodsSupported: []string{"header"},
		})
	})
	mux.HandleFunc("GET /.well-known/oauth-authorization-server", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, authorizationServerMetadata{
			Issuer:                 baseURL(r),
			ResponseTypesSupported: []string{"none"},
		})
	})
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
