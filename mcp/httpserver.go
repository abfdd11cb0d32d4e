package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// httpRequestKey is a custom context key for storing the original HTTP request
type httpRequestKey struct{}

func withHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

// HTTPRequestFromContext returns the HTTP request a tool call arrived on, if any
func HTTPRequestFromContext(ctx context.Context) (*http.Request, bool) {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	return req, ok
}

func httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	return withHTTPRequest(ctx, r)
}

// NewHTTPHandler serves the MCP server over streamable HTTP at endpoint
func NewHTTPHandler(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(httpContextFunc),
	)
}
