package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foomo/contentserver-pages/route"
	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/service/vo"
	"github.com/foomo/contentserver-pages/site"
)

const Version = "0.1.0"

type GetPageRequest struct {
	Slug  string `json:"slug"`  // The page slug
	Route string `json:"route"` // Route name, the first route when empty
}

type GetPageResponse struct {
	Document *vo.PageDocument `json:"document"`
	Markdown string           `json:"markdown"`
}

type ListSectionKindsRequest struct{}

type SectionKind struct {
	Kind       vo.Kind `json:"kind"`
	Projection string  `json:"projection"`
}

type ListSectionKindsResponse struct {
	Kinds     []SectionKind `json:"kinds"`
	PageQuery string        `json:"pageQuery"`
}

// NewServer creates a new MCP server with the getPage and listSectionKinds tools
func NewServer(pages *site.Pages, routes []route.Route, registry *schema.Registry, projection schema.Projection) *server.MCPServer {
	s := server.NewMCPServer(
		"Content Pages MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	getPageTool := mcp.NewTool("getPage",
		mcp.WithDescription("Render a landing page by slug and return its document and markdown"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The page slug (e.g., 'freelancers')"),
		),
		mcp.WithString("route",
			mcp.Description("The route the page is served on (e.g., 'landing', 'lp')"),
		),
	)
	s.AddTool(getPageTool, mcp.NewTypedToolHandler(getPageHandler(pages, routes)))

	listSectionKindsTool := mcp.NewTool("listSectionKinds",
		mcp.WithDescription("List the known section kinds with the fields fetched for each"),
	)
	s.AddTool(listSectionKindsTool, mcp.NewTypedToolHandler(listSectionKindsHandler(registry, projection)))

	return s
}

func findRoute(routes []route.Route, name string) (route.Route, bool) {
	if name == "" && len(routes) > 0 {
		return routes[0], true
	}
	for _, r := range routes {
		if r.Name == name {
			return r, true
		}
	}
	return route.Route{}, false
}

func getPageHandler(pages *site.Pages, routes []route.Route) func(ctx context.Context, request mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
		if args.Slug == "" {
			return mcp.NewToolResultError("slug is required"), nil
		}
		r, ok := findRoute(routes, args.Route)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown route %q", args.Route)), nil
		}

		markdown, document, err := pages.Markdown(ctx, r, args.Slug)
		if errors.Is(err, site.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("page %q not found on route %q", args.Slug, r.Name)), nil
		} else if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get page: %v", err)), nil
		}

		return jsonResult(GetPageResponse{Document: document, Markdown: string(markdown)})
	}
}

func listSectionKindsHandler(registry *schema.Registry, projection schema.Projection) func(ctx context.Context, request mcp.CallToolRequest, args ListSectionKindsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListSectionKindsRequest) (*mcp.CallToolResult, error) {
		response := ListSectionKindsResponse{PageQuery: projection.PageQuery()}
		for _, kind := range registry.Kinds() {
			response.Kinds = append(response.Kinds, SectionKind{Kind: kind, Projection: registry.Describe(kind)})
		}
		return jsonResult(response)
	}
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}
