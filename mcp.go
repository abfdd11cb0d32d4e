package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio or a standalone HTTP address",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, logger)
		if err != nil {
			return err
		}
		s := mcp.NewServer(a.pages, a.routes, a.registry, a.projection)

		if mcpHTTPAddr != "" {
			logger.Info("starting MCP server", zap.String("addr", mcpHTTPAddr))
			return mcp.NewHTTPHandler(s, "/mcp").Start(mcpHTTPAddr)
		}
		logger.Info("starting MCP server in stdio mode")
		return server.ServeStdio(s)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP server address (e.g., ':8080'), stdio when empty")
}
