package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foomo/contentserver-pages/admin"
	"github.com/foomo/contentserver-pages/forms"
	"github.com/foomo/contentserver-pages/freelancers"
	"github.com/foomo/contentserver-pages/mcp"
	"github.com/foomo/contentserver-pages/site"
	"github.com/foomo/contentserver-pages/store/sqlite"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing pages, metrics, MCP and the admin api",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(settings, logger)
	if err != nil {
		return err
	}

	options := site.Options{
		Routes:   a.routes,
		Gatherer: a.gatherer,
		MCP:      mcp.NewHTTPHandler(mcp.NewServer(a.pages, a.routes, a.registry, a.projection), site.MCPEndpoint),
	}

	if settings.DBPath != "" {
		store, err := sqlite.Open(settings.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		taxonomy, err := freelancers.LoadTaxonomy(settings.TaxonomyFile)
		if err != nil {
			return err
		}
		options.Admin = admin.NewHandler(
			logger.Named("admin"),
			forms.NewService(store.FormStore(), logger.Named("forms")),
			freelancers.NewService(store.FreelancerStore(), taxonomy),
		)
		logger.Info("admin api enabled", zap.String("db", store.Path()))
	}

	server := &http.Server{
		Addr:              settings.Addr,
		Handler:           site.NewHandler(logger.Named("http"), a.pages, options),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", zap.String("addr", settings.Addr), zap.String("backend", settings.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
