package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/config"
	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/route"
	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/section"
	"github.com/foomo/contentserver-pages/service"
	"github.com/foomo/contentserver-pages/site"
)

// app holds everything built once at startup and shared read-only by all
// requests.
type app struct {
	registry   *schema.Registry
	projection schema.Projection
	routes     []route.Route
	service    service.Service
	assembler  *render.Assembler
	pages      *site.Pages
	gatherer   *prometheus.Registry
}

func newApp(settings config.Settings, logger *zap.Logger) (*app, error) {
	catalog := section.Default()
	registry, err := catalog.Registry()
	if err != nil {
		return nil, err
	}
	table, err := catalog.Table()
	if err != nil {
		return nil, err
	}
	projection, err := catalog.Projection()
	if err != nil {
		return nil, err
	}
	routes, err := route.Load(settings.RoutesFile)
	if err != nil {
		return nil, err
	}
	footerContent, err := config.LoadFooter(settings.FooterFile)
	if err != nil {
		return nil, err
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := site.NewMetrics(gatherer)

	svc := settings.Service(projection, logger.Named("service"))
	footer := section.Footer(footerContent)
	assembler := render.NewAssembler(table, section.Hero, footer,
		render.WithLogger(logger.Named("render")),
		render.WithUnknownHook(metrics.UnknownSection),
	)

	for _, r := range routes {
		logger.Debug("route configured",
			zap.String("name", r.Name),
			zap.String("prefix", r.Prefix),
			zap.Bool("gated", r.Allowlist != nil),
		)
	}

	return &app{
		registry:   registry,
		projection: projection,
		routes:     routes,
		service:    svc,
		assembler:  assembler,
		pages:      site.NewPages(logger.Named("site"), svc, assembler, footer, metrics),
		gatherer:   gatherer,
	}, nil
}

func (a *app) route(name string) (route.Route, error) {
	for _, r := range a.routes {
		if r.Name == name {
			return r, nil
		}
	}
	return route.Route{}, fmt.Errorf("unknown route %q", name)
}
