package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/markdown"
	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/route"
	"github.com/foomo/contentserver-pages/service"
	"github.com/foomo/contentserver-pages/service/vo"
)

// ErrNotFound covers both a gated slug and a missing page document.
var ErrNotFound = errors.New("page not found")

// Pages runs the render pipeline for one request: gate, fetch, assemble.
type Pages struct {
	logger    *zap.Logger
	service   service.Service
	assembler *render.Assembler
	footer    templ.Component
	metrics   *Metrics
}

func NewPages(logger *zap.Logger, svc service.Service, assembler *render.Assembler, footer templ.Component, metrics *Metrics) *Pages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pages{
		logger:    logger,
		service:   svc,
		assembler: assembler,
		footer:    footer,
		metrics:   metrics,
	}
}

// Load returns ErrNotFound without touching the store when the gate rejects
// the slug, and without assembling when the store has no document.
func (p *Pages) Load(ctx context.Context, r route.Route, slug string) (*vo.PageDocument, []render.Block, error) {
	if slug == "" || !r.Allowlist.Allows(slug) {
		p.metrics.Rendered(r.Name, OutcomeGated)
		p.logger.Debug("slug rejected by route", zap.String("route", r.Name), zap.String("slug", slug))
		return nil, nil, ErrNotFound
	}

	started := time.Now()
	doc, err := p.service.GetPage(ctx, slug)
	p.metrics.ObserveFetch(r.Name, started)
	if err != nil {
		p.metrics.Rendered(r.Name, OutcomeError)
		return nil, nil, fmt.Errorf("failed to fetch page %q: %w", slug, err)
	}
	if doc == nil {
		p.metrics.Rendered(r.Name, OutcomeNotFound)
		p.logger.Debug("page not found", zap.String("route", r.Name), zap.String("slug", slug))
		return nil, nil, ErrNotFound
	}

	blocks := p.assembler.Assemble(doc, render.Options{Exclude: r.Exclude})
	p.metrics.Rendered(r.Name, OutcomeOK)
	return doc, blocks, nil
}

// HTML renders the full page document.
func (p *Pages) HTML(ctx context.Context, r route.Route, slug string) ([]byte, *vo.PageDocument, error) {
	doc, blocks, err := p.Load(ctx, r, slug)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := render.Page(doc.Title, blocks).Render(ctx, &buf); err != nil {
		return nil, nil, fmt.Errorf("failed to render page %q: %w", slug, err)
	}
	return buf.Bytes(), doc, nil
}

// Markdown renders the page and converts its body.
func (p *Pages) Markdown(ctx context.Context, r route.Route, slug string) (vo.Markdown, *vo.PageDocument, error) {
	page, doc, err := p.HTML(ctx, r, slug)
	if err != nil {
		return "", nil, err
	}
	md, _, err := markdown.Convert(page, "body")
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert page %q: %w", slug, err)
	}
	return md, doc, nil
}

// NotFound renders the not found page with the global footer.
func (p *Pages) NotFound(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.NotFound(p.footer).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
