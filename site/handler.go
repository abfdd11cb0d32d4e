package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/route"
)

const (
	MCPEndpoint = "/mcp"
	AdminPrefix = "/admin/api/"
)

type Options struct {
	Routes []route.Route
	// Gatherer backs /metrics, nil disables the endpoint
	Gatherer prometheus.Gatherer
	// MCP is mounted at MCPEndpoint when set
	MCP http.Handler
	// Admin is mounted below AdminPrefix when set
	Admin http.Handler
}

type handler struct {
	logger *zap.Logger
	pages  *Pages
	routes []route.Route
}

// NewHandler wires the public page routes and the operational endpoints.
func NewHandler(logger *zap.Logger, pages *Pages, options Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{logger: logger, pages: pages, routes: options.Routes}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if options.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(options.Gatherer, promhttp.HandlerOpts{}))
	}
	if options.MCP != nil {
		mux.Handle(MCPEndpoint, options.MCP)
	}
	if options.Admin != nil {
		mux.Handle(AdminPrefix, options.Admin)
	}
	mux.HandleFunc("/", h.servePage)
	return mux
}

func (h *handler) servePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	requestPath := r.URL.Path
	asMarkdown := strings.HasSuffix(requestPath, ".md")
	if asMarkdown {
		requestPath = strings.TrimSuffix(requestPath, ".md")
	}

	rt, slug, ok := route.Match(h.routes, requestPath)
	if !ok {
		h.notFound(w, r)
		return
	}

	if asMarkdown {
		md, _, err := h.pages.Markdown(r.Context(), rt, slug)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
		return
	}

	page, _, err := h.pages.HTML(r.Context(), rt, slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return
	}
	h.logger.Error("failed to serve page", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.NotFound(r.Context())
	if err != nil {
		h.logger.Error("failed to render not found page", zap.Error(err))
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(page)
}
