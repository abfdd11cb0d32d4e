package site

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/foomo/contentserver-pages/service/vo"
)

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeGated    = "gated"
	OutcomeError    = "error"
)

const (
	// MaxUnknownKinds bounds the kind label of unknown_sections_total, later
	// kinds are counted as OtherKind.
	MaxUnknownKinds = 50
	OtherKind       = "other"
)

// Metrics is safe to use as a nil pointer, every method is then a no-op.
type Metrics struct {
	rendered *prometheus.CounterVec
	unknown  *prometheus.CounterVec
	fetch    *prometheus.HistogramVec

	mu           sync.Mutex
	unknownKinds map[vo.Kind]struct{}
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		rendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pages_rendered_total",
			Help: "Page renders by route and outcome.",
		}, []string{"route", "outcome"}),
		unknown: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unknown_sections_total",
			Help: "Sections skipped because their kind has no renderer.",
		}, []string{"kind"}),
		fetch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "page_fetch_duration_seconds",
			Help:    "Duration of page document fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		unknownKinds: map[vo.Kind]struct{}{},
	}
}

func (m *Metrics) Rendered(route, outcome string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(route, outcome).Inc()
}

// UnknownSection matches the assembler's unknown-kind hook.
func (m *Metrics) UnknownSection(kind vo.Kind) {
	if m == nil {
		return
	}
	m.unknown.WithLabelValues(m.unknownLabel(kind)).Inc()
}

func (m *Metrics) unknownLabel(kind vo.Kind) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.unknownKinds[kind]; ok {
		return string(kind)
	}
	if len(m.unknownKinds) >= MaxUnknownKinds {
		return OtherKind
	}
	m.unknownKinds[kind] = struct{}{}
	return string(kind)
}

func (m *Metrics) ObserveFetch(route string, started time.Time) {
	if m == nil {
		return
	}
	m.fetch.WithLabelValues(route).Observe(time.Since(started).Seconds())
}
