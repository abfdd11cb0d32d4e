// Package config loads process settings from the environment and the yaml
// files the site is shaped by.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/foomo/contentserver/requests"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/section"
	"github.com/foomo/contentserver-pages/service"
)

const Prefix = "PAGES_"

const (
	BackendContentServer = "contentserver"
	BackendQuery         = "query"
)

type Settings struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	Backend          string `env:"BACKEND" envDefault:"contentserver"`
	ContentServerURL string `env:"CONTENTSERVER_URL" envDefault:"http://localhost:8081"`
	PathPrefix       string `env:"PATH_PREFIX"`
	PageMimeType     string `env:"PAGE_MIME_TYPE"`
	Dimension        string `env:"DIMENSION" envDefault:"default"`

	QueryURL        string `env:"QUERY_URL"`
	QueryAPIVersion string `env:"QUERY_API_VERSION" envDefault:"2021-10-21"`
	QueryDataset    string `env:"QUERY_DATASET" envDefault:"production"`
	QueryToken      string `env:"QUERY_TOKEN"`

	RetryAttempts   uint          `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelay      time.Duration `env:"RETRY_DELAY" envDefault:"100ms"`
	RetryMaxDelay   time.Duration `env:"RETRY_MAX_DELAY" envDefault:"2s"`
	RetryMaxJitter  time.Duration `env:"RETRY_MAX_JITTER" envDefault:"100ms"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerTimeout  time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`

	RoutesFile   string `env:"ROUTES_FILE"`
	FooterFile   string `env:"FOOTER_FILE"`
	TaxonomyFile string `env:"TAXONOMY_FILE"`
	// DBPath enables the admin api when set
	DBPath string `env:"DB_PATH"`
}

// Parse reads PAGES_ prefixed settings. A nil environment reads the process
// environment.
func Parse(environment map[string]string) (Settings, error) {
	var settings Settings
	opts := env.Options{Prefix: Prefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&settings, opts); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s Settings) Validate() error {
	switch s.Backend {
	case BackendContentServer:
		if s.ContentServerURL == "" {
			return fmt.Errorf("%sCONTENTSERVER_URL is required for the %s backend", Prefix, s.Backend)
		}
	case BackendQuery:
		if s.QueryURL == "" || s.QueryDataset == "" {
			return fmt.Errorf("%sQUERY_URL and %sQUERY_DATASET are required for the %s backend", Prefix, Prefix, s.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q, expected %s or %s", s.Backend, BackendContentServer, BackendQuery)
	}
	return nil
}

func (s Settings) Resilience() service.ResilienceSettings {
	return service.ResilienceSettings{
		Attempts:        s.RetryAttempts,
		Delay:           s.RetryDelay,
		MaxDelay:        s.RetryMaxDelay,
		MaxJitter:       s.RetryMaxJitter,
		BreakerFailures: s.BreakerFailures,
		BreakerTimeout:  s.BreakerTimeout,
	}
}

// Service builds the configured page fetcher wrapped in retries and the breaker.
func (s Settings) Service(projection schema.Projection, logger *zap.Logger) service.Service {
	httpClient := &http.Client{Timeout: s.RequestTimeout}
	var svc service.Service
	switch s.Backend {
	case BackendQuery:
		svc = service.NewQueryService(service.QuerySettings{
			BaseURL:    s.QueryURL,
			APIVersion: s.QueryAPIVersion,
			Dataset:    s.QueryDataset,
			Token:      s.QueryToken,
		}, httpClient, projection, logger)
	default:
		svc = service.NewService(service.SiteSettings{
			Env:              &requests.Env{Dimensions: []string{s.Dimension}},
			ContentServerURL: s.ContentServerURL,
			PathPrefix:       s.PathPrefix,
			PageMimeType:     s.PageMimeType,
		}, httpClient, projection, logger)
	}
	return service.WithResilience(svc, s.Resilience(), logger)
}

// DefaultFooter is rendered when no footer file is configured.
func DefaultFooter() section.FooterContent {
	return section.FooterContent{Text: fmt.Sprintf("© %d", time.Now().Year())}
}

// LoadFooter reads the global footer from a yaml file.
func LoadFooter(path string) (section.FooterContent, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultFooter(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return section.FooterContent{}, fmt.Errorf("failed to read footer: %w", err)
	}
	var footer section.FooterContent
	if err := yaml.Unmarshal(data, &footer); err != nil {
		return section.FooterContent{}, fmt.Errorf("failed to parse footer: %w", err)
	}
	return footer, nil
}
