package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/service/vo"
)

// QuerySettings address a GROQ query endpoint of a hosted content lake.
type QuerySettings struct {
	BaseURL    string
	APIVersion string
	Dataset    string
	Token      string
}

func (s QuerySettings) endpoint() string {
	version := strings.TrimPrefix(s.APIVersion, "v")
	return strings.TrimRight(s.BaseURL, "/") + "/v" + version + "/data/query/" + url.PathEscape(s.Dataset)
}

type queryService struct {
	settings   QuerySettings
	httpClient *http.Client
	projection schema.Projection
	query      string
	logger     *zap.Logger
}

// NewQueryService fetches pages with a single projected query per slug.
func NewQueryService(settings QuerySettings, httpClient *http.Client, projection schema.Projection, logger *zap.Logger) Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &queryService{
		settings:   settings,
		httpClient: httpClient,
		projection: projection,
		query:      projection.PageQuery(),
		logger:     logger,
	}
}

type queryResponse struct {
	Result map[string]any `json:"result"`
}

func (s *queryService) GetPage(ctx context.Context, slug string) (*vo.PageDocument, error) {
	param, err := json.Marshal(slug)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slug: %w", err)
	}
	values := url.Values{}
	values.Set("query", s.query)
	values.Set("$slug", string(param))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.settings.endpoint()+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.settings.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.settings.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query page %q: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("query page %q failed with status %d: %s", slug, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	if payload.Result == nil {
		s.logger.Debug("no page for slug", zap.String("slug", slug))
		return nil, nil
	}
	return s.projection.Page(payload.Result), nil
}
