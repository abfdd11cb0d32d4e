package service

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/service/vo"
)

// Service fetches page documents. GetPage returns nil without an error when no
// page matches the slug.
type Service interface {
	GetPage(ctx context.Context, slug string) (*vo.PageDocument, error)
}

// contentClient is the part of the content server client the service needs.
type contentClient interface {
	GetContent(ctx context.Context, request *requests.Content) (*content.SiteContent, error)
}

type service struct {
	client       contentClient
	siteSettings SiteSettings
	projection   schema.Projection
	logger       *zap.Logger
}

type SiteSettings struct {
	Env              *requests.Env
	ContentServerURL string
	// PathPrefix is prepended to the slug to build the content URI
	PathPrefix string
	// PageMimeType restricts matches to page items, empty accepts any
	PageMimeType string
}

func (siteSettings SiteSettings) uri(slug string) string {
	return path.Join("/", siteSettings.PathPrefix, strings.Trim(slug, "/"))
}

func NewService(
	siteSettings SiteSettings,
	httpClient *http.Client,
	projection schema.Projection,
	logger *zap.Logger,
) Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	contentServerClient := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			siteSettings.ContentServerURL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return newService(contentServerClient, siteSettings, projection, logger)
}

func newService(client contentClient, siteSettings SiteSettings, projection schema.Projection, logger *zap.Logger) *service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		client:       client,
		siteSettings: siteSettings,
		projection:   projection,
		logger:       logger,
	}
}

func (s *service) GetPage(ctx context.Context, slug string) (*vo.PageDocument, error) {
	uri := s.siteSettings.uri(slug)
	siteContent, err := s.client.GetContent(ctx, &requests.Content{
		URI:   uri,
		Env:   s.siteSettings.Env,
		Nodes: map[string]*requests.Node{},
	})
	if err != nil {
		return nil, fmt.Errorf("get content %q: %w", uri, err)
	}
	if siteContent == nil || siteContent.Status != content.StatusOk || siteContent.Item == nil {
		s.logger.Debug("no content for uri", zap.String("uri", uri))
		return nil, nil
	}
	item := siteContent.Item
	if s.siteSettings.PageMimeType != "" && item.MimeType != s.siteSettings.PageMimeType {
		s.logger.Debug("content is not a page",
			zap.String("uri", uri),
			zap.String("mimeType", item.MimeType),
		)
		return nil, nil
	}
	doc := s.projection.Page(item.Data)
	if doc == nil {
		doc = &vo.PageDocument{Sections: []vo.Section{}}
	}
	if doc.Title == "" {
		doc.Title = item.Name
	}
	return doc, nil
}
