package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/contentserver-pages/schema"
	"github.com/foomo/contentserver-pages/service/vo"
)

func testProjection(t *testing.T) schema.Projection {
	t.Helper()
	registry, err := schema.NewRegistry(
		schema.Entry{Kind: "faqSection", Fields: []schema.Field{
			schema.F("heading"),
			schema.List("faqs", schema.F("question"), schema.F("answer")),
		}},
	)
	require.NoError(t, err)
	return schema.BuildProjection(registry, []schema.Field{schema.F("title"), schema.F("subtitle")})
}

type fakeContentClient struct {
	requests []*requests.Content
	content  *content.SiteContent
	err      error
}

func (f *fakeContentClient) GetContent(_ context.Context, request *requests.Content) (*content.SiteContent, error) {
	f.requests = append(f.requests, request)
	return f.content, f.err
}

func TestServiceGetPage(t *testing.T) {
	client := &fakeContentClient{content: &content.SiteContent{
		Status: content.StatusOk,
		Item: &content.Item{
			ID:       "page-1",
			Name:     "Landing",
			MimeType: "application/x-page",
			Data: map[string]interface{}{
				"hero": map[string]interface{}{"title": "Hero", "leak": true},
				"sections": []interface{}{
					map[string]interface{}{"_type": "faqSection", "_key": "a", "heading": "FAQ", "other": 1},
				},
			},
		},
	}}
	env := &requests.Env{Dimensions: []string{"en"}}
	svc := newService(client, SiteSettings{Env: env, PathPrefix: "/lp", PageMimeType: "application/x-page"}, testProjection(t), nil)

	doc, err := svc.GetPage(context.Background(), "/spring-campaign/")
	require.NoError(t, err)
	require.NotNil(t, doc)

	require.Len(t, client.requests, 1)
	assert.Equal(t, "/lp/spring-campaign", client.requests[0].URI)
	assert.Same(t, env, client.requests[0].Env)
	assert.Equal(t, "Landing", doc.Title)
	require.NotNil(t, doc.Hero)
	assert.Equal(t, "Hero", doc.Hero.Title)
	assert.Equal(t, []vo.Section{{Kind: "faqSection", Key: "a", Fields: vo.Fields{"heading": "FAQ"}}}, doc.Sections)
}

func TestServiceGetPageNotFound(t *testing.T) {
	projection := testProjection(t)
	tests := []struct {
		name    string
		content *content.SiteContent
	}{
		{name: "nil content"},
		{name: "status not found", content: &content.SiteContent{Status: content.StatusNotFound, Item: &content.Item{}}},
		{name: "missing item", content: &content.SiteContent{Status: content.StatusOk}},
		{name: "other mime type", content: &content.SiteContent{Status: content.StatusOk, Item: &content.Item{MimeType: "text/html"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&fakeContentClient{content: tt.content}, SiteSettings{PageMimeType: "application/x-page"}, projection, nil)
			doc, err := svc.GetPage(context.Background(), "missing")
			require.NoError(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestServiceGetPageError(t *testing.T) {
	svc := newService(&fakeContentClient{err: errors.New("connection refused")}, SiteSettings{}, testProjection(t), nil)

	doc, err := svc.GetPage(context.Background(), "home")
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), `get content "/home"`)
}

func TestSiteSettingsURI(t *testing.T) {
	assert.Equal(t, "/", SiteSettings{}.uri(""))
	assert.Equal(t, "/about", SiteSettings{}.uri("about"))
	assert.Equal(t, "/lp/offer", SiteSettings{PathPrefix: "lp"}.uri("/offer"))
}

func TestQueryServiceGetPage(t *testing.T) {
	projection := testProjection(t)
	var gotQuery, gotSlug, gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotSlug = r.URL.Query().Get("$slug")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		if gotSlug != `"pricing"` {
			_, _ = w.Write([]byte(`{"result": null}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{
			"title": "Pricing",
			"sections": []any{
				map[string]any{"_type": "faqSection", "_key": "a", "heading": "FAQ"},
				map[string]any{"_type": "mysteryType", "_key": "b"},
			},
		}})
	}))
	defer server.Close()

	svc := NewQueryService(QuerySettings{BaseURL: server.URL, APIVersion: "2023-05-03", Dataset: "production", Token: "secret"}, server.Client(), projection, nil)

	doc, err := svc.GetPage(context.Background(), "pricing")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "/v2023-05-03/data/query/production", gotPath)
	assert.Equal(t, projection.PageQuery(), gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Pricing", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, vo.Kind("mysteryType"), doc.Sections[1].Kind)

	doc, err = svc.GetPage(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestQueryServiceGetPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "query parse error", http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewQueryService(QuerySettings{BaseURL: server.URL, APIVersion: "v1", Dataset: "production"}, server.Client(), testProjection(t), nil)

	_, err := svc.GetPage(context.Background(), "pricing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "query parse error")
}

type flakyService struct {
	calls    atomic.Int32
	failures int32
	doc      *vo.PageDocument
}

func (f *flakyService) GetPage(ctx context.Context, slug string) (*vo.PageDocument, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errors.New("store unavailable")
	}
	return f.doc, nil
}

func fastSettings() ResilienceSettings {
	return ResilienceSettings{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxJitter: time.Millisecond}
}

func TestWithResilienceRetries(t *testing.T) {
	flaky := &flakyService{failures: 2, doc: &vo.PageDocument{Title: "ok"}}

	doc, err := WithResilience(flaky, fastSettings(), nil).GetPage(context.Background(), "home")
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Title)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestWithResilienceGivesUp(t *testing.T) {
	flaky := &flakyService{failures: 10}

	_, err := WithResilience(flaky, fastSettings(), nil).GetPage(context.Background(), "home")
	require.Error(t, err)
	assert.Equal(t, "store unavailable", err.Error())
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestWithResilienceDoesNotRetryMissingPage(t *testing.T) {
	flaky := &flakyService{}

	doc, err := WithResilience(flaky, fastSettings(), nil).GetPage(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, int32(1), flaky.calls.Load())
}

func TestWithResilienceStopsOnCanceledContext(t *testing.T) {
	flaky := &flakyService{failures: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithResilience(flaky, fastSettings(), nil).GetPage(ctx, "home")
	require.Error(t, err)
	assert.LessOrEqual(t, flaky.calls.Load(), int32(1))
}

func TestWithResilienceOpensBreaker(t *testing.T) {
	flaky := &flakyService{failures: 100}
	settings := fastSettings()
	settings.Attempts = 1
	settings.BreakerFailures = 2
	settings.BreakerTimeout = time.Minute
	svc := WithResilience(flaky, settings, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.GetPage(context.Background(), "home")
		require.Error(t, err)
	}
	_, err := svc.GetPage(context.Background(), "home")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), flaky.calls.Load())
}
