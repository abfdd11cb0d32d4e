package admin

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/contentserver-pages/forms"
	"github.com/foomo/contentserver-pages/freelancers"
	"github.com/foomo/contentserver-pages/store/sqlite"
)

type fixture struct {
	server      *httptest.Server
	forms       *forms.Service
	freelancers *freelancers.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	formService := forms.NewService(store.FormStore(), nil)
	freelancerService := freelancers.NewService(store.FreelancerStore(), nil)
	server := httptest.NewServer(NewHandler(nil, formService, freelancerService))
	t.Cleanup(server.Close)
	return fixture{server: server, forms: formService, freelancers: freelancerService}
}

func (f fixture) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, f.server.URL+path, reader)
	require.NoError(t, err)
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestFormsLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/admin/api/forms",
		`{"name":"lead","type":"contact","questions":[{"label":"Budget","type":"select","options":["5k","10k"]}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var created forms.Form
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "budget", created.Questions[0].ID)

	resp, body = f.do(t, http.MethodGet, "/admin/api/forms/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"lead"`)

	resp, body = f.do(t, http.MethodPut, "/admin/api/forms/"+created.ID, `{"name":"lead","type":"contact","title":"Hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"title":"Hello"`)

	resp, body = f.do(t, http.MethodGet, "/admin/api/forms", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []forms.Form
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)

	resp, _ = f.do(t, http.MethodDelete, "/admin/api/forms/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/admin/api/forms/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}

func TestFormsValidationErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/admin/api/forms", `{"type":"contact"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "name is required")

	resp, _ = f.do(t, http.MethodPost, "/admin/api/forms", `{"name":"x","unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/admin/api/forms/missing", `{"name":"x","type":"y"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.forms.Create(ctx, forms.Form{Name: "lead", Type: "contact", Questions: []forms.Question{{ID: "budget"}}})
	require.NoError(t, err)
	submission, err := f.forms.Submit(ctx, forms.Submission{FormID: form.ID, Name: "Ada", Email: "ada@example.com", Answers: map[string]string{"budget": "5k"}})
	require.NoError(t, err)
	_, err = f.forms.Submit(ctx, forms.Submission{FormID: form.ID, Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	resp, body := f.do(t, http.MethodGet, "/admin/api/submissions?q=ada&formId="+form.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []forms.Submission
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, submission.ID, list[0].ID)

	resp, body = f.do(t, http.MethodGet, "/admin/api/submissions.csv?q=ada", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,form_id,name,email,created_at,budget", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",5k"))

	resp, _ = f.do(t, http.MethodGet, "/admin/api/submissions/"+submission.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/admin/api/submissions/"+submission.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/admin/api/submissions/"+submission.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, query := range []string{"limit=abc", "from=yesterday", "offset=-1", "from=2026-02-01&to=2026-01-01"} {
		resp, _ = f.do(t, http.MethodGet, "/admin/api/submissions?"+query, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestFreelancers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, freelancer := range []freelancers.Freelancer{
		{Name: "Ada", Email: "ada@example.com", Category: "development", Subcategory: "backend", TechStack: []string{"go", "python"}},
		{Name: "Bob", Email: "bob@example.com", Category: "development", Subcategory: "backend", TechStack: []string{"java"}},
	} {
		_, err := f.freelancers.Create(ctx, freelancer)
		require.NoError(t, err)
	}

	resp, body := f.do(t, http.MethodGet, "/admin/api/freelancers?category=development&subcategory=backend&tech=go,python", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var list []freelancers.Freelancer
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0].Name)

	resp, body = f.do(t, http.MethodGet, "/admin/api/freelancers?subcategory=backend", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "needs a category")

	resp, body = f.do(t, http.MethodGet, "/admin/api/freelancers.csv?category=development", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "freelancers.csv")
	assert.Len(t, strings.Split(strings.TrimSpace(body), "\n"), 3)

	resp, body = f.do(t, http.MethodGet, "/admin/api/taxonomy", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var taxonomy freelancers.Taxonomy
	require.NoError(t, json.Unmarshal([]byte(body), &taxonomy))
	assert.Equal(t, freelancers.DefaultTaxonomy(), &taxonomy)
}

func readCSV(t *testing.T, body string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSubmissionsExportReadsEveryPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.forms.Create(ctx, forms.Form{Name: "lead", Type: "contact"})
	require.NoError(t, err)

	stored := forms.MaxLimit + 20
	for i := 0; i < stored; i++ {
		_, err := f.forms.Submit(ctx, forms.Submission{FormID: form.ID, Name: fmt.Sprintf("Lead %03d", i), Email: fmt.Sprintf("lead%03d@example.com", i)})
		require.NoError(t, err)
	}
	_, err = f.forms.Submit(ctx, forms.Submission{FormID: form.ID, Name: `=HYPERLINK("http://evil","x")`, Email: "evil@example.com"})
	require.NoError(t, err)

	resp, body := f.do(t, http.MethodGet, "/admin/api/submissions.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := readCSV(t, body)
	require.Len(t, records, stored+2)

	ids := map[string]struct{}{}
	for _, record := range records[1:] {
		ids[record[0]] = struct{}{}
	}
	assert.Len(t, ids, stored+1)
	assert.Equal(t, `'=HYPERLINK("http://evil","x")`, records[1][2])

	resp, body = f.do(t, http.MethodGet, "/admin/api/submissions.csv?limit=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, readCSV(t, body), 4)

	resp, body = f.do(t, http.MethodGet, "/admin/api/submissions.csv?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, body, `"error"`)
}

func TestSubmissionsDateOnlyUpperBoundIncludesTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	form, err := f.forms.Create(ctx, forms.Form{Name: "lead", Type: "contact"})
	require.NoError(t, err)
	for _, at := range []time.Time{
		time.Date(2026, 1, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := f.forms.Submit(ctx, forms.Submission{FormID: form.ID, Email: "ada@example.com", CreatedAt: at})
		require.NoError(t, err)
	}

	count := func(query string) int {
		resp, body := f.do(t, http.MethodGet, "/admin/api/submissions?"+query, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var list []forms.Submission
		require.NoError(t, json.Unmarshal([]byte(body), &list))
		return len(list)
	}
	assert.Equal(t, 2, count("to=2026-01-31"))
	assert.Equal(t, 1, count("from=2026-01-31&to=2026-01-31"))
	assert.Equal(t, 1, count("to=2026-01-31T00:00:00Z"))
}

func TestFreelancersExportReadsEveryPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored := freelancers.MaxLimit + 10
	for i := 0; i < stored; i++ {
		_, err := f.freelancers.Create(ctx, freelancers.Freelancer{Name: fmt.Sprintf("Dev %03d", i), Email: fmt.Sprintf("dev%03d@example.com", i)})
		require.NoError(t, err)
	}
	_, err := f.freelancers.Create(ctx, freelancers.Freelancer{Name: "+cmd", Email: "@evil"})
	require.NoError(t, err)

	resp, body := f.do(t, http.MethodGet, "/admin/api/freelancers.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := readCSV(t, body)
	require.Len(t, records, stored+2)
	assert.Equal(t, "'+cmd", records[1][1])
	assert.Equal(t, "'@evil", records[1][2])
	assert.Equal(t, "Dev 509", records[len(records)-1][1])

	resp, _ = f.do(t, http.MethodGet, "/admin/api/freelancers.csv?subcategory=backend", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodPatch, "/admin/api/forms", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/admin/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
