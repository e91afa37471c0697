package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclinks/doclinks/config"
	"doclinks/doclinks/controllers"
	"doclinks/doclinks/services/finder"
	"doclinks/doclinks/utils/types"
)

type stubExtractor struct {
	mu     sync.Mutex
	closed bool
}

func (s *stubExtractor) ExtractLinks(ctx context.Context, url string) types.ExtractionResult {
	return types.ExtractionResult{
		URL:             url,
		TotalLinksFound: 1,
		DocumentLinks:   []types.DocumentLinkRecord{{Text: "Report", URL: url + "/r.pdf", FileType: "PDF", Category: "report", IsDownload: true, Source: "a.com"}},
		Message:         "Found 1 document download links",
	}
}

func (s *stubExtractor) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubExtractor) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

type stubFinder struct {
	mu   sync.Mutex
	last finder.Task
}

func (s *stubFinder) kind() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.last.Kind)
}

func (s *stubFinder) Run(ctx context.Context, t finder.Task) types.TaskResult {
	s.mu.Lock()
	s.last = t
	s.mu.Unlock()
	return types.TaskResult{Success: true, Documents: []types.FoundDocumentRecord{}, SearchSummary: "ok", SearchType: string(t.Kind)}
}

func newServer(t *testing.T, cfg config.Config) (*httptest.Server, *stubExtractor, *stubFinder) {
	t.Helper()
	ext, f := &stubExtractor{}, &stubFinder{}
	docs := controllers.NewDocumentsController(ext, f, "https://modelcontextprotocol.io", "gpt-4o-mini")
	srv := httptest.NewServer(NewRouter(cfg, docs))
	t.Cleanup(srv.Close)
	return srv, ext, f
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb bytes.Buffer
	_, err = sb.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, sb.String()
}

func TestExtractLinksRoute(t *testing.T) {
	srv, _, _ := newServer(t, config.Config{})

	resp, body := post(t, srv, "/documents/links", `{"url":"https://a.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "\n  \"url\": \"https://a.com\"")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.EqualValues(t, 1, got["total_links_found"])
	assert.Len(t, got["download_links"], 1)

	resp, body = post(t, srv, "/documents/links", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var failure map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &failure))
	assert.Contains(t, failure["error"], "url")
	assert.NotEmpty(t, failure["message"])
	assert.NotEmpty(t, failure["suggestion"])

	resp, _ = post(t, srv, "/documents/links", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFixedSiteRoute(t *testing.T) {
	srv, _, _ := newServer(t, config.Config{})

	resp, body := post(t, srv, "/documents/links/fixed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"url": "https://modelcontextprotocol.io"`)
}

func TestFindRoutes(t *testing.T) {
	srv, _, f := newServer(t, config.Config{})

	cases := []struct {
		path string
		body string
		kind string
	}{
		{"/documents/find", `{"website_url":"a.com","search_query":"earnings"}`, "documents"},
		{"/documents/find/pdf", `{"website_url":"a.com","topic":"AI"}`, "pdf"},
		{"/documents/find/news", `{"website_url":"a.com","company_name":"Acme"}`, "news_pdf"},
		{"/documents/find/annual", `{"company_url":"a.com"}`, "annual_report"},
	}
	for _, tc := range cases {
		resp, body := post(t, srv, tc.path, tc.body)
		require.Equal(t, http.StatusOK, resp.StatusCode, tc.path)
		var res types.TaskResult
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		assert.True(t, res.Success)
		assert.Equal(t, tc.kind, f.kind())
	}

	resp, body := post(t, srv, "/documents/find/pdf", `{"website_url":"a.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var res types.TaskResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to find PDF documents: missing required argument: topic", res.SearchSummary)
	assert.Contains(t, body, `"token_usage"`)
}

func TestBrowserCloseAndHealth(t *testing.T) {
	srv, ext, _ := newServer(t, config.Config{})

	resp, body := post(t, srv, "/browser/close", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, controllers.BrowserClosedMessage)
	assert.False(t, ext.IsActive())

	hr, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer hr.Body.Close()
	var health map[string]string
	require.NoError(t, json.NewDecoder(hr.Body).Decode(&health))
	assert.Equal(t, "idle", health["browser_session"])
}

func TestRoutesRequireTokenWhenSecretSet(t *testing.T) {
	srv, _, _ := newServer(t, config.Config{JWTSecret: "s3cret"})

	resp, _ := post(t, srv, "/documents/links", `{"url":"https://a.com"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	hr, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	hr.Body.Close()
	assert.Equal(t, http.StatusOK, hr.StatusCode)
}
