package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclinks/doclinks/controllers"
	"doclinks/doclinks/services/finder"
	"doclinks/doclinks/utils/types"
)

type stubExtractor struct{ closed bool }

func (s *stubExtractor) ExtractLinks(ctx context.Context, url string) types.ExtractionResult {
	return types.ExtractionResult{URL: url, Message: "Found 0 document download links"}
}
func (s *stubExtractor) Cleanup(context.Context) error { s.closed = true; return nil }
func (s *stubExtractor) IsActive() bool                 { return !s.closed }

type stubFinder struct{}

func (stubFinder) Run(ctx context.Context, t finder.Task) types.TaskResult {
	return types.TaskResult{Success: true, Documents: []types.FoundDocumentRecord{}, SearchSummary: t.Subject, SearchType: string(t.Kind)}
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func newHandlers() (*Handlers, *stubExtractor) {
	ext := &stubExtractor{}
	return NewHandlers(controllers.NewDocumentsController(ext, stubFinder{}, "https://modelcontextprotocol.io", "gpt-4o-mini")), ext
}

func TestGetDocumentDownloadLinks(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	res, err := h.GetDocumentDownloadLinks(ctx, call(map[string]any{"url": "https://a.com"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	assert.Equal(t, "https://a.com", body["url"])

	res, err = h.GetDocumentDownloadLinks(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	var failure map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &failure))
	assert.Contains(t, failure["error"], "url")
	assert.NotEmpty(t, failure["message"])
	assert.NotEmpty(t, failure["suggestion"])

	res, err = h.GetDocumentDownloadLinks(ctx, call(map[string]any{"url": 42}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestExtractFixedSiteLinks(t *testing.T) {
	h, _ := newHandlers()
	res, err := h.ExtractFixedSiteLinks(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"url": "https://modelcontextprotocol.io"`)
}

func TestFindTools(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	cases := []struct {
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
		kind    string
	}{
		{h.FindDocumentsIntelligent, map[string]any{"website_url": "a.com", "search_query": "earnings"}, "documents"},
		{h.FindPDFDocuments, map[string]any{"website_url": "a.com", "topic": "AI"}, "pdf"},
		{h.FindLatestNewsPDF, map[string]any{"website_url": "a.com", "company_name": "Acme"}, "news_pdf"},
		{h.FindAnnualReports, map[string]any{"company_url": "a.com"}, "annual_report"},
	}
	for _, tc := range cases {
		res, err := tc.handler(ctx, call(tc.args))
		require.NoError(t, err)
		require.False(t, res.IsError, tc.kind)
		var out types.TaskResult
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
		assert.Equal(t, tc.kind, out.SearchType)

		res, err = tc.handler(ctx, call(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError, tc.kind)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body), tc.kind)
		assert.Equal(t, false, body["success"], tc.kind)
		assert.Equal(t, tc.kind, body["search_type"], tc.kind)
		assert.Contains(t, body["error"], "missing required argument", tc.kind)
		assert.Equal(t, []any{}, body["documents"], tc.kind)
		usage, ok := body["token_usage"].(map[string]any)
		require.True(t, ok, tc.kind)
		assert.Equal(t, "gpt-4o-mini", usage["model"])
		assert.EqualValues(t, 0, usage["total_tokens"])
	}
}

func TestCloseBrowser(t *testing.T) {
	h, ext := newHandlers()
	res, err := h.CloseBrowser(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, controllers.BrowserClosedMessage, text(t, res))
	assert.True(t, ext.closed)
}

func TestServerListsEveryTool(t *testing.T) {
	ext := &stubExtractor{}
	s := NewServer(controllers.NewDocumentsController(ext, stubFinder{}, "https://modelcontextprotocol.io", ""))
	ctx := context.Background()

	s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp := s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{
		"get_document_download_links",
		"extract_fixed_site_links",
		"find_documents_intelligent",
		"find_pdf_documents",
		"find_latest_news_pdf",
		"find_annual_reports",
		"close_browser",
	} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
