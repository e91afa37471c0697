// Package tools exposes the document operations as MCP tools over stdio.
package tools

import (
	"context"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"doclinks/doclinks/controllers"
	"doclinks/doclinks/utils/jsonutils"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

const (
	ServerName    = "document-link-extractor"
	ServerVersion = "2.0.0"
)

// Handlers adapts DocumentsController to MCP tool handlers.
type Handlers struct {
	docs *controllers.DocumentsController
}

func NewHandlers(docs *controllers.DocumentsController) *Handlers {
	return &Handlers{docs: docs}
}

// NewServer registers every tool on a new MCP server.
func NewServer(docs *controllers.DocumentsController) *server.MCPServer {
	h := NewHandlers(docs)
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("get_document_download_links",
		mcp.WithDescription("Navigate to a website and extract document download links (PDF, Excel, Word, etc.) without downloading anything."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The URL to navigate to (e.g. 'https://modelcontextprotocol.io')")),
	), h.GetDocumentDownloadLinks)

	s.AddTool(mcp.NewTool("extract_fixed_site_links",
		mcp.WithDescription("Extract document download links from the configured fixed site."),
	), h.ExtractFixedSiteLinks)

	s.AddTool(mcp.NewTool("find_documents_intelligent",
		mcp.WithDescription("Find documents matching a query on a website with an AI navigation agent. Returns URLs, titles, types and token usage."),
		mcp.WithString("website_url", mcp.Required(), mcp.Description("Website to search, e.g. 'finance.yahoo.com' or 'https://finance.yahoo.com'")),
		mcp.WithString("search_query", mcp.Required(), mcp.Description("What to search for, e.g. 'annual reports' or 'quarterly earnings'")),
	), h.FindDocumentsIntelligent)

	s.AddTool(mcp.NewTool("find_pdf_documents",
		mcp.WithDescription("Find PDF document URLs about a topic on a website."),
		mcp.WithString("website_url", mcp.Required(), mcp.Description("Website to search")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic of the PDFs")),
	), h.FindPDFDocuments)

	s.AddTool(mcp.NewTool("find_latest_news_pdf",
		mcp.WithDescription("Find the latest news PDF URLs about a company on a website."),
		mcp.WithString("website_url", mcp.Required(), mcp.Description("Website to search")),
		mcp.WithString("company_name", mcp.Required(), mcp.Description("Company the news is about")),
	), h.FindLatestNewsPDF)

	s.AddTool(mcp.NewTool("find_annual_reports",
		mcp.WithDescription("Find annual report URLs on a company website."),
		mcp.WithString("company_url", mcp.Required(), mcp.Description("Company website")),
	), h.FindAnnualReports)

	s.AddTool(mcp.NewTool("close_browser",
		mcp.WithDescription("Close the browser session and clean up resources."),
	), h.CloseBrowser)

	return s
}

// ServeStdio serves s on in/out until ctx ends or in is closed. Nothing but
// protocol frames is written to out.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(logging.ErrorLogger))
	logging.AppLogger.Info("Starting Document Link Extractor MCP server")
	return stdio.Listen(ctx, in, out)
}

func arg(req mcp.CallToolRequest, name string) string {
	v, _ := req.Params.Arguments[name].(string)
	return strings.TrimSpace(v)
}

func jsonResult(v any) *mcp.CallToolResult {
	return mcp.NewToolResultText(jsonutils.ToJSON(v))
}

// envelope answers with the operation's JSON body even when its arguments
// were rejected; such results are flagged as tool errors.
func envelope(v any, err error) *mcp.CallToolResult {
	res := jsonResult(v)
	res.IsError = err != nil
	return res
}

func (h *Handlers) GetDocumentDownloadLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.ExtractLinks(ctx, types.ExtractLinksRequest{URL: arg(req, "url")})
	return envelope(res, err), nil
}

func (h *Handlers) ExtractFixedSiteLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.docs.ExtractFixedSite(ctx)), nil
}

func (h *Handlers) FindDocumentsIntelligent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.FindDocuments(ctx, types.FindDocumentsRequest{
		WebsiteURL:  arg(req, "website_url"),
		SearchQuery: arg(req, "search_query"),
	})
	return envelope(res, err), nil
}

func (h *Handlers) FindPDFDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.FindPDF(ctx, types.FindPDFRequest{
		WebsiteURL: arg(req, "website_url"),
		Topic:      arg(req, "topic"),
	})
	return envelope(res, err), nil
}

func (h *Handlers) FindLatestNewsPDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.FindNewsPDF(ctx, types.FindNewsPDFRequest{
		WebsiteURL:  arg(req, "website_url"),
		CompanyName: arg(req, "company_name"),
	})
	return envelope(res, err), nil
}

func (h *Handlers) FindAnnualReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.FindAnnualReports(ctx, types.FindAnnualReportsRequest{CompanyURL: arg(req, "company_url")})
	return envelope(res, err), nil
}

// CloseBrowser answers with a plain confirmation string.
func (h *Handlers) CloseBrowser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.docs.CloseBrowser(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}
