package controllers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/services/finder"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

const BrowserClosedMessage = "Browser session closed successfully"

var (
	ErrMissingArgument   = errors.New("missing required argument")
	ErrFinderUnavailable = errors.New("agent search is not configured: set OPENAI_API_KEY")
)

// LinkExtractor is the heuristic extractor with its shared session.
type LinkExtractor interface {
	ExtractLinks(ctx context.Context, url string) types.ExtractionResult
	Cleanup(ctx context.Context) error
	IsActive() bool
}

// DocumentFinder runs agent searches.
type DocumentFinder interface {
	Run(ctx context.Context, t finder.Task) types.TaskResult
}

// failurePrefix words the search summary of a search that never reached the finder.
var failurePrefix = map[configs.TaskKind]string{
	configs.KindDocuments:    "Failed to find documents",
	configs.KindPDF:          "Failed to find PDF documents",
	configs.KindNewsPDF:      "Failed to find news PDFs",
	configs.KindAnnualReport: "Failed to find annual reports",
}

// DocumentsController serves every document operation to the HTTP API, the
// MCP tools and the CLI.
type DocumentsController struct {
	extractor LinkExtractor
	finder    DocumentFinder
	fixedURL  string
	model     string
}

// NewDocumentsController wires the operations. f may be nil when no LLM is
// configured; agent searches then fail with ErrFinderUnavailable.
func NewDocumentsController(ext LinkExtractor, f DocumentFinder, fixedURL, model string) *DocumentsController {
	return &DocumentsController{extractor: ext, finder: f, fixedURL: fixedURL, model: model}
}

func required(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return value, nil
}

// ExtractLinks validates req and runs the heuristic extractor. A missing url
// yields the extraction error envelope along with ErrMissingArgument.
func (c *DocumentsController) ExtractLinks(ctx context.Context, req types.ExtractLinksRequest) (types.ExtractionResult, error) {
	url, err := required("url", req.URL)
	if err != nil {
		return types.ExtractionResult{URL: req.URL, Failure: &types.ExtractionFailure{
			Error:      err.Error(),
			Message:    "No URL to extract links from",
			Suggestion: "Pass the page URL in the url argument",
		}}, err
	}
	return c.extractor.ExtractLinks(ctx, url), nil
}

// ExtractFixedSite extracts from the configured fixed site.
func (c *DocumentsController) ExtractFixedSite(ctx context.Context) types.ExtractionResult {
	return c.extractor.ExtractLinks(ctx, c.fixedURL)
}

// The find operations answer a missing argument with the task's failure
// envelope, zero usage included, along with ErrMissingArgument.

func (c *DocumentsController) FindDocuments(ctx context.Context, req types.FindDocumentsRequest) (types.TaskResult, error) {
	t := finder.Task{Kind: configs.KindDocuments, Site: req.WebsiteURL, Subject: req.SearchQuery}
	return c.validated(ctx, t, arg{"website_url", req.WebsiteURL}, arg{"search_query", req.SearchQuery})
}

func (c *DocumentsController) FindPDF(ctx context.Context, req types.FindPDFRequest) (types.TaskResult, error) {
	t := finder.Task{Kind: configs.KindPDF, Site: req.WebsiteURL, Subject: req.Topic}
	return c.validated(ctx, t, arg{"website_url", req.WebsiteURL}, arg{"topic", req.Topic})
}

func (c *DocumentsController) FindNewsPDF(ctx context.Context, req types.FindNewsPDFRequest) (types.TaskResult, error) {
	t := finder.Task{Kind: configs.KindNewsPDF, Site: req.WebsiteURL, Subject: req.CompanyName}
	return c.validated(ctx, t, arg{"website_url", req.WebsiteURL}, arg{"company_name", req.CompanyName})
}

func (c *DocumentsController) FindAnnualReports(ctx context.Context, req types.FindAnnualReportsRequest) (types.TaskResult, error) {
	t := finder.Task{Kind: configs.KindAnnualReport, Site: req.CompanyURL}
	return c.validated(ctx, t, arg{"company_url", req.CompanyURL})
}

type arg struct{ name, value string }

func (c *DocumentsController) validated(ctx context.Context, t finder.Task, args ...arg) (types.TaskResult, error) {
	for _, a := range args {
		if _, err := required(a.name, a.value); err != nil {
			return c.unavailable(t, err), err
		}
	}
	t.Site = strings.TrimSpace(t.Site)
	t.Subject = strings.TrimSpace(t.Subject)
	return c.search(ctx, t), nil
}

// Search runs any task kind, streaming step events to events when set.
func (c *DocumentsController) Search(ctx context.Context, req types.AgentTaskRequest, events chan<- core.StepEvent) (types.TaskResult, error) {
	kind, err := configs.ParseKind(strings.TrimSpace(req.Kind))
	if err != nil {
		return types.TaskResult{}, err
	}
	t := finder.Task{Kind: kind, Site: req.WebsiteURL, Subject: req.Query, Events: events}
	if kind == configs.KindAnnualReport {
		return c.validated(ctx, t, arg{"website_url", req.WebsiteURL})
	}
	return c.validated(ctx, t, arg{"website_url", req.WebsiteURL}, arg{"query", req.Query})
}

func (c *DocumentsController) search(ctx context.Context, t finder.Task) (result types.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("Panic in document search", zap.Any("recover", r),
				zap.String("kind", string(t.Kind)), zap.ByteString("stack", debug.Stack()))
			result = c.unavailable(t, fmt.Errorf("panic: %v", r))
		}
	}()
	if c.finder == nil {
		return c.unavailable(t, ErrFinderUnavailable)
	}
	return c.finder.Run(ctx, t)
}

// unavailable is the result of a search that never produced a usage report.
func (c *DocumentsController) unavailable(t finder.Task, err error) types.TaskResult {
	prefix, ok := failurePrefix[t.Kind]
	if !ok {
		prefix = "Failed to find documents"
	}
	return types.TaskResult{
		Success:       false,
		Documents:     []types.FoundDocumentRecord{},
		SearchSummary: prefix + ": " + err.Error(),
		Website:       finder.NormalizeSite(t.Site),
		SearchType:    string(t.Kind),
		Error:         err.Error(),
		TokenUsage:    types.UsageReport{Model: c.model},
	}
}

// CloseBrowser stops the extractor's shared session.
func (c *DocumentsController) CloseBrowser(ctx context.Context) (types.MessageResponse, error) {
	if err := c.extractor.Cleanup(ctx); err != nil {
		return types.MessageResponse{}, fmt.Errorf("closing browser session: %w", err)
	}
	return types.MessageResponse{Message: BrowserClosedMessage}, nil
}

// BrowserActive reports whether the extractor's shared session is running.
func (c *DocumentsController) BrowserActive() bool {
	return c.extractor.IsActive()
}
