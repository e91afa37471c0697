// Package extractor finds document download links on a page with the link
// classifier, using one shared browser session.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/services/classifier"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/textutils"
	"doclinks/doclinks/utils/types"
)

const (
	DefaultSettleDelay = 1500 * time.Millisecond

	linkTextLimit   = 100
	sampleTextLimit = 50
	sampleSize      = 5

	FailureMessage    = "Failed to extract document download links. The website may be unavailable or require authentication."
	FailureSuggestion = "Try accessing the page manually first to verify it contains downloadable documents."
	NoLinksMessage    = "No document download links found. The page may not contain downloadable documents."
)

// DefaultProfile is the browser profile of the shared session.
func DefaultProfile() browser.Profile {
	return browser.Profile{
		Headless:           true,
		WaitBetweenActions: 300 * time.Millisecond,
		DisableSecurity:    true,
	}
}

type Options struct {
	// SettleDelay is waited after navigation before the page is read.
	// Zero means DefaultSettleDelay.
	SettleDelay time.Duration
	// Profile defaults to DefaultProfile.
	Profile browser.Profile
}

type Extractor struct {
	handle *SessionHandle
	// sem admits one navigation at a time on the shared session.
	sem    *semaphore.Weighted
	settle time.Duration
}

func New(launcher browser.Launcher, opts Options) *Extractor {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Profile == (browser.Profile{}) {
		opts.Profile = DefaultProfile()
	}
	return &Extractor{
		handle: NewSessionHandle(launcher, opts.Profile),
		sem:    semaphore.NewWeighted(1),
		settle: opts.SettleDelay,
	}
}

// Initialize starts the shared session if it is not running.
func (e *Extractor) Initialize(ctx context.Context) error {
	_, err := e.handle.Acquire(ctx)
	return err
}

// Cleanup stops the shared session. Safe to call when none is active.
func (e *Extractor) Cleanup(ctx context.Context) error {
	return e.handle.Release(ctx)
}

// IsActive reports whether the shared session is running.
func (e *Extractor) IsActive() bool {
	return e.handle.IsActive()
}

// ExtractLinks loads pageURL and classifies its anchors. It never returns an
// error: failures, panics included, become the failure envelope.
func (e *Extractor) ExtractLinks(ctx context.Context, pageURL string) (result types.ExtractionResult) {
	defer logging.LogDuration(ctx, "extract_links")()
	logging.AppLogger.Info("Extracting document download links", append(logging.RunFields(ctx), zap.String("url", pageURL))...)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("Panic while extracting document links",
				zap.Any("recover", r), zap.String("url", pageURL), zap.ByteString("stack", debug.Stack()))
			result = failure(pageURL, fmt.Errorf("panic: %v", r))
		}
	}()

	state, err := e.load(ctx, pageURL)
	if err != nil {
		logging.ErrorLogger.Error("Error extracting document links",
			append(logging.RunFields(ctx), zap.String("url", pageURL), zap.Error(err))...)
		return failure(pageURL, err)
	}

	result = Classify(pageURL, state)
	logging.AppLogger.Info("Link extraction complete", append(logging.RunFields(ctx),
		zap.String("url", pageURL), zap.Int("document_links", result.TotalLinksFound))...)
	return result
}

func (e *Extractor) load(ctx context.Context, pageURL string) (*types.PageState, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for browser session: %w", err)
	}
	defer e.sem.Release(1)

	session, err := e.handle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := session.Navigate(ctx, pageURL); err != nil {
		if errors.Is(err, browser.ErrSessionClosed) {
			// let the next call start a fresh session
			_ = e.handle.Release(ctx)
		}
		return nil, err
	}
	if err := browser.Sleep(ctx, e.settle); err != nil {
		return nil, err
	}
	return session.State(ctx)
}

// Classify builds the result envelope for a loaded page.
func Classify(pageURL string, state *types.PageState) types.ExtractionResult {
	anchors := state.Anchors()
	source := SourceHost(pageURL)

	var docs, downloads []types.DocumentLinkRecord
	for _, a := range anchors {
		href := a.Href()
		c := classifier.Classify(href, a.Text)
		if !c.Keep() {
			continue
		}
		rec := types.DocumentLinkRecord{
			Text:       textutils.Truncate(a.Text, linkTextLimit),
			URL:        href,
			FileType:   c.FileType,
			Category:   c.Category,
			IsDownload: c.IsDownload,
			Source:     source,
		}
		docs = append(docs, rec)
		if rec.IsDownload {
			downloads = append(downloads, rec)
		}
	}

	result := types.ExtractionResult{
		URL:             pageURL,
		TotalLinksFound: len(docs),
		DocumentLinks:   docs,
		DownloadLinks:   downloads,
	}
	if len(docs) > 0 {
		result.Message = fmt.Sprintf("Found %d document download links", len(docs))
		return result
	}

	samples := make([]types.LinkSample, 0, sampleSize)
	for _, a := range anchors {
		if len(samples) == sampleSize {
			break
		}
		text := textutils.Truncate(a.Text, sampleTextLimit)
		if text == "" {
			text = "No text"
		}
		samples = append(samples, types.LinkSample{Text: text, URL: a.Href()})
	}
	result.Message = NoLinksMessage
	result.Diagnostics = &types.LinkDiagnostics{
		AllLinksAnalyzed: len(anchors),
		SampleLinksFound: samples,
	}
	return result
}

// SourceHost is the host of pageURL, or "unknown" when it has none.
func SourceHost(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func failure(pageURL string, err error) types.ExtractionResult {
	return types.ExtractionResult{
		URL: pageURL,
		Failure: &types.ExtractionFailure{
			Error:      err.Error(),
			Message:    FailureMessage,
			Suggestion: FailureSuggestion,
		},
	}
}
