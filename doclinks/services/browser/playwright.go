package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

// PlaywrightLauncher starts the playwright driver on first use and launches
// one Chromium per session.
type PlaywrightLauncher struct {
	mu sync.Mutex
	pw *playwright.Playwright
}

func NewPlaywrightLauncher() *PlaywrightLauncher {
	return &PlaywrightLauncher{}
}

func (l *PlaywrightLauncher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw != nil {
		return l.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// Close stops the playwright driver. Sessions must be stopped first.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

func (l *PlaywrightLauncher) NewSession(ctx context.Context, profile Profile) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile = profile.withDefaults()
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}

	args := []string{
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-renderer-backgrounding",
	}
	if profile.DisableSecurity {
		args = append(args, "--disable-web-security", "--disable-site-isolation-trials")
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(profile.Headless),
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(profile.UserAgent),
		Viewport:          &playwright.Size{Width: 1280, Height: 1100},
		IgnoreHttpsErrors: playwright.Bool(profile.DisableSecurity),
		BypassCSP:         playwright.Bool(profile.DisableSecurity),
		AcceptDownloads:   playwright.Bool(false),
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}
	page.SetDefaultTimeout(float64(profile.NavigationTimeout.Milliseconds()))

	logging.AppLogger.Info("Browser session started",
		zap.Bool("headless", profile.Headless),
		zap.Duration("wait_between_actions", profile.WaitBetweenActions),
	)
	return &playwrightSession{browser: browser, bctx: bctx, page: page, profile: profile}, nil
}

type playwrightSession struct {
	mu      sync.Mutex
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	profile Profile
	stopped bool
}

// timeoutMillis bounds fallback by the ctx deadline. playwright treats 0 as
// "no timeout", so the result is at least 1ms.
func timeoutMillis(ctx context.Context, fallback time.Duration) *float64 {
	d := fallback
	if deadline, ok := ctx.Deadline(); ok {
		if rem := time.Until(deadline); d <= 0 || rem < d {
			d = rem
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (s *playwrightSession) live(ctx context.Context) (playwright.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrSessionClosed
	}
	return s.page, nil
}

func (s *playwrightSession) settle(ctx context.Context, page playwright.Page) error {
	_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: timeoutMillis(ctx, s.profile.NavigationTimeout),
	})
	return Sleep(ctx, s.profile.WaitBetweenActions)
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	page, err := s.live(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   timeoutMillis(ctx, s.profile.NavigationTimeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *playwrightSession) State(ctx context.Context) (*types.PageState, error) {
	page, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := page.Evaluate(markElementsScript); err != nil {
		return nil, fmt.Errorf("indexing page elements: %w", err)
	}
	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page content: %w", err)
	}
	title, _ := page.Title()
	return ParseSnapshot(page.URL(), title, content, s.profile.MaxPageChars)
}

func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	page, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	return page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypeJpeg,
		Quality: playwright.Int(60),
		Timeout: timeoutMillis(ctx, 10*time.Second),
	})
}

func (s *playwrightSession) locate(page playwright.Page, index int) (playwright.Locator, error) {
	loc := page.Locator(fmt.Sprintf(`[%s="%d"]`, IndexAttr, index)).First()
	n, err := loc.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("index %d: %w", index, ErrElementNotFound)
	}
	return loc, nil
}

func (s *playwrightSession) Click(ctx context.Context, index int) error {
	page, err := s.live(ctx)
	if err != nil {
		return err
	}
	loc, err := s.locate(page, index)
	if err != nil {
		return err
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: timeoutMillis(ctx, 10*time.Second)}); err != nil {
		return fmt.Errorf("clicking element %d: %w", index, err)
	}
	return s.settle(ctx, page)
}

func (s *playwrightSession) InputText(ctx context.Context, index int, text string, submit bool) error {
	page, err := s.live(ctx)
	if err != nil {
		return err
	}
	loc, err := s.locate(page, index)
	if err != nil {
		return err
	}
	if err := loc.Fill(text, playwright.LocatorFillOptions{Timeout: timeoutMillis(ctx, 10*time.Second)}); err != nil {
		return fmt.Errorf("filling element %d: %w", index, err)
	}
	if submit {
		if err := loc.Press("Enter"); err != nil {
			return fmt.Errorf("submitting element %d: %w", index, err)
		}
	}
	return s.settle(ctx, page)
}

func (s *playwrightSession) Scroll(ctx context.Context, down bool) error {
	page, err := s.live(ctx)
	if err != nil {
		return err
	}
	dy := 900.0
	if !down {
		dy = -dy
	}
	if err := page.Mouse().Wheel(0, dy); err != nil {
		return fmt.Errorf("scrolling: %w", err)
	}
	return Sleep(ctx, s.profile.WaitBetweenActions)
}

func (s *playwrightSession) GoBack(ctx context.Context) error {
	page, err := s.live(ctx)
	if err != nil {
		return err
	}
	if _, err := page.GoBack(playwright.PageGoBackOptions{
		Timeout:   timeoutMillis(ctx, s.profile.NavigationTimeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("going back: %w", err)
	}
	return Sleep(ctx, s.profile.WaitBetweenActions)
}

// Stop closes the context and the browser. Calling it twice is a no-op.
func (s *playwrightSession) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	err := errors.Join(s.bctx.Close(), s.browser.Close())
	if err != nil {
		return fmt.Errorf("stopping browser session: %w", err)
	}
	logging.AppLogger.Info("Browser session stopped")
	return nil
}
