// Package browser drives headless Chromium sessions and turns pages into
// indexed structural snapshots.
package browser

import (
	"context"
	"errors"
	"time"

	"doclinks/doclinks/utils/types"
)

var (
	ErrSessionClosed   = errors.New("browser session is closed")
	ErrElementNotFound = errors.New("element not found in current page state")
)

// Profile configures a session.
type Profile struct {
	Headless bool
	// WaitBetweenActions is slept after every interaction.
	WaitBetweenActions time.Duration
	// DisableSecurity ignores certificate errors, bypasses CSP and turns off
	// same-origin checks. Needed by some sites under automation.
	DisableSecurity   bool
	NavigationTimeout time.Duration
	// MaxPageChars caps the markdown view of a page.
	MaxPageChars int
	UserAgent    string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (p Profile) withDefaults() Profile {
	if p.NavigationTimeout <= 0 {
		p.NavigationTimeout = 30 * time.Second
	}
	if p.MaxPageChars <= 0 {
		p.MaxPageChars = 6000
	}
	if p.UserAgent == "" {
		p.UserAgent = defaultUserAgent
	}
	return p
}

// Session is one live browser tab.
type Session interface {
	// Navigate loads url and returns once DOMContentLoaded fired.
	Navigate(ctx context.Context, url string) error
	// State snapshots the current page. Element indexes are only valid until
	// the next State call.
	State(ctx context.Context) (*types.PageState, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Click(ctx context.Context, index int) error
	InputText(ctx context.Context, index int, text string, submit bool) error
	// Scroll moves one viewport down, or up when down is false.
	Scroll(ctx context.Context, down bool) error
	GoBack(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Launcher opens sessions.
type Launcher interface {
	NewSession(ctx context.Context, profile Profile) (Session, error)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
