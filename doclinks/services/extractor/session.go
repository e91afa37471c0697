package extractor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/utils/logging"
)

// SessionHandle owns the one long-lived browser session of the extractor.
type SessionHandle struct {
	mu       sync.Mutex
	launcher browser.Launcher
	profile  browser.Profile
	session  browser.Session
}

func NewSessionHandle(launcher browser.Launcher, profile browser.Profile) *SessionHandle {
	return &SessionHandle{launcher: launcher, profile: profile}
}

// Acquire returns the live session, launching one if none is active.
// Calling it again on a live handle returns the same session.
func (h *SessionHandle) Acquire(ctx context.Context) (browser.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session != nil {
		return h.session, nil
	}
	s, err := h.launcher.NewSession(ctx, h.profile)
	if err != nil {
		return nil, fmt.Errorf("starting browser session: %w", err)
	}
	h.session = s
	logging.AppLogger.Info("Extractor browser session started")
	return s, nil
}

// Release stops the session if one is active. The handle can be acquired again.
func (h *SessionHandle) Release(ctx context.Context) error {
	h.mu.Lock()
	s := h.session
	h.session = nil
	h.mu.Unlock()
	if s == nil {
		return nil
	}
	if err := s.Stop(ctx); err != nil {
		logging.ErrorLogger.Error("Stopping extractor browser session", zap.Error(err))
		return err
	}
	logging.AppLogger.Info("Extractor browser session stopped")
	return nil
}

func (h *SessionHandle) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session != nil
}
