// Package browsertest provides in-memory browser sessions for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/utils/types"
)

// Session serves canned page states keyed by URL.
type Session struct {
	mu sync.Mutex

	Pages map[string]*types.PageState
	Image []byte

	// NavigateErr fails every navigation when set.
	NavigateErr error

	// OnNavigate runs before every navigation, outside the session lock.
	OnNavigate func(url string)

	StopErr   error
	StopPanic any

	current string
	history []string
	Calls   []string
	stops   int
}

func NewSession(pages map[string]*types.PageState) *Session {
	if pages == nil {
		pages = map[string]*types.PageState{}
	}
	return &Session{Pages: pages}
}

func (s *Session) record(call string) {
	s.Calls = append(s.Calls, call)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.OnNavigate != nil {
		s.OnNavigate(url)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("navigate " + url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	if s.current != "" {
		s.history = append(s.history, s.current)
	}
	s.current = url
	return nil
}

func (s *Session) State(ctx context.Context) (*types.PageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("state")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page, ok := s.Pages[s.current]; ok {
		cp := *page
		if cp.URL == "" {
			cp.URL = s.current
		}
		return &cp, nil
	}
	return &types.PageState{URL: s.current}, nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("screenshot")
	if s.Image == nil {
		return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
	}
	return s.Image, nil
}

func (s *Session) element(index int) error {
	page, ok := s.Pages[s.current]
	if !ok {
		return fmt.Errorf("index %d: %w", index, browser.ErrElementNotFound)
	}
	if _, ok := page.Element(index); !ok {
		return fmt.Errorf("index %d: %w", index, browser.ErrElementNotFound)
	}
	return nil
}

// Click follows the element's href when it has one.
func (s *Session) Click(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("click %d", index))
	if err := s.element(index); err != nil {
		return err
	}
	el, _ := s.Pages[s.current].Element(index)
	if href := strings.TrimSpace(el.Href()); href != "" {
		s.history = append(s.history, s.current)
		s.current = href
	}
	return nil
}

func (s *Session) InputText(ctx context.Context, index int, text string, submit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("input %d %s", index, text))
	return s.element(index)
}

func (s *Session) Scroll(ctx context.Context, down bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("scroll down=%t", down))
	return nil
}

func (s *Session) GoBack(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("back")
	if n := len(s.history); n > 0 {
		s.current = s.history[n-1]
		s.history = s.history[:n-1]
	}
	return nil
}

func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stops++
	s.record("stop")
	p, err := s.StopPanic, s.StopErr
	s.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

// Stops returns how many times Stop was called.
func (s *Session) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// Current returns the URL the session is on.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Launcher hands out sessions built by New and counts launches.
type Launcher struct {
	mu       sync.Mutex
	New      func() *Session
	Err      error
	launches int
	Profiles []browser.Profile
	Sessions []*Session
}

func (l *Launcher) NewSession(ctx context.Context, profile browser.Profile) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	l.Profiles = append(l.Profiles, profile)
	if l.Err != nil {
		return nil, l.Err
	}
	var s *Session
	if l.New != nil {
		s = l.New()
	} else {
		s = NewSession(nil)
	}
	l.Sessions = append(l.Sessions, s)
	return s, nil
}

// Launches returns how many sessions were requested.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}
