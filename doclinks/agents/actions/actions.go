// Package actions provides the browser actions the navigation agent can take.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/utils/logging"
)

const (
	ActionNavigate     = "navigate"
	ActionClick        = "click"
	ActionInputText    = "input_text"
	ActionScroll       = "scroll"
	ActionGoBack       = "go_back"
	ActionExtractLinks = "extract_links"
	ActionDone         = "done"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidParams = errors.New("invalid action params")
)

// Result is what an action reports back to the agent loop.
type Result struct {
	// Content is shown to the model on the next step and kept in history.
	Content string `json:"content,omitempty"`
	IsDone  bool   `json:"is_done,omitempty"`
	// Success and Data are only set by done.
	Success bool            `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionFunc func(ctx context.Context, params json.RawMessage) (Result, error)

type actionDef struct {
	params      string
	description string
}

// BrowserActions manages the set of actions bound to one browser session.
type BrowserActions struct {
	session browser.Session
	fnMaps  map[string]actionFunc
	defs    map[string]actionDef
}

// NewBrowserActions binds the actions to session. allow filters the exposed
// actions; nil exposes all of them. done is always available.
func NewBrowserActions(session browser.Session, allow func(name string) bool) *BrowserActions {
	a := &BrowserActions{
		session: session,
		fnMaps:  make(map[string]actionFunc),
		defs:    make(map[string]actionDef),
	}
	register := func(name string, fn actionFunc, params, description string) {
		if name != ActionDone && allow != nil && !allow(name) {
			return
		}
		a.fnMaps[name] = fn
		a.defs[name] = actionDef{params: params, description: description}
	}

	register(ActionNavigate, a.navigate, `{"url": string}`, "open a URL in the current tab")
	register(ActionClick, a.click, `{"index": int}`, "click the numbered element")
	register(ActionInputText, a.inputText, `{"index": int, "text": string, "submit": bool}`,
		"type into the numbered field, optionally pressing Enter")
	register(ActionScroll, a.scroll, `{"direction": "down"|"up"}`, "scroll one screen")
	register(ActionGoBack, a.goBack, `{}`, "go back in history")
	register(ActionExtractLinks, a.extractLinks, `{}`,
		"list the document and download links of the current page with absolute URLs")
	register(ActionDone, a.done, `{"success": bool, "text": string, "data": object}`,
		"finish the task and report the result")
	return a
}

// Names returns the registered action names, sorted.
func (a *BrowserActions) Names() []string {
	names := make([]string, 0, len(a.fnMaps))
	for name := range a.fnMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders the action list for the system prompt.
func (a *BrowserActions) Describe() string {
	var b strings.Builder
	for _, name := range a.Names() {
		s := a.defs[name]
		fmt.Fprintf(&b, "- %s %s: %s\n", name, s.params, s.description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExecuteAction dispatches one action by name.
func (a *BrowserActions) ExecuteAction(ctx context.Context, name string, params json.RawMessage) (Result, error) {
	fn, ok := a.fnMaps[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if len(params) == 0 || string(params) == "null" {
		params = json.RawMessage(`{}`)
	}
	defer logging.LogDuration(ctx, "action_"+name)()

	res, err := fn(ctx, params)
	if err != nil {
		logging.AppLogger.Warn("Action failed", append(logging.RunFields(ctx),
			zap.String("action", name), zap.Error(err))...)
		return Result{}, err
	}
	return res, nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
