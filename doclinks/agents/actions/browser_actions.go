package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"doclinks/doclinks/services/classifier"
	"doclinks/doclinks/utils/textutils"
)

// maxExtractedLinks bounds the extract_links observation.
const maxExtractedLinks = 60

type NavigateParams struct {
	URL string `json:"url"`
}

type ClickParams struct {
	Index *int `json:"index"`
}

type InputTextParams struct {
	Index  *int   `json:"index"`
	Text   string `json:"text"`
	Submit bool   `json:"submit"`
}

type ScrollParams struct {
	Direction string `json:"direction"`
}

type DoneParams struct {
	Success bool            `json:"success"`
	Text    string          `json:"text"`
	Data    json.RawMessage `json:"data"`
}

// ExtractedLink is one entry of the extract_links observation.
type ExtractedLink struct {
	Text       string `json:"text"`
	URL        string `json:"url"`
	FileType   string `json:"file_type"`
	Category   string `json:"category"`
	IsDownload bool   `json:"is_download"`
}

func (a *BrowserActions) navigate(ctx context.Context, raw json.RawMessage) (Result, error) {
	var p NavigateParams
	if err := decodeParams(raw, &p); err != nil {
		return Result{}, err
	}
	target := strings.TrimSpace(p.URL)
	if target == "" {
		return Result{}, fmt.Errorf("%w: url is required", ErrInvalidParams)
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	if err := a.session.Navigate(ctx, target); err != nil {
		return Result{}, err
	}
	return Result{Content: "Navigated to " + target}, nil
}

func (a *BrowserActions) click(ctx context.Context, raw json.RawMessage) (Result, error) {
	var p ClickParams
	if err := decodeParams(raw, &p); err != nil {
		return Result{}, err
	}
	if p.Index == nil {
		return Result{}, fmt.Errorf("%w: index is required", ErrInvalidParams)
	}
	if err := a.session.Click(ctx, *p.Index); err != nil {
		return Result{}, err
	}
	return Result{Content: fmt.Sprintf("Clicked element %d", *p.Index)}, nil
}

func (a *BrowserActions) inputText(ctx context.Context, raw json.RawMessage) (Result, error) {
	var p InputTextParams
	if err := decodeParams(raw, &p); err != nil {
		return Result{}, err
	}
	if p.Index == nil {
		return Result{}, fmt.Errorf("%w: index is required", ErrInvalidParams)
	}
	if err := a.session.InputText(ctx, *p.Index, p.Text, p.Submit); err != nil {
		return Result{}, err
	}
	return Result{Content: fmt.Sprintf("Typed %q into element %d", p.Text, *p.Index)}, nil
}

func (a *BrowserActions) scroll(ctx context.Context, raw json.RawMessage) (Result, error) {
	var p ScrollParams
	if err := decodeParams(raw, &p); err != nil {
		return Result{}, err
	}
	down := !strings.EqualFold(strings.TrimSpace(p.Direction), "up")
	if err := a.session.Scroll(ctx, down); err != nil {
		return Result{}, err
	}
	if down {
		return Result{Content: "Scrolled down"}, nil
	}
	return Result{Content: "Scrolled up"}, nil
}

func (a *BrowserActions) goBack(ctx context.Context, _ json.RawMessage) (Result, error) {
	if err := a.session.GoBack(ctx); err != nil {
		return Result{}, err
	}
	return Result{Content: "Went back"}, nil
}

// extractLinks classifies the anchors of the current page. Relative hrefs are
// resolved against the page URL.
func (a *BrowserActions) extractLinks(ctx context.Context, _ json.RawMessage) (Result, error) {
	state, err := a.session.State(ctx)
	if err != nil {
		return Result{}, err
	}
	base, _ := url.Parse(state.URL)

	links := []ExtractedLink{}
	seen := map[string]bool{}
	for _, el := range state.Anchors() {
		href := el.Href()
		c := classifier.Classify(href, el.Text)
		if !c.Keep() {
			continue
		}
		abs := resolve(base, href)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		links = append(links, ExtractedLink{
			Text:       textutils.Truncate(el.Text, 100),
			URL:        abs,
			FileType:   c.FileType,
			Category:   c.Category,
			IsDownload: c.IsDownload,
		})
		if len(links) == maxExtractedLinks {
			break
		}
	}
	if len(links) == 0 {
		return Result{Content: "No document links on " + state.URL}, nil
	}
	b, err := json.Marshal(links)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: fmt.Sprintf("Document links on %s: %s", state.URL, b)}, nil
}

func (a *BrowserActions) done(_ context.Context, raw json.RawMessage) (Result, error) {
	var p DoneParams
	if err := decodeParams(raw, &p); err != nil {
		return Result{}, err
	}
	return Result{Content: p.Text, IsDone: true, Success: p.Success, Data: p.Data}, nil
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
