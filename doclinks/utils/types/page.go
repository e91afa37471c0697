// doclinks/utils/types/page.go
package types

import "strings"

// DOMElement is one indexed, visible element of a page snapshot.
type DOMElement struct {
	Index      int               `json:"index"`
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	// Text is the element's own text plus that of its direct children.
	Text string `json:"text,omitempty"`
}

// Href returns the href attribute exactly as the page declares it, or "".
func (e DOMElement) Href() string {
	return e.Attributes["href"]
}

// IsAnchor reports whether the element is a link with a non-empty href.
// A whitespace-only href still counts.
func (e DOMElement) IsAnchor() bool {
	return strings.EqualFold(e.Tag, "a") && e.Href() != ""
}

// PageState is the structural snapshot of the current page.
type PageState struct {
	URL      string       `json:"url"`
	Title    string       `json:"title"`
	Elements []DOMElement `json:"elements"`
	Markdown string       `json:"markdown,omitempty"`
}

// Anchors returns the anchor elements in index order.
func (p *PageState) Anchors() []DOMElement {
	if p == nil {
		return nil
	}
	var out []DOMElement
	for _, el := range p.Elements {
		if el.IsAnchor() {
			out = append(out, el)
		}
	}
	return out
}

// Element looks an element up by its snapshot index.
func (p *PageState) Element(index int) (DOMElement, bool) {
	if p == nil {
		return DOMElement{}, false
	}
	for _, el := range p.Elements {
		if el.Index == index {
			return el, true
		}
	}
	return DOMElement{}, false
}
