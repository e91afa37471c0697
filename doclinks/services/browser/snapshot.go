package browser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"doclinks/doclinks/utils/textutils"
	"doclinks/doclinks/utils/types"
)

// IndexAttr is the attribute markElementsScript stamps on interactive elements.
const IndexAttr = "data-dl-index"

// markElementsScript numbers every visible interactive element in document order.
const markElementsScript = `() => {
  const selector = 'a[href], button, input, select, textarea, [role="button"], [role="link"], [onclick]';
  document.querySelectorAll('[` + IndexAttr + `]').forEach(el => el.removeAttribute('` + IndexAttr + `'));
  let i = 0;
  document.querySelectorAll(selector).forEach(el => {
    const style = window.getComputedStyle(el);
    if (style.display === 'none' || style.visibility === 'hidden') return;
    if (el.type === 'hidden') return;
    el.setAttribute('` + IndexAttr + `', String(i++));
  });
  return i;
}`

// noiseSelectors are dropped before the markdown view is rendered.
var noiseSelectors = []string{"script", "style", "noscript", "svg", "canvas", "iframe", "template"}

// ParseSnapshot builds a PageState from marked-up page HTML.
func ParseSnapshot(pageURL, title, content string, maxChars int) (*types.PageState, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing page html: %w", err)
	}

	state := &types.PageState{URL: pageURL, Title: strings.TrimSpace(title)}
	if state.Title == "" {
		state.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find("[" + IndexAttr + "]").Each(func(_ int, s *goquery.Selection) {
		idx, err := strconv.Atoi(s.AttrOr(IndexAttr, ""))
		if err != nil || len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		attrs := make(map[string]string, len(node.Attr))
		for _, a := range node.Attr {
			if a.Key == IndexAttr {
				continue
			}
			attrs[a.Key] = a.Val
		}
		state.Elements = append(state.Elements, types.DOMElement{
			Index:      idx,
			Tag:        strings.ToLower(node.Data),
			Attributes: attrs,
			Text:       ShallowText(node, 1),
		})
	})
	sort.SliceStable(state.Elements, func(i, j int) bool {
		return state.Elements[i].Index < state.Elements[j].Index
	})

	state.Markdown = pageMarkdown(doc, maxChars)
	return state, nil
}

// ShallowText joins the text of n and of its descendants down to maxDepth.
func ShallowText(n *html.Node, maxDepth int) string {
	var parts []string
	var walk func(*html.Node, int)
	walk = func(node *html.Node, depth int) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if t := strings.TrimSpace(c.Data); t != "" {
					parts = append(parts, t)
				}
			case html.ElementNode:
				if c.Data == "script" || c.Data == "style" {
					continue
				}
				if depth < maxDepth {
					walk(c, depth+1)
				}
			}
		}
	}
	walk(n, 0)
	return textutils.CollapseSpace(strings.Join(parts, " "))
}

func pageMarkdown(doc *goquery.Document, maxChars int) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	body = body.Clone()
	for _, sel := range noiseSelectors {
		body.Find(sel).Remove()
	}
	fragment, err := goquery.OuterHtml(body)
	if err != nil {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return textutils.Truncate(textutils.CollapseSpace(body.Text()), maxChars)
	}
	md = strings.TrimSpace(md)
	if maxChars > 0 && len([]rune(md)) > maxChars {
		md = textutils.Truncate(md, maxChars) + "\n... (truncated)"
	}
	return md
}
