package finder

import (
	"regexp"
	"strings"

	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/services/classifier"
	"doclinks/doclinks/utils/types"
)

const (
	RecoveredSummary     = "URLs extracted from agent final result"
	RecoveredDescription = "Extracted from agent final result"
	UnrecoveredError     = "Agent completed but no URLs found"
	UnrecoveredSummary   = "Agent completed without finding document URLs"
)

// documentURLPattern finds document URLs in free text.
var documentURLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+\.(?:pdf|xlsx|csv|docx?|zip|txt|pptx?)`)

// Outcome is the normalized result of an agent run. It is one of
// Structured, FreeTextRecovered or Unrecovered.
type Outcome interface {
	outcome()
}

// Structured is schema-conforming agent output.
type Structured struct {
	Result types.SearchResult
}

// FreeTextRecovered holds documents parsed out of the agent's final text.
type FreeTextRecovered struct {
	FinalText string
	Documents []types.FoundDocumentRecord
}

// Unrecovered means the agent left neither structured output nor a URL in text.
type Unrecovered struct {
	FinalText string
}

func (Structured) outcome()        {}
func (FreeTextRecovered) outcome() {}
func (Unrecovered) outcome()       {}

// Normalize picks the best available result from h: validated structured
// output, then document URLs recovered from the final text.
func Normalize(h *core.History) Outcome {
	if h != nil {
		if r, ok := h.StructuredOutput.(*types.SearchResult); ok && r != nil {
			return Structured{Result: *r}
		}
	}
	text := h.FinalResult()
	if docs := ParseFinalResult(text); len(docs) > 0 {
		return FreeTextRecovered{FinalText: text, Documents: docs}
	}
	return Unrecovered{FinalText: text}
}

// ParseFinalResult extracts document URLs from text, in order of first
// appearance, and guesses a document type from each URL.
func ParseFinalResult(text string) []types.FoundDocumentRecord {
	matches := documentURLPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	docs := make([]types.FoundDocumentRecord, 0, len(matches))
	for _, u := range matches {
		if seen[u] {
			continue
		}
		seen[u] = true
		docType := SniffDocumentType(u)
		docs = append(docs, types.FoundDocumentRecord{
			Title:        docType + " Document",
			URL:          u,
			DocumentType: docType,
			Description:  types.StringPtr(RecoveredDescription),
		})
	}
	return docs
}

// SniffDocumentType guesses a document type from keywords in a URL, falling
// back to the file type tag.
func SniffDocumentType(u string) string {
	l := strings.ToLower(u)
	switch {
	case strings.Contains(l, "news"), strings.Contains(l, "press"):
		return "News Article"
	case strings.Contains(l, "report"):
		return "Report"
	case strings.Contains(l, "annual"):
		return "Annual Report"
	case strings.Contains(l, "article"):
		return "Article"
	}
	if ft := classifier.FileType(u); ft != classifier.UnknownFileType {
		return ft
	}
	return "PDF"
}
