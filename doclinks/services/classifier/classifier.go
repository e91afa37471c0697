// Package classifier decides whether a link points to, or is associated with,
// downloadable document content. All functions are pure and never fail.
//
// Matching is plain substring matching on lower-cased input, so an href such
// as "/cannot-be-reported" counts as a report link. That is the intended policy.
package classifier

import "strings"

const (
	UnknownFileType = "unknown"
	GeneralCategory = "general"
)

// DocumentFileTypes is the complete set of recognized document extensions.
var DocumentFileTypes = []string{
	".pdf", ".xlsx", ".csv", ".doc", ".docx", ".zip", ".txt", ".ppt", ".pptx",
}

// DocumentKeywords mark an href or link text as document related.
var DocumentKeywords = []string{"download", "document", "file", "report", "data", "export", "save"}

type category struct {
	name     string
	keywords []string
}

// categories is ordered: the first matching category wins.
var categories = []category{
	{"report", []string{"report", "analysis", "study"}},
	{"data", []string{"data", "export", "csv"}},
	{"documentation", []string{"guide", "manual", "doc"}},
}

// Classification bundles every decision made for one link.
type Classification struct {
	FileType   string
	Category   string
	IsDownload bool
	IsDocument bool
}

// Keep reports whether the link belongs in a document link result.
func (c Classification) Keep() bool {
	return c.IsDownload || c.IsDocument
}

func Classify(href, text string) Classification {
	isDownload, isDocument := IsDocumentLink(href, text)
	return Classification{
		FileType:   FileType(href),
		Category:   Category(href, text),
		IsDownload: isDownload,
		IsDocument: isDocument,
	}
}

// FileType returns the upper-cased tag of the first extension in
// DocumentFileTypes that href contains, or "unknown". The list order decides,
// so "report.docx" is DOC.
func FileType(href string) string {
	h := strings.ToLower(href)
	for _, ext := range DocumentFileTypes {
		if strings.Contains(h, ext) {
			return strings.ToUpper(strings.TrimPrefix(ext, "."))
		}
	}
	return UnknownFileType
}

// Category returns the first category whose keywords appear in href or text.
func Category(href, text string) string {
	h, t := strings.ToLower(href), strings.ToLower(text)
	for _, c := range categories {
		if containsAny(h, c.keywords) || containsAny(t, c.keywords) {
			return c.name
		}
	}
	return GeneralCategory
}

// IsDocumentLink reports whether href looks like a direct download and whether
// href or text carries a document keyword.
func IsDocumentLink(href, text string) (isDownload, isDocument bool) {
	h, t := strings.ToLower(href), strings.ToLower(text)
	isDownload = containsAny(h, DocumentFileTypes) || strings.Contains(h, "download")
	isDocument = containsAny(h, DocumentKeywords) || containsAny(t, DocumentKeywords)
	return isDownload, isDocument
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
