// doclinks/utils/types/links.go
package types

import "encoding/json"

// DocumentLinkRecord is one anchor the heuristic extractor kept.
type DocumentLinkRecord struct {
	Text       string `json:"text"`
	URL        string `json:"url"`
	FileType   string `json:"file_type"`
	Category   string `json:"category"`
	IsDownload bool   `json:"is_download"`
	Source     string `json:"source"`
}

// LinkSample is a diagnostic entry reported when no document links qualified.
type LinkSample struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// LinkDiagnostics is attached to a result that found no document links.
type LinkDiagnostics struct {
	AllLinksAnalyzed int
	SampleLinksFound []LinkSample
}

// ExtractionFailure is the error envelope of the heuristic extractor.
type ExtractionFailure struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// ExtractionResult is either a failure envelope or a success envelope.
// MarshalJSON emits exactly one of the three body shapes.
type ExtractionResult struct {
	URL             string
	TotalLinksFound int
	DocumentLinks   []DocumentLinkRecord
	DownloadLinks   []DocumentLinkRecord
	Message         string

	// Diagnostics is set only when no document link qualified.
	Diagnostics *LinkDiagnostics
	// Failure is set when the page could not be read.
	Failure *ExtractionFailure
}

type extractionBody struct {
	URL             string               `json:"url"`
	TotalLinksFound int                  `json:"total_links_found"`
	DocumentLinks   []DocumentLinkRecord `json:"document_links"`
	DownloadLinks   []DocumentLinkRecord `json:"download_links"`
	Message         string               `json:"message"`
}

func (r ExtractionResult) body() extractionBody {
	b := extractionBody{
		URL:             r.URL,
		TotalLinksFound: r.TotalLinksFound,
		DocumentLinks:   r.DocumentLinks,
		DownloadLinks:   r.DownloadLinks,
		Message:         r.Message,
	}
	if b.DocumentLinks == nil {
		b.DocumentLinks = []DocumentLinkRecord{}
	}
	if b.DownloadLinks == nil {
		b.DownloadLinks = []DocumentLinkRecord{}
	}
	return b
}

func (r ExtractionResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.Failure != nil:
		return json.Marshal(r.Failure)
	case r.Diagnostics != nil:
		samples := r.Diagnostics.SampleLinksFound
		if samples == nil {
			samples = []LinkSample{}
		}
		return json.Marshal(struct {
			extractionBody
			AllLinksAnalyzed int          `json:"all_links_analyzed"`
			SampleLinksFound []LinkSample `json:"sample_links_found"`
		}{r.body(), r.Diagnostics.AllLinksAnalyzed, samples})
	default:
		return json.Marshal(r.body())
	}
}

// Failed reports whether r carries the error envelope.
func (r ExtractionResult) Failed() bool {
	return r.Failure != nil
}
