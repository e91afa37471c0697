package finder

import (
	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/utils/types"
)

// The schema shown to the agent. Optional members are omitempty here so the
// generated schema does not require them; decoding goes into types.SearchResult.
type foundDocumentShape struct {
	Title        string `json:"title" description:"Title or description of the document"`
	URL          string `json:"url" description:"Direct URL to the document"`
	DocumentType string `json:"document_type" description:"Type of document (PDF, Article, News, Report, etc.)"`
	Description  string `json:"description,omitempty" description:"Additional description if available"`
	Date         string `json:"date,omitempty" description:"Date if available"`
	Source       string `json:"source,omitempty" description:"Source website or origin"`
}

type searchResultShape struct {
	Documents     []foundDocumentShape `json:"documents" description:"List of found documents"`
	SearchSummary string               `json:"search_summary" description:"Summary of what was found and searched"`
	Success       bool                 `json:"success" description:"Whether the search was successful"`
}

// NewSearchResultSchema is the output schema of every search task.
func NewSearchResultSchema() (core.OutputSchema, error) {
	return core.NewJSONSchema[types.SearchResult](searchResultShape{})
}
