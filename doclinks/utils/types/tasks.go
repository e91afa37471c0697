// doclinks/utils/types/tasks.go
package types

// FoundDocumentRecord is one document the navigation agent reported.
type FoundDocumentRecord struct {
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	DocumentType string  `json:"document_type"`
	Description  *string `json:"description"`
	Date         *string `json:"date"`
	Source       *string `json:"source"`
}

// SearchResult is the output schema the navigation agent is asked to fill.
type SearchResult struct {
	Documents     []FoundDocumentRecord `json:"documents"`
	SearchSummary string                `json:"search_summary"`
	Success       bool                  `json:"success"`
}

// UsageReport is the cumulative token and cost accounting of one orchestrator call.
type UsageReport struct {
	TotalTokens      int     `json:"total_tokens"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalCost        float64 `json:"total_cost"`
	Model            string  `json:"model"`
	EntryCount       int     `json:"entry_count"`
}

// TaskResult is the response of every agent-driven search.
type TaskResult struct {
	Success       bool                  `json:"success"`
	Documents     []FoundDocumentRecord `json:"documents"`
	SearchSummary string                `json:"search_summary"`
	Website       string                `json:"website,omitempty"`
	SearchType    string                `json:"search_type,omitempty"`
	Error         string                `json:"error,omitempty"`
	AgentSteps    int                   `json:"agent_steps"`
	TokenUsage    UsageReport           `json:"token_usage"`
}

// StringPtr is a helper for the nullable record fields.
func StringPtr(s string) *string {
	return &s
}
