// doclinks/utils/types/requests.go
package types

type ExtractLinksRequest struct {
	URL string `json:"url"`
}

type FindDocumentsRequest struct {
	WebsiteURL  string `json:"website_url"`
	SearchQuery string `json:"search_query"`
}

type FindPDFRequest struct {
	WebsiteURL string `json:"website_url"`
	Topic      string `json:"topic"`
}

type FindNewsPDFRequest struct {
	WebsiteURL  string `json:"website_url"`
	CompanyName string `json:"company_name"`
}

type FindAnnualReportsRequest struct {
	CompanyURL string `json:"company_url"`
}

// AgentTaskRequest is what a websocket client sends to start a streamed search.
// Kind is one of documents, pdf, news_pdf, annual_report.
type AgentTaskRequest struct {
	Kind       string `json:"kind"`
	WebsiteURL string `json:"website_url"`
	Query      string `json:"query"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
