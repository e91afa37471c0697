// Package llm is the chat-completion client used by the navigation agent.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyResponse = errors.New("no content in llm response")

type Message struct {
	Role    string
	Content string
	// Images are JPEG screenshots attached to a user message.
	Images [][]byte
}

type ChatRequest struct {
	// Model overrides the client's model when set.
	Model       string
	Messages    []Message
	JSONMode    bool
	Temperature float32
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type ChatResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Client is implemented by OpenAIClient and by the usage meter's tracked wrapper.
type Client interface {
	Run(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Model() string
}
