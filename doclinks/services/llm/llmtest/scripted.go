// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"doclinks/doclinks/services/llm"
)

var ErrScriptExhausted = errors.New("llmtest: no more replies")

// Reply is one scripted answer. Err takes precedence over Content.
type Reply struct {
	Content string
	Err     error
	Usage   llm.Usage
}

// Client answers requests with Replies in order and records every request.
type Client struct {
	mu      sync.Mutex
	ModelID string
	Replies []Reply

	// Repeat keeps returning the last reply once the script runs out.
	Repeat bool

	Requests []llm.ChatRequest
	next     int
}

func New(model string, contents ...string) *Client {
	c := &Client{ModelID: model}
	for _, content := range contents {
		c.Replies = append(c.Replies, Reply{
			Content: content,
			Usage:   llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
		})
	}
	return c
}

func (c *Client) Model() string {
	return c.ModelID
}

func (c *Client) Run(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, req)
	if err := ctx.Err(); err != nil {
		return llm.ChatResponse{}, err
	}
	if len(c.Replies) == 0 {
		return llm.ChatResponse{}, ErrScriptExhausted
	}
	idx := c.next
	if idx >= len(c.Replies) {
		if !c.Repeat {
			return llm.ChatResponse{}, ErrScriptExhausted
		}
		idx = len(c.Replies) - 1
	}
	c.next++
	r := c.Replies[idx]
	if r.Err != nil {
		return llm.ChatResponse{}, r.Err
	}
	return llm.ChatResponse{Content: r.Content, Model: c.ModelID, Usage: r.Usage}, nil
}

// Calls returns how many requests were made.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Requests)
}
