package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"doclinks/doclinks/services/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubClient struct {
	model string
	resp  llm.ChatResponse
	err   error
}

func (s *stubClient) Model() string { return s.model }

func (s *stubClient) Run(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
	return s.resp, s.err
}

func TestMeterRecordsSuccessfulCalls(t *testing.T) {
	ctx := context.Background()
	m := NewMeter("fallback", true)
	require.NoError(t, m.Initialize(ctx))

	tracked := m.Register(&stubClient{model: "gpt-4o-mini", resp: llm.ChatResponse{
		Model: "gpt-4o-mini-2024-07-18",
		Usage: llm.Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000},
	}})

	for i := 0; i < 2; i++ {
		_, err := tracked.Run(ctx, llm.ChatRequest{})
		require.NoError(t, err)
	}

	r := m.Summary(ctx)
	assert.Equal(t, 2, r.EntryCount)
	assert.Equal(t, 4_000_000, r.TotalTokens)
	assert.Equal(t, 2_000_000, r.PromptTokens)
	assert.Equal(t, 2_000_000, r.CompletionTokens)
	assert.InDelta(t, 1.50, r.TotalCost, 1e-9)
	assert.Equal(t, "gpt-4o-mini", r.Model)
}

func TestMeterSkipsFailedCalls(t *testing.T) {
	ctx := context.Background()
	m := NewMeter("gpt-4o-mini", true)
	tracked := m.Register(&stubClient{model: "gpt-4o-mini", err: errors.New("rate limited")})

	_, err := tracked.Run(ctx, llm.ChatRequest{})
	require.Error(t, err)

	r := m.Summary(ctx)
	assert.Equal(t, 0, r.EntryCount)
	assert.Equal(t, 0, r.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", r.Model)
}

func TestMeterWithoutCost(t *testing.T) {
	ctx := context.Background()
	m := NewMeter("gpt-4o", false)
	tracked := m.Register(&stubClient{model: "gpt-4o", resp: llm.ChatResponse{
		Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5},
	}})
	_, err := tracked.Run(ctx, llm.ChatRequest{})
	require.NoError(t, err)

	r := m.Summary(ctx)
	assert.Equal(t, 15, r.TotalTokens, "total falls back to prompt+completion")
	assert.Zero(t, r.TotalCost)
	assert.Equal(t, "gpt-4o", m.Entries()[0].Model)
}

func TestInitializeResets(t *testing.T) {
	ctx := context.Background()
	m := NewMeter("gpt-4o-mini", true)
	tracked := m.Register(&stubClient{model: "gpt-4o-mini", resp: llm.ChatResponse{Usage: llm.Usage{TotalTokens: 3}}})
	_, _ = tracked.Run(ctx, llm.ChatRequest{})
	require.Equal(t, 1, m.Summary(ctx).EntryCount)

	require.NoError(t, m.Initialize(ctx))
	assert.Equal(t, 0, m.Summary(ctx).EntryCount)
}

func TestMeterConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	m := NewMeter("gpt-4o-mini", true)
	tracked := m.Register(&stubClient{model: "gpt-4o-mini", resp: llm.ChatResponse{Usage: llm.Usage{TotalTokens: 1}}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tracked.Run(ctx, llm.ChatRequest{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Summary(ctx).TotalTokens)
}

func TestCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64
	}{
		{"gpt-4o-mini", 0.75},
		{"gpt-4o", 12.50},
		{"gpt-4.1-mini-2025-04-14", 2.00},
		{"GPT-4.1", 10.00},
		{"llama3:8b", 0},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cost(tt.model, 1_000_000, 1_000_000), 1e-9)
		})
	}
}
