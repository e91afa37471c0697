// Package usage meters token consumption and estimated cost of LLM calls.
package usage

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"doclinks/doclinks/services/llm"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

// Price is USD per one million tokens.
type Price struct {
	Prompt     float64
	Completion float64
}

// Prices is keyed by model family. Dated snapshots ("gpt-4o-mini-2024-07-18")
// resolve to the longest matching prefix.
var Prices = map[string]Price{
	"gpt-4o-mini":  {Prompt: 0.15, Completion: 0.60},
	"gpt-4o":       {Prompt: 2.50, Completion: 10.00},
	"gpt-4.1":      {Prompt: 2.00, Completion: 8.00},
	"gpt-4.1-mini": {Prompt: 0.40, Completion: 1.60},
	"gpt-4.1-nano": {Prompt: 0.10, Completion: 0.40},
	"o4-mini":      {Prompt: 1.10, Completion: 4.40},
}

// Entry is one metered call.
type Entry struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cost             float64
	At               time.Time
}

// Meter accumulates entries for one orchestrator call. Safe for concurrent use.
type Meter struct {
	mu          sync.Mutex
	includeCost bool
	model       string
	entries     []Entry
}

// NewMeter returns a meter that reports model as the report's model until a
// client is registered.
func NewMeter(model string, includeCost bool) *Meter {
	return &Meter{model: model, includeCost: includeCost}
}

// Initialize discards any previously recorded entries.
func (m *Meter) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
	return nil
}

// Register wraps c so that every successful Run is recorded.
func (m *Meter) Register(c llm.Client) llm.Client {
	m.mu.Lock()
	if name := c.Model(); name != "" {
		m.model = name
	}
	m.mu.Unlock()
	return &trackedClient{inner: c, meter: m}
}

func (m *Meter) record(ctx context.Context, resp llm.ChatResponse) {
	u := resp.Usage
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	e := Entry{
		Model:            resp.Model,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      total,
		At:               time.Now(),
	}
	if m.includeCost {
		e.Cost = Cost(resp.Model, u.PromptTokens, u.CompletionTokens)
	}

	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()

	logging.AppLogger.Debug("llm usage recorded", append(logging.RunFields(ctx),
		zap.String("model", e.Model),
		zap.Int("total_tokens", e.TotalTokens),
		zap.Float64("cost", e.Cost),
	)...)
}

// Summary totals every entry recorded since Initialize.
func (m *Meter) Summary(ctx context.Context) types.UsageReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := types.UsageReport{Model: m.model, EntryCount: len(m.entries)}
	for _, e := range m.entries {
		r.PromptTokens += e.PromptTokens
		r.CompletionTokens += e.CompletionTokens
		r.TotalTokens += e.TotalTokens
		r.TotalCost += e.Cost
	}
	r.TotalCost = math.Round(r.TotalCost*1e6) / 1e6
	return r
}

// Entries returns a copy of the recorded entries.
func (m *Meter) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Cost estimates the USD cost of one call. Unknown models cost nothing.
func Cost(model string, promptTokens, completionTokens int) float64 {
	p, ok := lookupPrice(model)
	if !ok {
		return 0
	}
	return (float64(promptTokens)*p.Prompt + float64(completionTokens)*p.Completion) / 1e6
}

func lookupPrice(model string) (Price, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if p, ok := Prices[model]; ok {
		return p, true
	}
	best := ""
	for name := range Prices {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return Price{}, false
	}
	return Prices[best], true
}

type trackedClient struct {
	inner llm.Client
	meter *Meter
}

func (t *trackedClient) Model() string {
	return t.inner.Model()
}

func (t *trackedClient) Run(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	resp, err := t.inner.Run(ctx, req)
	if err != nil {
		return resp, err
	}
	if resp.Model == "" {
		resp.Model = t.inner.Model()
	}
	t.meter.record(ctx, resp)
	return resp, nil
}
