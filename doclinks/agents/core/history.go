package core

import (
	"encoding/json"
	"strings"
)

// StepRecord is one executed agent step.
type StepRecord struct {
	Step       int             `json:"step"`
	URL        string          `json:"url,omitempty"`
	Thought    string          `json:"thought,omitempty"`
	Action     string          `json:"action,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	Result     string          `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// StepEvent is published after every step for live progress streams.
type StepEvent struct {
	Type     string `json:"type"`
	Step     int    `json:"step"`
	MaxSteps int    `json:"max_steps"`
	URL      string `json:"url,omitempty"`
	Thought  string `json:"thought,omitempty"`
	Action   string `json:"action,omitempty"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// History is everything an agent run produced.
type History struct {
	Steps []StepRecord `json:"steps"`

	Done     bool   `json:"done"`
	Success  bool   `json:"success"`
	DoneText string `json:"done_text,omitempty"`

	// StructuredOutput holds the validated done data, nil when absent or invalid.
	StructuredOutput any    `json:"structured_output,omitempty"`
	SchemaError      string `json:"schema_error,omitempty"`
}

// FinalResult is the done text, or else the most recent non-empty action
// result. Empty when the agent produced nothing usable.
func (h *History) FinalResult() string {
	if h == nil {
		return ""
	}
	if t := strings.TrimSpace(h.DoneText); t != "" {
		return t
	}
	for i := len(h.Steps) - 1; i >= 0; i-- {
		if t := strings.TrimSpace(h.Steps[i].Result); t != "" {
			return t
		}
	}
	return ""
}

// StepCount returns the number of steps taken.
func (h *History) StepCount() int {
	if h == nil {
		return 0
	}
	return len(h.Steps)
}
