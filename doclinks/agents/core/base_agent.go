package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"doclinks/doclinks/agents/actions"
	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/services/llm"
	"doclinks/doclinks/utils/jsonutils"
	"doclinks/doclinks/utils/logging"
)

const (
	DefaultMaxSteps        = 15
	DefaultStepTimeout     = 60 * time.Second
	DefaultMaxElements     = 150
	MaxConsecutiveFailures = 3
)

var (
	ErrTooManyFailures = errors.New("too many consecutive step failures")
	ErrStepTimeout     = errors.New("step timed out")
	ErrInvalidDecision = errors.New("model reply is not a valid decision")
)

// Settings configures one agent run.
type Settings struct {
	Task    string
	LLM     llm.Client
	Session browser.Session
	// Persona defaults to the embedded agent config.
	Persona      *configs.AgentConfig
	OutputSchema OutputSchema
	UseVision    bool

	MaxSteps           int
	StepTimeout        time.Duration
	WaitBetweenActions time.Duration
	MaxElements        int

	// Events receives a StepEvent after every step when set. Sends block
	// until received or the run's context ends.
	Events chan<- StepEvent
}

// BaseAgent drives a browser session toward a task, one LLM decision per step.
type BaseAgent struct {
	settings Settings
	actions  *actions.BrowserActions
	system   string
}

type decision struct {
	Thought string `json:"thought"`
	Action  struct {
		Name   string          `json:"name"`
		Params json.RawMessage `json:"params"`
	} `json:"action"`
}

func NewBaseAgent(s Settings) (*BaseAgent, error) {
	if strings.TrimSpace(s.Task) == "" {
		return nil, errors.New("agent task is empty")
	}
	if s.LLM == nil || s.Session == nil {
		return nil, errors.New("agent needs an llm client and a browser session")
	}
	if s.Persona == nil {
		persona, err := configs.LoadAgentConfig("")
		if err != nil {
			return nil, err
		}
		s.Persona = persona
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.StepTimeout <= 0 {
		s.StepTimeout = DefaultStepTimeout
	}
	if s.MaxElements <= 0 {
		s.MaxElements = DefaultMaxElements
	}

	acts := actions.NewBrowserActions(s.Session, s.Persona.Allows)
	return &BaseAgent{
		settings: s,
		actions:  acts,
		system:   systemPrompt(s.Persona, acts.Describe(), s.OutputSchema),
	}, nil
}

// Run executes steps until done, the step budget is spent, three steps in a
// row fail, or ctx ends. Running out of steps is not an error.
func (a *BaseAgent) Run(ctx context.Context) (*History, error) {
	defer logging.LogDuration(ctx, "agent_run")()

	h := &History{}
	failures := 0
	for step := 1; step <= a.settings.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}

		rec, err := a.step(ctx, step, h)
		h.Steps = append(h.Steps, rec)
		if emitErr := a.emit(ctx, rec); emitErr != nil {
			return h, emitErr
		}

		if err != nil {
			if ctx.Err() != nil {
				return h, ctx.Err()
			}
			failures++
			logging.AppLogger.Warn("Agent step failed", append(logging.RunFields(ctx),
				zap.Int("step", step), zap.Int("consecutive_failures", failures), zap.Error(err))...)
			if failures >= MaxConsecutiveFailures {
				return h, fmt.Errorf("%w: %v", ErrTooManyFailures, err)
			}
			continue
		}
		failures = 0

		if h.Done {
			logging.AppLogger.Info("Agent finished", append(logging.RunFields(ctx),
				zap.Int("steps", step), zap.Bool("success", h.Success),
				zap.Bool("structured", h.StructuredOutput != nil))...)
			return h, nil
		}
		if err := browser.Sleep(ctx, a.settings.WaitBetweenActions); err != nil {
			return h, err
		}
	}

	logging.AppLogger.Info("Agent step budget exhausted", append(logging.RunFields(ctx),
		zap.Int("max_steps", a.settings.MaxSteps))...)
	return h, nil
}

func (a *BaseAgent) step(ctx context.Context, step int, h *History) (rec StepRecord, err error) {
	start := time.Now()
	rec.Step = step
	stepCtx, cancel := context.WithTimeout(ctx, a.settings.StepTimeout)
	defer func() {
		cancel()
		rec.DurationMS = time.Since(start).Milliseconds()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w after %s", ErrStepTimeout, a.settings.StepTimeout)
		}
		if err != nil {
			rec.Error = err.Error()
		}
	}()

	state, err := a.settings.Session.State(stepCtx)
	if err != nil {
		return rec, fmt.Errorf("reading page state: %w", err)
	}
	rec.URL = state.URL

	msg := llm.Message{
		Role:    llm.RoleUser,
		Content: stepPrompt(a.settings.Task, h.Steps, state, step, a.settings.MaxSteps, a.settings.MaxElements),
	}
	if a.settings.UseVision && state.URL != "" {
		if shot, shotErr := a.settings.Session.Screenshot(stepCtx); shotErr == nil && len(shot) > 0 {
			msg.Images = [][]byte{shot}
		} else if shotErr != nil {
			logging.AppLogger.Debug("Screenshot skipped", zap.Error(shotErr))
		}
	}

	resp, err := a.settings.LLM.Run(stepCtx, llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleSystem, Content: a.system}, msg},
		JSONMode: true,
	})
	if err != nil {
		return rec, fmt.Errorf("asking model: %w", err)
	}

	d, err := parseDecision(resp.Content)
	if err != nil {
		return rec, err
	}
	rec.Thought = d.Thought
	rec.Action = d.Action.Name
	rec.Params = d.Action.Params

	res, err := a.actions.ExecuteAction(stepCtx, d.Action.Name, d.Action.Params)
	if err != nil {
		return rec, fmt.Errorf("%s: %w", d.Action.Name, err)
	}
	rec.Result = res.Content

	if res.IsDone {
		h.Done = true
		h.Success = res.Success
		h.DoneText = res.Content
		a.acceptOutput(ctx, h, res.Data)
	}
	return rec, nil
}

func (a *BaseAgent) acceptOutput(ctx context.Context, h *History, data json.RawMessage) {
	if a.settings.OutputSchema == nil || len(data) == 0 || string(data) == "null" {
		return
	}
	out, err := a.settings.OutputSchema.Validate(data)
	if err != nil {
		h.SchemaError = err.Error()
		logging.AppLogger.Warn("Agent output rejected by schema", append(logging.RunFields(ctx), zap.Error(err))...)
		return
	}
	h.StructuredOutput = out
}

func (a *BaseAgent) emit(ctx context.Context, rec StepRecord) error {
	if a.settings.Events == nil {
		return nil
	}
	ev := StepEvent{
		Type:     "step",
		Step:     rec.Step,
		MaxSteps: a.settings.MaxSteps,
		URL:      rec.URL,
		Thought:  rec.Thought,
		Action:   rec.Action,
		Result:   rec.Result,
		Error:    rec.Error,
	}
	select {
	case a.settings.Events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseDecision(reply string) (decision, error) {
	var d decision
	if err := jsonutils.DecodeObject(reply, &d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}
	d.Action.Name = strings.TrimSpace(d.Action.Name)
	if d.Action.Name == "" {
		return d, fmt.Errorf("%w: action name missing", ErrInvalidDecision)
	}
	return d, nil
}
