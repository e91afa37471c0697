package controllers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

// AgentsController streams agent searches over a websocket.
type AgentsController struct {
	docs *DocumentsController
}

func NewAgentsController(docs *DocumentsController) *AgentsController {
	return &AgentsController{docs: docs}
}

// StreamMessage is one frame sent to the client: a step event, the final
// result or an error.
type StreamMessage struct {
	Type   string            `json:"type"`
	Step   *core.StepEvent   `json:"step,omitempty"`
	Result *types.TaskResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func writeJSON(ctx context.Context, w *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.Write(ctx, websocket.MessageText, b)
}

// AgentWebSocket reads AgentTaskRequest frames and answers each with a stream
// of step frames followed by one result frame.
func (c *AgentsController) AgentWebSocket(ctx context.Context, w *websocket.Conn) {
	defer w.Close(websocket.StatusInternalError, "internal error")

	for {
		typ, data, err := w.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					logging.ErrorLogger.Error("websocket read error", zap.Error(err))
				}
			}
			return
		}
		if typ != websocket.MessageText {
			if err := writeJSON(ctx, w, StreamMessage{Type: "error", Error: "unsupported data"}); err != nil {
				return
			}
			continue
		}

		var req types.AgentTaskRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := writeJSON(ctx, w, StreamMessage{Type: "error", Error: "invalid json"}); err != nil {
				return
			}
			continue
		}

		if err := c.stream(ctx, w, req); err != nil {
			logging.ErrorLogger.Error("websocket write error", zap.Error(err))
			return
		}
	}
}

func (c *AgentsController) stream(ctx context.Context, w *websocket.Conn, req types.AgentTaskRequest) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan core.StepEvent)
	type outcome struct {
		result types.TaskResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(events)
		res, err := c.docs.Search(runCtx, req, events)
		done <- outcome{res, err}
	}()

	var writeErr error
	for ev := range events {
		if writeErr != nil {
			continue
		}
		if writeErr = writeJSON(ctx, w, StreamMessage{Type: "step", Step: &ev}); writeErr != nil {
			// stop the agent, then drain
			cancel()
		}
	}
	out := <-done
	if writeErr != nil {
		return writeErr
	}
	if out.err != nil {
		return writeJSON(ctx, w, StreamMessage{Type: "error", Error: out.err.Error()})
	}
	return writeJSON(ctx, w, StreamMessage{Type: "result", Result: &out.result})
}
