package finder

import (
	"context"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/services/llm"
)

// AgentRequest is everything one agent run needs.
type AgentRequest struct {
	Mission configs.Mission
	LLM     llm.Client
	Session browser.Session
	Schema  core.OutputSchema
	Events  chan<- core.StepEvent
}

// AgentRunner runs a navigation agent to completion or budget exhaustion.
type AgentRunner interface {
	Run(ctx context.Context, req AgentRequest) (*core.History, error)
}

// AgentRunnerFunc adapts a function to AgentRunner.
type AgentRunnerFunc func(ctx context.Context, req AgentRequest) (*core.History, error)

func (f AgentRunnerFunc) Run(ctx context.Context, req AgentRequest) (*core.History, error) {
	return f(ctx, req)
}

// CoreRunner runs missions on core.BaseAgent.
type CoreRunner struct {
	// Persona defaults to the embedded agent config.
	Persona *configs.AgentConfig
}

func (r CoreRunner) Run(ctx context.Context, req AgentRequest) (*core.History, error) {
	agent, err := core.NewBaseAgent(core.Settings{
		Task:               req.Mission.Prompt,
		LLM:                req.LLM,
		Session:            req.Session,
		Persona:            r.Persona,
		OutputSchema:       req.Schema,
		UseVision:          req.Mission.Vision,
		MaxSteps:           req.Mission.MaxSteps,
		StepTimeout:        req.Mission.StepTimeout,
		WaitBetweenActions: req.Mission.WaitBetweenActions,
		Events:             req.Events,
	})
	if err != nil {
		return nil, err
	}
	return agent.Run(ctx)
}
