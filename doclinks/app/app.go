// Package app builds the services shared by the HTTP server, the MCP server
// and the CLI from one Config.
package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/config"
	"doclinks/doclinks/controllers"
	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/services/extractor"
	"doclinks/doclinks/services/finder"
	"doclinks/doclinks/services/llm"
	"doclinks/doclinks/utils/logging"
)

type App struct {
	Config    config.Config
	Launcher  browser.Launcher
	Extractor *extractor.Extractor
	// Finder is nil when no LLM API key is configured.
	Finder    *finder.Finder
	Documents *controllers.DocumentsController

	closeLauncher func() error
}

// New wires the production stack: Chromium via playwright and an
// OpenAI-compatible chat endpoint.
func New(cfg config.Config) (*App, error) {
	launcher := browser.NewPlaywrightLauncher()
	a, err := Build(cfg, launcher, nil)
	if err != nil {
		return nil, err
	}
	a.closeLauncher = launcher.Close
	return a, nil
}

// Build wires the stack on the given launcher. client may be nil, in which
// case one is created from cfg when an API key is set.
func Build(cfg config.Config, launcher browser.Launcher, client llm.Client) (*App, error) {
	tasks, err := configs.LoadTaskSet(cfg.TaskTemplatesPath)
	if err != nil {
		return nil, err
	}
	persona, err := configs.LoadAgentConfig(cfg.AgentConfigPath)
	if err != nil {
		return nil, err
	}

	base := browser.Profile{
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
		MaxPageChars:      cfg.MaxPageChars,
	}
	extProfile := extractor.DefaultProfile()
	extProfile.Headless = cfg.Headless
	extProfile.NavigationTimeout = cfg.NavigationTimeout
	extProfile.MaxPageChars = cfg.MaxPageChars
	ext := extractor.New(launcher, extractor.Options{SettleDelay: cfg.SettleDelay, Profile: extProfile})

	if client == nil && cfg.OpenAIAPIKey != "" {
		c, err := llm.NewOpenAIClient(llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.LLMModel})
		if err != nil {
			return nil, err
		}
		client = c
	}

	a := &App{Config: cfg, Launcher: launcher, Extractor: ext}
	var docFinder controllers.DocumentFinder
	if client != nil {
		f, err := finder.New(finder.Options{
			Launcher:    launcher,
			LLM:         client,
			Tasks:       tasks,
			Runner:      finder.CoreRunner{Persona: persona},
			Model:       cfg.LLMModel,
			IncludeCost: cfg.IncludeCost,
			Profile:     base,
		})
		if err != nil {
			return nil, err
		}
		a.Finder = f
		docFinder = f
	} else {
		logging.AppLogger.Warn("OPENAI_API_KEY is not set; agent searches are disabled")
	}

	a.Documents = controllers.NewDocumentsController(ext, docFinder, cfg.FixedSiteURL, cfg.LLMModel)
	return a, nil
}

// Close stops the shared extractor session and the browser driver.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Extractor.Cleanup(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.closeLauncher != nil {
		if err := a.closeLauncher(); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		logging.ErrorLogger.Error("Shutdown cleanup failed", zap.Error(err))
	}
	return err
}
