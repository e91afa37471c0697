// Package finder turns a search goal into a budgeted navigation agent run and
// normalizes what the agent returns into a TaskResult.
package finder

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/services/browser"
	"doclinks/doclinks/services/llm"
	"doclinks/doclinks/services/usage"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

const stopTimeout = 10 * time.Second

var ErrMissingSite = errors.New("website url is required")

type Options struct {
	Launcher browser.Launcher
	LLM      llm.Client
	// Tasks defaults to the embedded task templates.
	Tasks *configs.TaskSet
	// Runner defaults to CoreRunner.
	Runner AgentRunner
	// Model is reported in usage when the client does not name one.
	Model       string
	IncludeCost bool
	// Profile is the base browser profile. WaitBetweenActions comes from the
	// task template and security relaxations are always on.
	Profile browser.Profile
}

// Finder runs search tasks. Each call gets its own browser session and usage
// meter, so calls may run concurrently.
type Finder struct {
	launcher    browser.Launcher
	llm         llm.Client
	tasks       *configs.TaskSet
	runner      AgentRunner
	schema      core.OutputSchema
	model       string
	includeCost bool
	profile     browser.Profile
}

func New(opts Options) (*Finder, error) {
	if opts.Launcher == nil || opts.LLM == nil {
		return nil, errors.New("finder needs a browser launcher and an llm client")
	}
	if opts.Tasks == nil {
		tasks, err := configs.LoadTaskSet("")
		if err != nil {
			return nil, err
		}
		opts.Tasks = tasks
	}
	if opts.Runner == nil {
		opts.Runner = CoreRunner{}
	}
	schema, err := NewSearchResultSchema()
	if err != nil {
		return nil, err
	}
	return &Finder{
		launcher:    opts.Launcher,
		llm:         opts.LLM,
		tasks:       opts.Tasks,
		runner:      opts.Runner,
		schema:      schema,
		model:       opts.Model,
		includeCost: opts.IncludeCost,
		profile:     opts.Profile,
	}, nil
}

// Task is one search request.
type Task struct {
	Kind configs.TaskKind
	Site string
	// Subject is the query, topic or company. Unused by annual_report.
	Subject string
	// Events receives agent step events when set.
	Events chan<- core.StepEvent
}

func (f *Finder) FindDocuments(ctx context.Context, site, query string) types.TaskResult {
	return f.ExecuteTask(ctx, configs.KindDocuments, site, query)
}

func (f *Finder) FindPDFURLs(ctx context.Context, site, topic string) types.TaskResult {
	return f.ExecuteTask(ctx, configs.KindPDF, site, topic)
}

func (f *Finder) FindNewsPDFURLs(ctx context.Context, site, company string) types.TaskResult {
	return f.ExecuteTask(ctx, configs.KindNewsPDF, site, company)
}

func (f *Finder) FindAnnualReportURLs(ctx context.Context, site string) types.TaskResult {
	return f.ExecuteTask(ctx, configs.KindAnnualReport, site, "")
}

func (f *Finder) ExecuteTask(ctx context.Context, kind configs.TaskKind, site, subject string) types.TaskResult {
	return f.Run(ctx, Task{Kind: kind, Site: site, Subject: subject})
}

// Run executes t. It never returns an error: failures, panics included, come
// back as success=false with the usage report attached.
func (f *Finder) Run(ctx context.Context, t Task) (result types.TaskResult) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	defer logging.LogDuration(ctx, "find_"+string(t.Kind))()

	site := NormalizeSite(t.Site)
	result = types.TaskResult{Website: site, SearchType: string(t.Kind), Documents: []types.FoundDocumentRecord{}}

	meter := usage.NewMeter(f.model, f.includeCost)
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("Panic during document search", append(logging.RunFields(ctx),
				zap.Any("recover", r), zap.ByteString("stack", debug.Stack()))...)
			fail(&result, fmt.Errorf("panic: %v", r))
		}
		// attached on every path
		result.TokenUsage = meter.Summary(ctx)
		if result.Documents == nil {
			result.Documents = []types.FoundDocumentRecord{}
		}
	}()

	logging.AppLogger.Info("Starting document search", append(logging.RunFields(ctx),
		zap.String("kind", string(t.Kind)), zap.String("website", site), zap.String("subject", t.Subject))...)

	if err := f.run(ctx, t, site, meter, &result); err != nil {
		logging.ErrorLogger.Error("Error during document search", append(logging.RunFields(ctx),
			zap.String("kind", string(t.Kind)), zap.String("website", site), zap.Error(err))...)
		fail(&result, err)
	}
	return result
}

func (f *Finder) run(ctx context.Context, t Task, site string, meter *usage.Meter, result *types.TaskResult) error {
	if site == "" {
		return ErrMissingSite
	}
	mission, err := f.tasks.Render(t.Kind, configs.MissionParams{WebsiteURL: site, Subject: strings.TrimSpace(t.Subject)})
	if err != nil {
		return err
	}
	result.SearchType = mission.SearchDescription

	if err := meter.Initialize(ctx); err != nil {
		return err
	}
	client := meter.Register(f.llm)

	session, err := f.launcher.NewSession(ctx, f.sessionProfile(mission))
	if err != nil {
		return fmt.Errorf("starting browser session: %w", err)
	}
	defer stopSession(ctx, session)

	history, err := f.runner.Run(ctx, AgentRequest{
		Mission: mission,
		LLM:     client,
		Session: session,
		Schema:  f.schema,
		Events:  t.Events,
	})
	result.AgentSteps = history.StepCount()
	if err != nil {
		if !errors.Is(err, core.ErrTooManyFailures) {
			return err
		}
		// the agent gave up; whatever it gathered is still worth normalizing
		logging.AppLogger.Warn("Agent stopped after repeated failures", append(logging.RunFields(ctx), zap.Error(err))...)
	}

	apply(result, Normalize(history), mission.SearchDescription)
	logging.AppLogger.Info("Document search complete", append(logging.RunFields(ctx),
		zap.Bool("success", result.Success), zap.Int("documents", len(result.Documents)),
		zap.Int("steps", result.AgentSteps))...)
	return nil
}

func (f *Finder) sessionProfile(m configs.Mission) browser.Profile {
	p := f.profile
	p.WaitBetweenActions = m.WaitBetweenActions
	p.DisableSecurity = true
	return p
}

func apply(result *types.TaskResult, o Outcome, searchDescription string) {
	switch o := o.(type) {
	case Structured:
		result.Success = o.Result.Success
		result.Documents = o.Result.Documents
		result.SearchSummary = o.Result.SearchSummary
		if strings.TrimSpace(result.SearchSummary) == "" {
			result.SearchSummary = "URL extraction completed for " + searchDescription
		}
	case FreeTextRecovered:
		result.Success = true
		result.Documents = o.Documents
		result.SearchSummary = RecoveredSummary
	case Unrecovered:
		result.Success = false
		result.Documents = []types.FoundDocumentRecord{}
		result.Error = UnrecoveredError
		result.SearchSummary = UnrecoveredSummary
	default:
		panic(fmt.Sprintf("finder: unhandled outcome %T", o))
	}
}

// fail names the search in the summary: the rendered search description once
// the mission exists, the task kind before that.
func fail(result *types.TaskResult, err error) {
	result.Success = false
	result.Documents = []types.FoundDocumentRecord{}
	result.Error = err.Error()
	result.SearchSummary = "URL extraction failed for " + result.SearchType + ": " + err.Error()
}

// stopSession runs on every exit path. Its errors and panics are logged only.
func stopSession(ctx context.Context, s browser.Session) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("Panic while stopping browser session", append(logging.RunFields(ctx), zap.Any("recover", r))...)
		}
	}()
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		logging.ErrorLogger.Warn("Stopping browser session", append(logging.RunFields(ctx), zap.Error(err))...)
	}
}

// NormalizeSite trims site and adds https:// to a bare host.
func NormalizeSite(site string) string {
	site = strings.TrimSpace(site)
	if site == "" || strings.Contains(site, "://") {
		return site
	}
	return "https://" + site
}
