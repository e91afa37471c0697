package configs

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed tasks.yaml
var defaultTasksYAML []byte

// TaskKind names one navigation agent task variant.
type TaskKind string

const (
	KindDocuments    TaskKind = "documents"
	KindPDF          TaskKind = "pdf"
	KindNewsPDF      TaskKind = "news_pdf"
	KindAnnualReport TaskKind = "annual_report"
)

// Kinds lists every task variant a template set must define.
var Kinds = []TaskKind{KindDocuments, KindPDF, KindNewsPDF, KindAnnualReport}

func ParseKind(s string) (TaskKind, error) {
	k := TaskKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown task kind %q", s)
}

// TaskTemplate is a task variant: mission text plus its step and time budget.
type TaskTemplate struct {
	Kind               TaskKind      `yaml:"kind"`
	SearchDescription  string        `yaml:"search_description"`
	Mission            string        `yaml:"mission"`
	MaxSteps           int           `yaml:"max_steps"`
	StepTimeout        time.Duration `yaml:"step_timeout"`
	WaitBetweenActions time.Duration `yaml:"wait_between_actions"`
	Vision             bool          `yaml:"vision"`

	mission     *template.Template
	description *template.Template
}

// MissionParams fills a template. Subject is the search query, topic or
// company depending on the kind and may be empty.
type MissionParams struct {
	WebsiteURL string
	Subject    string
}

// Mission is a rendered, ready to run task.
type Mission struct {
	Kind               TaskKind
	Prompt             string
	SearchDescription  string
	MaxSteps           int
	StepTimeout        time.Duration
	WaitBetweenActions time.Duration
	Vision             bool
}

type taskFile struct {
	Tasks []TaskTemplate `yaml:"tasks"`
}

// TaskSet holds one template per kind.
type TaskSet struct {
	templates map[TaskKind]*TaskTemplate
}

// LoadTaskSet reads templates from path, or the embedded defaults when path is
// empty. Every kind must be present.
func LoadTaskSet(path string) (*TaskSet, error) {
	raw := defaultTasksYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading task templates: %w", err)
		}
		raw = b
	}
	return ParseTaskSet(raw)
}

func ParseTaskSet(raw []byte) (*TaskSet, error) {
	var f taskFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding task templates: %w", err)
	}

	set := &TaskSet{templates: make(map[TaskKind]*TaskTemplate, len(f.Tasks))}
	for i := range f.Tasks {
		t := f.Tasks[i]
		if _, err := ParseKind(string(t.Kind)); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := set.templates[t.Kind]; dup {
			return nil, fmt.Errorf("task %q defined twice", t.Kind)
		}
		if err := t.compile(); err != nil {
			return nil, err
		}
		set.templates[t.Kind] = &t
	}
	for _, k := range Kinds {
		if _, ok := set.templates[k]; !ok {
			return nil, fmt.Errorf("task %q is missing", k)
		}
	}
	return set, nil
}

func (t *TaskTemplate) compile() error {
	switch {
	case strings.TrimSpace(t.Mission) == "":
		return fmt.Errorf("task %q: mission is empty", t.Kind)
	case t.MaxSteps <= 0:
		return fmt.Errorf("task %q: max_steps must be positive", t.Kind)
	case t.StepTimeout <= 0:
		return fmt.Errorf("task %q: step_timeout must be positive", t.Kind)
	case t.WaitBetweenActions < 0:
		return fmt.Errorf("task %q: wait_between_actions is negative", t.Kind)
	}
	var err error
	if t.mission, err = template.New(string(t.Kind)).Option("missingkey=error").Parse(t.Mission); err != nil {
		return fmt.Errorf("task %q mission: %w", t.Kind, err)
	}
	if t.description, err = template.New(string(t.Kind) + "_desc").Option("missingkey=error").Parse(t.SearchDescription); err != nil {
		return fmt.Errorf("task %q search_description: %w", t.Kind, err)
	}
	return nil
}

// Template returns the template for kind.
func (s *TaskSet) Template(kind TaskKind) (*TaskTemplate, error) {
	t, ok := s.templates[kind]
	if !ok {
		return nil, fmt.Errorf("unknown task kind %q", kind)
	}
	return t, nil
}

// Render builds the mission for kind.
func (s *TaskSet) Render(kind TaskKind, p MissionParams) (Mission, error) {
	t, err := s.Template(kind)
	if err != nil {
		return Mission{}, err
	}
	var prompt, desc bytes.Buffer
	if err := t.mission.Execute(&prompt, p); err != nil {
		return Mission{}, fmt.Errorf("rendering %q mission: %w", kind, err)
	}
	if err := t.description.Execute(&desc, p); err != nil {
		return Mission{}, fmt.Errorf("rendering %q search description: %w", kind, err)
	}
	return Mission{
		Kind:               kind,
		Prompt:             strings.TrimSpace(prompt.String()),
		SearchDescription:  strings.TrimSpace(desc.String()),
		MaxSteps:           t.MaxSteps,
		StepTimeout:        t.StepTimeout,
		WaitBetweenActions: t.WaitBetweenActions,
		Vision:             t.Vision,
	}, nil
}
