package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaskBudgets(t *testing.T) {
	set, err := LoadTaskSet("")
	require.NoError(t, err)

	tests := []struct {
		kind    TaskKind
		steps   int
		timeout time.Duration
		wait    time.Duration
	}{
		{KindDocuments, 15, 60 * time.Second, 300 * time.Millisecond},
		{KindPDF, 12, 45 * time.Second, 200 * time.Millisecond},
		{KindNewsPDF, 12, 45 * time.Second, 200 * time.Millisecond},
		{KindAnnualReport, 12, 45 * time.Second, 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m, err := set.Render(tt.kind, MissionParams{WebsiteURL: "https://example.com", Subject: "climate"})
			require.NoError(t, err)
			assert.Equal(t, tt.steps, m.MaxSteps)
			assert.Equal(t, tt.timeout, m.StepTimeout)
			assert.Equal(t, tt.wait, m.WaitBetweenActions)
			assert.True(t, m.Vision)
			assert.Contains(t, m.Prompt, "https://example.com")
			assert.Contains(t, m.Prompt, "Do not download")
		})
	}
}

func TestRenderSubstitutesSubject(t *testing.T) {
	set, err := LoadTaskSet("")
	require.NoError(t, err)

	m, err := set.Render(KindNewsPDF, MissionParams{WebsiteURL: "https://finance.yahoo.com", Subject: "JPMorgan"})
	require.NoError(t, err)
	assert.Equal(t, "latest PDF news URLs about JPMorgan", m.SearchDescription)
	assert.Contains(t, m.Prompt, "PDF news about JPMorgan")
	assert.NotContains(t, m.Prompt, "{{")

	m, err = set.Render(KindAnnualReport, MissionParams{WebsiteURL: "https://ir.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "annual report URLs", m.SearchDescription)
}

func TestParseTaskSetRejectsIncompleteSets(t *testing.T) {
	_, err := ParseTaskSet([]byte(`
tasks:
  - kind: pdf
    mission: "find {{.Subject}}"
    max_steps: 3
    step_timeout: 5s
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	_, err = ParseTaskSet([]byte(`
tasks:
  - kind: pdf
    mission: "x"
    max_steps: 0
    step_timeout: 5s
`))
	require.Error(t, err)

	_, err = ParseTaskSet([]byte(`tasks: [{kind: spreadsheets, mission: x, max_steps: 1, step_timeout: 1s}]`))
	require.Error(t, err)
}

func TestLoadTaskSetFromFile(t *testing.T) {
	var b strings.Builder
	b.WriteString("tasks:\n")
	for _, k := range Kinds {
		b.WriteString("  - kind: " + string(k) + "\n")
		b.WriteString("    mission: \"visit {{.WebsiteURL}}\"\n")
		b.WriteString("    search_description: \"" + string(k) + "\"\n")
		b.WriteString("    max_steps: 2\n    step_timeout: 3s\n")
	}
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	set, err := LoadTaskSet(path)
	require.NoError(t, err)
	m, err := set.Render(KindPDF, MissionParams{WebsiteURL: "https://a.example"})
	require.NoError(t, err)
	assert.Equal(t, "visit https://a.example", m.Prompt)
	assert.Equal(t, 2, m.MaxSteps)
	assert.Zero(t, m.WaitBetweenActions)
	assert.False(t, m.Vision)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Annual_Report ")
	require.NoError(t, err)
	assert.Equal(t, KindAnnualReport, k)

	_, err = ParseKind("video")
	assert.Error(t, err)
}

func TestLoadAgentConfigDefault(t *testing.T) {
	cfg, err := LoadAgentConfig("")
	require.NoError(t, err)

	assert.Equal(t, "DocLinks Navigator", cfg.AgentName)
	assert.Contains(t, cfg.AvailableActions, "extract_links")
	assert.Contains(t, cfg.AvailableActions, "done")
	assert.Contains(t, cfg.OutputStructure, `"thought"`)
	assert.NotContains(t, cfg.AgentRole, "\\")
	assert.True(t, cfg.Allows("navigate"))
	assert.False(t, cfg.Allows("delete_everything"))
}

func TestLoadAgentConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.properties")
	require.NoError(t, os.WriteFile(path, []byte("agent_name = Scout\noutput_structure = json please\n"), 0o644))

	cfg, err := LoadAgentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Scout", cfg.AgentName)
	assert.Empty(t, cfg.AvailableActions)
	assert.True(t, cfg.Allows("anything"))

	_, err = LoadAgentConfig(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}
