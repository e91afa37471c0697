package configs

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/magiconair/properties"
	"go.uber.org/zap"

	"doclinks/doclinks/utils/logging"
)

//go:embed agent.properties
var defaultAgentProperties string

// AgentConfig is the navigation agent's persona and response contract.
type AgentConfig struct {
	AgentName        string
	AgentRole        string
	DecisionProcess  string
	AvailableActions []string
	OutputStructure  string
	DoneInstructions string
	AdditionalInfo   string
}

// LoadAgentConfig reads the persona from path, or the embedded default when
// path is empty.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	var (
		props *properties.Properties
		err   error
	)
	if path == "" {
		props, err = properties.LoadString(defaultAgentProperties)
	} else {
		props, err = properties.LoadFile(path, properties.UTF8)
	}
	if err != nil {
		logging.AppLogger.Error("Agent config load error", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("loading agent config: %w", err)
	}

	// helper to parse comma-separated values
	parseSlice := func(val string) []string {
		if val == "" {
			return []string{}
		}
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	cfg := &AgentConfig{
		AgentName:        props.GetString("agent_name", "DocLinks Navigator"),
		AgentRole:        props.GetString("agent_role", ""),
		DecisionProcess:  props.GetString("decision_process", ""),
		AvailableActions: parseSlice(props.GetString("available_actions", "")),
		OutputStructure:  props.GetString("output_structure", ""),
		DoneInstructions: props.GetString("done_instructions", ""),
		AdditionalInfo:   props.GetString("additional_info", ""),
	}
	if cfg.OutputStructure == "" {
		return nil, fmt.Errorf("agent config: output_structure is required")
	}
	return cfg, nil
}

// Allows reports whether the persona exposes the named action. An empty list
// allows everything.
func (c *AgentConfig) Allows(action string) bool {
	if len(c.AvailableActions) == 0 {
		return true
	}
	for _, a := range c.AvailableActions {
		if a == action {
			return true
		}
	}
	return false
}
