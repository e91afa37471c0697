package core

import (
	"fmt"
	"sort"
	"strings"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/utils/textutils"
	"doclinks/doclinks/utils/types"
)

// promptAttributes are the element attributes worth showing to the model.
var promptAttributes = []string{"href", "type", "name", "placeholder", "aria-label", "title", "role", "value"}

const recentSteps = 8

func systemPrompt(persona *configs.AgentConfig, actions string, schema OutputSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n\n", persona.AgentName, persona.AgentRole)
	if persona.DecisionProcess != "" {
		b.WriteString(persona.DecisionProcess + "\n\n")
	}
	b.WriteString("Available actions:\n" + actions + "\n\n")
	b.WriteString(persona.OutputStructure + "\n")
	if schema != nil {
		b.WriteString("\n" + persona.DoneInstructions + "\n" + schema.Describe() + "\n")
	}
	if persona.AdditionalInfo != "" {
		b.WriteString("\n" + persona.AdditionalInfo + "\n")
	}
	return b.String()
}

func stepPrompt(task string, steps []StepRecord, state *types.PageState, step, maxSteps, maxElements int) string {
	var b strings.Builder
	b.WriteString("Task:\n" + task + "\n\n")

	if len(steps) > 0 {
		b.WriteString("Previous steps:\n")
		start := 0
		if len(steps) > recentSteps {
			start = len(steps) - recentSteps
		}
		for _, s := range steps[start:] {
			b.WriteString(formatStep(s) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Current page:\n")
	if state == nil || state.URL == "" {
		b.WriteString("No page loaded yet.\n")
	} else {
		fmt.Fprintf(&b, "URL: %s\nTitle: %s\n", state.URL, state.Title)
		b.WriteString("Interactive elements:\n")
		b.WriteString(formatElements(state.Elements, maxElements))
		if state.Markdown != "" {
			b.WriteString("\nPage content:\n" + state.Markdown + "\n")
		}
	}
	fmt.Fprintf(&b, "\nStep %d of %d.", step, maxSteps)
	if step == maxSteps {
		b.WriteString(" This is the last step: call done with what you have.")
	}
	return b.String()
}

func formatStep(s StepRecord) string {
	line := fmt.Sprintf("%d. %s", s.Step, s.Action)
	if len(s.Params) > 0 && string(s.Params) != "{}" {
		line += " " + string(s.Params)
	}
	switch {
	case s.Error != "":
		line += " -> error: " + textutils.Truncate(s.Error, 200)
	case s.Result != "":
		line += " -> " + textutils.Truncate(s.Result, 600)
	}
	return line
}

func formatElements(elements []types.DOMElement, max int) string {
	if len(elements) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for i, el := range elements {
		if max > 0 && i == max {
			fmt.Fprintf(&b, "... %d more elements, scroll or extract_links to see them\n", len(elements)-max)
			break
		}
		fmt.Fprintf(&b, "[%d]<%s%s>%s</%s>\n", el.Index, el.Tag, formatAttrs(el.Attributes),
			textutils.Truncate(el.Text, 80), el.Tag)
	}
	return b.String()
}

func formatAttrs(attrs map[string]string) string {
	var parts []string
	for _, k := range promptAttributes {
		if v, ok := attrs[k]; ok && strings.TrimSpace(v) != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", k, textutils.Truncate(v, 120)))
		}
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
