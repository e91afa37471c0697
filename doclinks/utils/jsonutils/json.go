package jsonutils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object in reply")

var (
	reFence         = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	reObject        = regexp.MustCompile(`(?s)\{.*\}`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractJSON pulls the JSON object out of a model reply. A fenced block wins
// over a bare object. Candidates that are not valid JSON get the usual repairs
// (over-escaped quotes, trailing commas) and are returned as is.
func ExtractJSON(reply string) string {
	s := candidate(stripInvisible(reply))
	if json.Valid([]byte(s)) {
		return s
	}
	return repair(s)
}

// DecodeObject extracts the object from reply and unmarshals it into v.
func DecodeObject(reply string, v any) error {
	s := ExtractJSON(reply)
	if s == "" {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(s), v)
}

func stripInvisible(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '\uFEFF', '\u200B', '\u200C', '\u200D':
			return -1
		}
		return r
	}, s))
}

func candidate(s string) string {
	if m := reFence.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	// greedy: first { to last }
	if m := reObject.FindString(s); m != "" {
		return strings.TrimSpace(m)
	}
	return s
}

func repair(s string) string {
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = reTrailingComma.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// ToJSON renders v with two-space indentation, the format every tool and
// HTTP response uses. It returns "" when v cannot be marshalled.
func ToJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
