package testutil

import (
	"fmt"
	"strings"
)

// ScriptedPrompter answers prompts from a fixed script, in order.
//
// Select answers pick the first option containing the scripted text, so
// tests don't depend on exact menu labels. An error in the script is
// returned from whatever prompt consumes it.
type ScriptedPrompter struct {
	Script []any
	Asked  []string // Titles of every prompt shown, in order
}

// NewScriptedPrompter creates a prompter that replays answers.
func NewScriptedPrompter(answers ...any) *ScriptedPrompter {
	return &ScriptedPrompter{Script: answers}
}

// Remaining returns the number of unused answers.
func (p *ScriptedPrompter) Remaining() int {
	return len(p.Script)
}

func (p *ScriptedPrompter) next(title string) (any, error) {
	p.Asked = append(p.Asked, title)
	if len(p.Script) == 0 {
		return nil, fmt.Errorf("script exhausted at prompt %q", title)
	}
	answer := p.Script[0]
	p.Script = p.Script[1:]
	if err, ok := answer.(error); ok {
		return nil, err
	}
	return answer, nil
}

func (p *ScriptedPrompter) Select(title string, options []string) (string, error) {
	answer, err := p.next(title)
	if err != nil {
		return "", err
	}
	want, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q: expected string answer, got %T", title, answer)
	}
	for _, opt := range options {
		if strings.Contains(opt, want) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("prompt %q: no option contains %q in %v", title, want, options)
}

func (p *ScriptedPrompter) Input(title string, defaultValue string) (string, error) {
	answer, err := p.next(title)
	if err != nil {
		return "", err
	}
	s, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q: expected string answer, got %T", title, answer)
	}
	if s == KeepDefault {
		return defaultValue, nil
	}
	return s, nil
}

func (p *ScriptedPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	answer, err := p.next(title)
	if err != nil {
		return false, err
	}
	b, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("prompt %q: expected bool answer, got %T", title, answer)
	}
	return b, nil
}

func (p *ScriptedPrompter) MultiSelect(title string, options []string) ([]string, error) {
	answer, err := p.next(title)
	if err != nil {
		return nil, err
	}
	wants, ok := answer.([]string)
	if !ok {
		return nil, fmt.Errorf("prompt %q: expected []string answer, got %T", title, answer)
	}
	var result []string
	for _, want := range wants {
		for _, opt := range options {
			if strings.Contains(opt, want) {
				result = append(result, opt)
				break
			}
		}
	}
	return result, nil
}

func (p *ScriptedPrompter) PickFile(title string) (string, error) {
	answer, err := p.next(title)
	if err != nil {
		return "", err
	}
	s, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q: expected string answer, got %T", title, answer)
	}
	return s, nil
}

// KeepDefault makes Input return its default value.
const KeepDefault = "\x00keep"
