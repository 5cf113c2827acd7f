// Package mission holds the conversational curriculum: the ordered stages a
// fan works through while talking to Jinwoo, the keyword heuristic that
// decides stage completion, and the canned-reply bank used when the reply
// upstream is unreachable.
package mission

import "strings"

// Stage is one step of the curriculum.
type Stage struct {
	Prompt    string   `yaml:"prompt" json:"prompt"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
	Fallbacks []string `yaml:"fallbacks" json:"fallbacks"`
}

// Persona identifies the character the reply upstream must stay in.
type Persona struct {
	Name  string `yaml:"name" json:"name"`
	Group string `yaml:"group" json:"group"`
}

// Curriculum is the per-deployment mission definition. It is loaded once at
// startup and never mutated; all methods are safe for concurrent use.
type Curriculum struct {
	Persona Persona `yaml:"persona" json:"persona"`
	Stages  []Stage `yaml:"stages" json:"stages"`
}

// Len returns the number of stages.
func (c *Curriculum) Len() int {
	return len(c.Stages)
}

// Prompts returns the ordered stage prompts.
func (c *Curriculum) Prompts() []string {
	prompts := make([]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		prompts = append(prompts, s.Prompt)
	}
	return prompts
}

// IsComplete reports whether message satisfies the stage at missionIndex:
// true iff any stage keyword occurs as a case-sensitive substring anywhere in
// the message. An index with no defined stage is never complete. The match is
// deliberately low-precision; the keyword lists are colloquial fragments like
// "안녕" or "취미" and exact containment is the contract.
func (c *Curriculum) IsComplete(message string, missionIndex int) bool {
	if missionIndex < 0 || missionIndex >= len(c.Stages) {
		return false
	}
	for _, keyword := range c.Stages[missionIndex].Keywords {
		if keyword != "" && strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// Advance returns the next mission index: one step forward when the current
// stage completed and a later stage exists, otherwise unchanged. The index
// saturates at the last stage; it never wraps and never regresses.
func (c *Curriculum) Advance(missionIndex int, completed bool) int {
	if completed && missionIndex < len(c.Stages)-1 {
		return missionIndex + 1
	}
	return missionIndex
}
