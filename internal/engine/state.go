package engine

import (
	"maps"
	"slices"
)

// Stage is a step of a run. Stages only move forward; a failed run ends in
// Aborted and keeps the last stage it completed in Result.Reached.
type Stage int

const (
	StageInit Stage = iota
	StageTemplateReady
	StageFeaturesResolved
	StageBundlesApplied
	StageHooksRun
	StageDone
	StageAborted
)

var stageNames = map[Stage]string{
	StageInit:             "init",
	StageTemplateReady:    "template-ready",
	StageFeaturesResolved: "features-resolved",
	StageBundlesApplied:   "bundles-applied",
	StageHooksRun:         "hooks-run",
	StageDone:             "done",
	StageAborted:          "aborted",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "unknown"
}

// State is the run-scoped variable store and resolved-feature map. It is
// the environment requirement expressions are evaluated against.
type State struct {
	vars     map[string]string
	resolved map[string][]string
	order    []string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		vars:     make(map[string]string),
		resolved: make(map[string][]string),
	}
}

// Feature implements expr.Env.
func (s *State) Feature(name string) ([]string, bool) {
	v, ok := s.resolved[name]
	return v, ok
}

// Var implements expr.Env.
func (s *State) Var(key string) (string, bool) {
	v, ok := s.vars[key]
	return v, ok
}

// SetVar assigns a variable.
func (s *State) SetVar(key, value string) {
	s.vars[key] = value
}

// record stores the resolved value of a feature. A feature is recorded once.
func (s *State) record(name string, values []string) {
	if _, ok := s.resolved[name]; !ok {
		s.order = append(s.order, name)
	}
	s.resolved[name] = slices.Clone(values)
}

// Vars returns a copy of the variable store.
func (s *State) Vars() map[string]string {
	return maps.Clone(s.vars)
}

// Resolved returns a copy of the resolved-feature map.
func (s *State) Resolved() map[string][]string {
	out := make(map[string][]string, len(s.resolved))
	for k, v := range s.resolved {
		out[k] = slices.Clone(v)
	}
	return out
}

// Order returns the resolved feature names in resolution order.
func (s *State) Order() []string {
	return slices.Clone(s.order)
}
