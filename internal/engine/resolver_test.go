package engine

import (
	"bytes"
	"context"
	"testing"

	"github.com/maa-labs/maa-cli/internal/manifest"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(testManifest))
	require.NoError(t, err)
	return m
}

// scripted answers prompts from fixed values and records what was asked.
type scripted struct {
	selects []prompt.SelectRequest
	multis  []prompt.MultiSelectRequest
	single  string
	multi   []string
}

func (s *scripted) Select(_ context.Context, req prompt.SelectRequest) (string, error) {
	s.selects = append(s.selects, req)
	return s.single, nil
}

func (s *scripted) MultiSelect(_ context.Context, req prompt.MultiSelectRequest) ([]string, error) {
	s.multis = append(s.multis, req)
	return s.multi, nil
}

func (s *scripted) Text(context.Context, prompt.TextRequest) (string, error) {
	return "", prompt.ErrNoInput
}

func TestResolverPromptsWithDefaults(t *testing.T) {
	m := loadTestManifest(t)
	in := &scripted{single: "go", multi: []string{"release"}}
	r := &Resolver{Input: in, Logger: output.NewLogger(&bytes.Buffer{})}
	st := NewState()

	lang, _ := m.Feature("lang")
	values, ok, err := r.Resolve(context.Background(), lang, st, nil, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"go"}, values)
	require.Len(t, in.selects, 1)
	assert.Equal(t, "py", in.selects[0].Default)
	assert.Equal(t, "Agent language", in.selects[0].Description)

	ci, _ := m.Feature("ci")
	values, _, err = r.Resolve(context.Background(), ci, st, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"release"}, values)
	assert.Equal(t, []string{"lint"}, in.multis[0].Default)

	got, ok := st.Feature("lang")
	assert.True(t, ok)
	assert.Equal(t, []string{"go"}, got)
}

func TestResolverOverrideSkipsPrompt(t *testing.T) {
	m := loadTestManifest(t)
	in := &scripted{}
	r := &Resolver{Input: in, Logger: output.NewLogger(&bytes.Buffer{})}

	lang, _ := m.Feature("lang")
	values, _, err := r.Resolve(context.Background(), lang, NewState(), []string{"go"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, values)
	assert.Empty(t, in.selects)
}

func TestResolverKeepsSourceOrder(t *testing.T) {
	m := loadTestManifest(t)
	r := &Resolver{Input: &scripted{multi: []string{"release", "lint"}}, Logger: output.NewLogger(&bytes.Buffer{})}

	ci, _ := m.Feature("ci")
	values, _, err := r.Resolve(context.Background(), ci, NewState(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"release", "lint"}, values)
}

func TestResolverRejectsPromptedUnknownChoice(t *testing.T) {
	m := loadTestManifest(t)
	r := &Resolver{Input: &scripted{multi: []string{"deploy"}}, Logger: output.NewLogger(&bytes.Buffer{})}

	ci, _ := m.Feature("ci")
	_, _, err := r.Resolve(context.Background(), ci, NewState(), nil, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolverGateUsesEarlierState(t *testing.T) {
	m := loadTestManifest(t)
	r := &Resolver{Input: prompt.Silent{}, Logger: output.NewLogger(&bytes.Buffer{})}
	ui, _ := m.Feature("ui")

	// lang unresolved: the comparison is false.
	_, ok, err := r.Resolve(context.Background(), ui, NewState(), nil, false)
	require.NoError(t, err)
	assert.False(t, ok)

	st := NewState()
	st.record("lang", []string{"py"})
	values, ok, err := r.Resolve(context.Background(), ui, st, nil, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"mfaa"}, values)
}

func TestPlannerVarSetImmediately(t *testing.T) {
	m := loadTestManifest(t)
	p := &Planner{Logger: output.NewLogger(&bytes.Buffer{})}
	st := NewState()

	ui, _ := m.Feature("ui")
	require.NoError(t, p.Add(ui, []string{"mfw"}, st))
	v, ok := st.Var("ui")
	assert.True(t, ok)
	assert.Equal(t, "mfw", v)
	assert.Equal(t, []Action{{Feature: "ui", Choice: "mfw", Bundle: "ui-mfw"}}, p.Plan())

	ci, _ := m.Feature("ci")
	require.NoError(t, p.Add(ci, []string{"release", "lint"}, st))
	assert.Equal(t, []string{"ui-mfw", "ci-release", "ci-lint", "common"}, bundles(p.Plan()))

	assert.ErrorIs(t, p.Add(ci, []string{"deploy"}, st), ErrValidation)
}

func bundles(plan []Action) []string {
	out := make([]string, len(plan))
	for i, a := range plan {
		out[i] = a.Bundle
	}
	return out
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "features-resolved", StageFeaturesResolved.String())
	assert.Equal(t, "aborted", StageAborted.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
