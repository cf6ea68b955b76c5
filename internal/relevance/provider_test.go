package relevance

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

type stubProvider struct {
	response   map[string]any
	err        error
	lastPrompt string
	lastSystem string
	lastSchema ai.Schema
}

func (s *stubProvider) GenerateStructured(_ context.Context, prompt string, schema ai.Schema, system string) (map[string]any, error) {
	s.lastPrompt, s.lastSchema, s.lastSystem = prompt, schema, system
	return s.response, s.err
}

func TestProviderMatcherParsesResponse(t *testing.T) {
	stub := &stubProvider{response: map[string]any{
		"overall_score":    0.82,
		"skills_score":     "0.9",
		"experience_score": 1.4,
		"location_score":   -1.0,
		"salary_score":     0.6,
		"matching_skills":  []any{"Go", " ", "SQL"},
		"missing_skills":   []any{"Rust"},
		"reasoning":        " Strong backend fit. ",
	}}
	m := NewProviderMatcher(stub, "Prefer [fintech]\ncompanies", nil)

	p := &profile.Profile{FullName: "Jane Doe", Skills: []string{"Go", "SQL"}}
	job := &jobs.Job{
		Title:        "Backend Engineer",
		Company:      "Acme",
		Level:        jobs.LevelSenior,
		Requirements: []string{"Go"},
		Salary:       &jobs.Salary{Min: jobs.Amount(120000), Max: jobs.Amount(150000), Period: "yearly"},
	}

	score, err := m.Match(context.Background(), p, job)
	require.NoError(t, err)

	assert.Equal(t, 0.82, score.Overall)
	assert.Equal(t, 0.9, score.Skills)
	assert.Equal(t, 1.0, score.Experience)
	assert.Equal(t, 0.0, score.Location)
	assert.Equal(t, 0.5, score.Level)
	assert.Equal(t, []string{"Go", "SQL"}, score.MatchingSkills)
	assert.Equal(t, "Strong backend fit.", score.Reasoning)
	assert.Equal(t, NameProvider, score.Matcher)
	assert.Empty(t, score.Error)

	assert.Contains(t, stub.lastPrompt, "Name: Jane Doe")
	assert.Contains(t, stub.lastPrompt, "Level: senior")
	assert.Contains(t, stub.lastPrompt, "Salary: $120,000 - $150,000 yearly")
	assert.Contains(t, stub.lastPrompt, "Location: Not specified")
	assert.Contains(t, stub.lastPrompt, "Prefer (fintech) companies")
	assert.NotContains(t, stub.lastPrompt, "{{")
	assert.Equal(t, systemPrompt, stub.lastSystem)
	assert.Equal(t, ScoringSchema, stub.lastSchema)
}

func TestProviderMatcherFallsBackToNeutral(t *testing.T) {
	for _, failure := range []error{ai.ErrUnavailable, ai.ErrTimeout, ai.ErrMalformedOutput} {
		t.Run(failure.Error(), func(t *testing.T) {
			stub := &stubProvider{err: fmt.Errorf("wrapped: %w", failure)}
			score, err := NewProviderMatcher(stub, "", nil).Match(context.Background(), &profile.Profile{}, &jobs.Job{})
			require.NoError(t, err)

			for _, v := range []float64{score.Overall, score.Skills, score.Experience, score.Location, score.Salary, score.Level} {
				assert.Equal(t, 0.5, v)
			}
			assert.True(t, strings.HasPrefix(score.Reasoning, "LLM analysis unavailable: "))
			assert.Contains(t, score.Error, failure.Error())
		})
	}
}

func TestProviderMatcherWithoutProvider(t *testing.T) {
	score, err := NewProviderMatcher(nil, "", nil).Match(context.Background(), &profile.Profile{}, &jobs.Job{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, score.Overall)
	assert.NotEmpty(t, score.Error)
}

func TestPromptTruncatesLongDescription(t *testing.T) {
	m := NewProviderMatcher(&stubProvider{}, "", nil)
	prompt := m.buildPrompt(&profile.Profile{}, &jobs.Job{Description: strings.Repeat("x", 900)})
	assert.Contains(t, prompt, "Description: "+strings.Repeat("x", maxPromptDescription)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("x", maxPromptDescription+1))
	assert.Contains(t, prompt, "Skills: None listed")
}
