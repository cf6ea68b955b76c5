package relevance

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

type fixedMatcher struct {
	name  string
	score *Score
	err   error
	fail  func(job *jobs.Job) bool
	panic bool
	delay time.Duration
	calls atomic.Int32
}

func (f *fixedMatcher) Name() string { return f.name }

func (f *fixedMatcher) Match(_ context.Context, _ *profile.Profile, job *jobs.Job) (*Score, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panic {
		panic("boom")
	}
	if f.err != nil || (f.fail != nil && f.fail(job)) {
		return nil, errors.Join(f.err, fmt.Errorf("cannot score %s", job.ID))
	}
	s := *f.score
	s.Matcher = f.name
	return &s, nil
}

func TestHybridWeightedMean(t *testing.T) {
	a := &fixedMatcher{name: "a", score: &Score{Overall: 0.9, Skills: 1, MatchingSkills: []string{"Go"}, MissingSkills: []string{"SQL", "Rust"}, Reasoning: "a says"}}
	b := &fixedMatcher{name: "b", score: &Score{Overall: 0.3, Skills: 0.2, MatchingSkills: []string{"go", "SQL"}, MissingSkills: []string{"rust", "Kafka"}, Reasoning: "b says"}}
	c := &fixedMatcher{name: "c", score: &Score{Overall: 0.6}}

	h := NewHybrid([]Matcher{a, b, c}, map[string]float64{"a": 3, "b": 1}, nil)

	score, err := h.Match(context.Background(), &profile.Profile{}, &jobs.Job{ID: "1"})
	require.NoError(t, err)

	assert.InDelta(t, (3*0.9+1*0.3+1*0.6)/5, score.Overall, 1e-9)
	assert.InDelta(t, (3*1+1*0.2)/5, score.Skills, 1e-9)
	assert.Equal(t, []string{"Go", "SQL"}, score.MatchingSkills)
	assert.Equal(t, []string{"Rust", "Kafka"}, score.MissingSkills)
	assert.Equal(t, "a says | b says", score.Reasoning)
	assert.Equal(t, NameHybrid, score.Matcher)
	assert.Equal(t, []string{"a", "b", "c"}, score.SubMatchers)
}

func TestHybridSkipsFailingMatcher(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ok := &fixedMatcher{name: "ok", score: &Score{Overall: 0.4}}
	broken := &fixedMatcher{name: "broken", err: errors.New("no data")}
	panicky := &fixedMatcher{name: "panicky", panic: true}

	h := NewHybrid([]Matcher{broken, ok, panicky}, map[string]float64{"broken": 10, "panicky": 10}, zap.New(core))

	score, err := h.Match(context.Background(), &profile.Profile{}, &jobs.Job{ID: "1"})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, score.Overall, 1e-9)
	assert.Equal(t, []string{"ok"}, score.SubMatchers)
	assert.Equal(t, 2, logs.FilterMessage("matcher failed").Len())
}

func TestHybridAllMatchersFail(t *testing.T) {
	h := NewHybrid([]Matcher{
		&fixedMatcher{name: "x", err: errors.New("x down")},
		&fixedMatcher{name: "y", err: errors.New("y down")},
	}, nil, nil)

	_, err := h.Match(context.Background(), &profile.Profile{}, &jobs.Job{ID: "1"})
	require.ErrorIs(t, err, ErrAllMatchersFailed)
	assert.Contains(t, err.Error(), "x down")
	assert.Contains(t, err.Error(), "y down")
}

func TestHybridWithoutMatchers(t *testing.T) {
	_, err := NewHybrid(nil, nil, nil).Match(context.Background(), &profile.Profile{}, &jobs.Job{ID: "1"})
	require.ErrorIs(t, err, ErrAllMatchersFailed)
	assert.Equal(t, "all matchers failed: no matchers configured", err.Error())
}

func TestHybridZeroWeightsUsePlainMean(t *testing.T) {
	h := NewHybrid([]Matcher{
		&fixedMatcher{name: "a", score: &Score{Overall: 1}},
		&fixedMatcher{name: "b", score: &Score{Overall: 0}},
	}, map[string]float64{"a": 0, "b": -2}, nil)

	score, err := h.Match(context.Background(), &profile.Profile{}, &jobs.Job{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score.Overall, 1e-9)
}

func TestHybridDefaultConfiguration(t *testing.T) {
	p := &profile.Profile{Skills: []string{"Python", "SQL"}}
	job := &jobs.Job{Requirements: []string{"Python", "Django"}, NiceToHaves: []string{"SQL"}}

	exp := NewExperienceMatcher()
	exp.now = func() time.Time { return fixedNow }

	h := NewHybrid([]Matcher{NewSkillMatcher(), exp}, DefaultWeights(false), nil)
	score, err := h.Match(context.Background(), p, job)
	require.NoError(t, err)

	skill, _ := NewSkillMatcher().Match(context.Background(), p, job)
	experience, _ := exp.Match(context.Background(), p, job)
	assert.InDelta(t, 0.5*skill.Overall+0.5*experience.Overall, score.Overall, 1e-9)
	assert.Equal(t, []string{"Django"}, score.MissingSkills)

	assert.Equal(t, 0.4, DefaultWeights(true)[NameProvider])
}
