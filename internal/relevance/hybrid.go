package relevance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const (
	defaultWeight      = 1.0
	reasoningSeparator = " | "
)

// Hybrid combines several matchers into a weighted average. A failing child is
// skipped; the match fails only when every child fails.
type Hybrid struct {
	matchers []Matcher
	weights  map[string]float64
	logger   *zap.Logger
}

// NewHybrid builds a combiner. Matchers without an entry in weights get weight 1.
func NewHybrid(matchers []Matcher, weights map[string]float64, log *zap.Logger) *Hybrid {
	w := make(map[string]float64, len(weights))
	for name, v := range weights {
		w[name] = v
	}
	return &Hybrid{
		matchers: append([]Matcher(nil), matchers...),
		weights:  w,
		logger:   logger.OrNop(log),
	}
}

// DefaultWeights returns the production weighting for the skill and
// experience matchers, plus the provider matcher when enabled.
func DefaultWeights(withProvider bool) map[string]float64 {
	if withProvider {
		return map[string]float64{NameSkill: 0.3, NameExperience: 0.3, NameProvider: 0.4}
	}
	return map[string]float64{NameSkill: 0.5, NameExperience: 0.5}
}

func (h *Hybrid) Name() string { return NameHybrid }

// Weight returns the configured weight of a matcher. Negative weights count as zero.
func (h *Hybrid) Weight(name string) float64 {
	w, ok := h.weights[name]
	if !ok {
		return defaultWeight
	}
	if w < 0 {
		return 0
	}
	return w
}

type weighted struct {
	name   string
	weight float64
	score  *Score
}

func (h *Hybrid) Match(ctx context.Context, p *profile.Profile, job *jobs.Job) (*Score, error) {
	if len(h.matchers) == 0 {
		return nil, fmt.Errorf("%w: no matchers configured", ErrAllMatchersFailed)
	}

	results := make([]weighted, 0, len(h.matchers))
	var errs []error

	for _, m := range h.matchers {
		s, err := safeMatch(ctx, m, p, job)
		if err != nil {
			h.logger.Warn("matcher failed",
				append(logger.JobFields(job), zap.String("matcher", m.Name()), zap.Error(err))...)
			errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
			continue
		}
		results = append(results, weighted{name: m.Name(), weight: h.Weight(m.Name()), score: s})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAllMatchersFailed, errors.Join(errs...))
	}

	return combine(results), nil
}

func combine(results []weighted) *Score {
	total := 0.0
	for _, r := range results {
		total += r.weight
	}
	// All weights zero: fall back to a plain mean.
	if total <= 0 {
		for i := range results {
			results[i].weight = 1
		}
		total = float64(len(results))
	}

	out := &Score{Matcher: NameHybrid}
	var reasoning []string
	var matching, missing []string

	for _, r := range results {
		f := r.weight / total
		out.Overall += f * r.score.Overall
		out.Skills += f * r.score.Skills
		out.Experience += f * r.score.Experience
		out.Location += f * r.score.Location
		out.Salary += f * r.score.Salary
		out.Level += f * r.score.Level

		matching = append(matching, r.score.MatchingSkills...)
		missing = append(missing, r.score.MissingSkills...)
		if r.score.Reasoning != "" {
			reasoning = append(reasoning, r.score.Reasoning)
		}
		out.SubMatchers = append(out.SubMatchers, r.name)
	}

	out.MatchingSkills = dedupe(matching, nil)
	out.MissingSkills = dedupe(missing, scoring.NormalizeSet(out.MatchingSkills))
	out.Reasoning = strings.Join(reasoning, reasoningSeparator)
	return out.Clamp()
}

// dedupe keeps the first spelling of every skill, skipping skills in exclude.
func dedupe(values []string, exclude scoring.Set) []string {
	out := []string{}
	seen := scoring.Set{}
	for _, v := range values {
		n := scoring.Normalize(v)
		if n == "" || seen.Has(n) || exclude.Has(n) {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, v)
	}
	return out
}

// safeMatch runs a matcher, converting a panic into an error.
func safeMatch(ctx context.Context, m Matcher, p *profile.Profile, job *jobs.Job) (s *Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("matcher %s panicked: %v", m.Name(), r)
		}
	}()

	s, err = m.Match(ctx, p, job)
	if err == nil && s == nil {
		err = fmt.Errorf("matcher %s returned no score", m.Name())
	}
	return s, err
}
