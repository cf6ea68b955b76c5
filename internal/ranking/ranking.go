// Package ranking combines relevance scores and filter results into an
// ordered list of accepted postings.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/relevance"
	"github.com/spigell/job-ranker/internal/scoring"
)

// DefaultMinScore is the overall score a posting needs to be accepted.
const DefaultMinScore = 0.6

// ErrProfileRequired is returned when ranking is requested without a profile.
var ErrProfileRequired = errors.New("profile is required")

// JobMatch is an accepted posting with its score and removal provenance.
type JobMatch struct {
	Job            *jobs.Job        `json:"job"`
	Score          *relevance.Score `json:"score"`
	PassedFilters  bool             `json:"passed_filters"`
	FilterReasons  []string         `json:"filter_reasons"`
	Recommendation string           `json:"recommendation_text"`
}

// Ranker scores and filters a batch of postings and orders the survivors.
type Ranker struct {
	scorer   *relevance.Scorer
	pipeline *filtering.Pipeline
	minScore float64
	logger   *zap.Logger
}

// NewRanker creates a ranker. A nil pipeline keeps every posting; minScore is
// bounded to [0, 1].
func NewRanker(scorer *relevance.Scorer, pipeline *filtering.Pipeline, minScore float64, log *zap.Logger) *Ranker {
	log = logger.OrNop(log)
	if pipeline == nil {
		pipeline = filtering.NewPipeline(log)
	}
	return &Ranker{
		scorer:   scorer,
		pipeline: pipeline,
		minScore: scoring.Clamp(minScore),
		logger:   log,
	}
}

// MinScore returns the acceptance threshold.
func (r *Ranker) MinScore() float64 { return r.minScore }

// MatchAndRank scores every posting and runs the filter pipeline on the same
// input concurrently. A posting is accepted when it survives every filter and
// its overall score reaches the threshold. Accepted matches are ordered by
// overall score, keeping input order between equal scores.
func (r *Ranker) MatchAndRank(ctx context.Context, p *profile.Profile, list jobs.List) ([]JobMatch, *filtering.Report, error) {
	if p == nil {
		return nil, nil, ErrProfileRequired
	}
	if r.scorer == nil {
		return nil, nil, errors.New("ranker has no scorer")
	}

	list = r.present(list)

	var (
		scores    []*relevance.Score
		survivors jobs.List
		report    *filtering.Report
	)

	var g errgroup.Group
	g.Go(func() error {
		scores = r.scorer.ScoreJobs(ctx, p, list)
		return nil
	})
	g.Go(func() error {
		survivors, report = r.pipeline.Run(list, p)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, report, fmt.Errorf("ranking jobs: %w", err)
	}

	passed := make(map[*jobs.Job]struct{}, len(survivors))
	for _, job := range survivors {
		passed[job] = struct{}{}
	}

	matches := make([]JobMatch, 0, len(survivors))
	for i, job := range list {
		score := scores[i]
		if _, ok := passed[job]; !ok {
			continue
		}
		if score.Overall < r.minScore {
			r.logger.Debug("job below relevance threshold",
				append(logger.JobFields(job), zap.Float64("overall", score.Overall))...)
			continue
		}

		reasons := report.ReasonsFor(job.ID)
		if reasons == nil {
			reasons = []string{}
		}
		matches = append(matches, JobMatch{
			Job:            job,
			Score:          score,
			PassedFilters:  true,
			FilterReasons:  reasons,
			Recommendation: Recommend(score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score.Overall > matches[j].Score.Overall
	})

	r.logger.Info("ranking finished",
		zap.String("matcher", r.scorer.Matcher().Name()),
		zap.Int("input", len(list)),
		zap.Int("passed_filters", len(survivors)),
		zap.Int("accepted", len(matches)),
		zap.Float64("min_score", r.minScore),
	)

	return matches, report, nil
}

func (r *Ranker) present(list jobs.List) jobs.List {
	out := make(jobs.List, 0, len(list))
	for _, job := range list {
		if job == nil {
			r.logger.Warn("skipping empty job record")
			continue
		}
		out = append(out, job)
	}
	return out
}
