package relevance

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
)

// Scorer applies one matcher to a batch of postings.
type Scorer struct {
	matcher Matcher
	workers int
	logger  *zap.Logger
}

// NewScorer creates a scorer running up to workers matches at once. A
// non-positive value scores sequentially.
func NewScorer(m Matcher, workers int, log *zap.Logger) *Scorer {
	if workers < 1 {
		workers = 1
	}
	return &Scorer{matcher: m, workers: workers, logger: logger.OrNop(log)}
}

// Matcher returns the underlying matcher.
func (s *Scorer) Matcher() Matcher { return s.matcher }

// ScoreJobs returns one score per posting in input order. A posting that
// cannot be scored gets an all-zero score carrying the failure reason.
func (s *Scorer) ScoreJobs(ctx context.Context, p *profile.Profile, list jobs.List) []*Score {
	scores := make([]*Score, len(list))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, job := range list {
		g.Go(func() error {
			scores[i] = s.score(ctx, p, job)
			return nil
		})
	}
	_ = g.Wait()

	return scores
}

func (s *Scorer) score(ctx context.Context, p *profile.Profile, job *jobs.Job) *Score {
	var (
		score *Score
		err   error
	)
	switch {
	case s.matcher == nil:
		err = errors.New("no matcher configured")
	case p == nil:
		err = errors.New("profile is required")
	case job == nil:
		err = errors.New("job is nil")
	default:
		score, err = safeMatch(ctx, s.matcher, p, job)
	}

	if err != nil {
		s.logger.Warn("scoring job failed", append(logger.JobFields(job), zap.Error(err))...)
		return failedScore(s.matcherName(), err)
	}

	s.logger.Debug("scored job", append(logger.JobFields(job), zap.Float64("overall", score.Overall))...)
	return score.Clamp()
}

func (s *Scorer) matcherName() string {
	if s.matcher == nil {
		return ""
	}
	return s.matcher.Name()
}

func failedScore(matcher string, err error) *Score {
	score := Neutral(0)
	score.Reasoning = fmt.Sprintf("Scoring failed: %v", err)
	score.Matcher = matcher
	score.Error = err.Error()
	return score
}
