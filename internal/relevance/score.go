// Package relevance scores postings against a candidate profile.
package relevance

import (
	"context"
	"errors"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

// Matcher names used as score provenance and as weight keys.
const (
	NameSkill      = "skill_based"
	NameExperience = "experience"
	NameProvider   = "llm_based"
	NameHybrid     = "hybrid"
)

// ErrAllMatchersFailed is returned by Hybrid when no child matcher produced a score.
var ErrAllMatchersFailed = errors.New("all matchers failed")

// Matcher produces a relevance score for one profile and posting. It must not
// modify its inputs and must report sparse data through neutral scores, not errors.
type Matcher interface {
	Name() string
	Match(ctx context.Context, p *profile.Profile, job *jobs.Job) (*Score, error)
}

// Score is the outcome of matching a profile against a posting. Every numeric
// field lies in [0, 1].
type Score struct {
	Overall        float64  `json:"overall_score"`
	Skills         float64  `json:"skills_score"`
	Experience     float64  `json:"experience_score"`
	Location       float64  `json:"location_score"`
	Salary         float64  `json:"salary_score"`
	Level          float64  `json:"level_score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Reasoning      string   `json:"reasoning"`
	Matcher        string   `json:"matcher"`
	SubMatchers    []string `json:"sub_matchers,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Neutral returns a score with every component set to v.
func Neutral(v float64) *Score {
	return &Score{
		Overall:        v,
		Skills:         v,
		Experience:     v,
		Location:       v,
		Salary:         v,
		Level:          v,
		MatchingSkills: []string{},
		MissingSkills:  []string{},
	}
}

// Clamp bounds every numeric component to [0, 1] and returns s.
func (s *Score) Clamp() *Score {
	s.Overall = scoring.Clamp(s.Overall)
	s.Skills = scoring.Clamp(s.Skills)
	s.Experience = scoring.Clamp(s.Experience)
	s.Location = scoring.Clamp(s.Location)
	s.Salary = scoring.Clamp(s.Salary)
	s.Level = scoring.Clamp(s.Level)
	if s.MatchingSkills == nil {
		s.MatchingSkills = []string{}
	}
	if s.MissingSkills == nil {
		s.MissingSkills = []string{}
	}
	return s
}
