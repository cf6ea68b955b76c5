package ranking

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

// Results is the document written after a ranking run.
type Results struct {
	GeneratedAt  time.Time         `json:"generated_at" yaml:"generated_at"`
	Profile      string            `json:"profile" yaml:"profile"`
	TotalMatches int               `json:"total_matches" yaml:"total_matches"`
	FilterReport *filtering.Report `json:"filter_report,omitempty" yaml:"filter_report,omitempty"`
	Results      []Result          `json:"results" yaml:"results"`
}

// Result is one ranked posting.
type Result struct {
	Rank           int          `json:"rank" yaml:"rank"`
	JobID          string       `json:"job_id" yaml:"job_id"`
	Title          string       `json:"title" yaml:"title"`
	Company        string       `json:"company" yaml:"company"`
	Location       string       `json:"location" yaml:"location"`
	URL            string       `json:"url" yaml:"url"`
	Source         string       `json:"source" yaml:"source"`
	Salary         *jobs.Salary `json:"salary" yaml:"salary"`
	Scores         Scores       `json:"scores" yaml:"scores"`
	MatchingSkills []string     `json:"matching_skills" yaml:"matching_skills"`
	MissingSkills  []string     `json:"missing_skills" yaml:"missing_skills"`
	Reasoning      string       `json:"reasoning" yaml:"reasoning"`
	Recommendation string       `json:"recommendation" yaml:"recommendation"`
}

// Scores holds score components rounded to three decimals.
type Scores struct {
	Overall    float64 `json:"overall" yaml:"overall"`
	Skills     float64 `json:"skills" yaml:"skills"`
	Experience float64 `json:"experience" yaml:"experience"`
	Location   float64 `json:"location" yaml:"location"`
	Salary     float64 `json:"salary" yaml:"salary"`
	Level      float64 `json:"level" yaml:"level"`
}

// NewResults builds the results document for ranked matches.
func NewResults(p *profile.Profile, matches []JobMatch, report *filtering.Report, now time.Time) *Results {
	name := "Unknown"
	if p != nil && p.FullName != "" {
		name = p.FullName
	}

	out := &Results{
		GeneratedAt:  now,
		Profile:      name,
		TotalMatches: len(matches),
		FilterReport: report,
		Results:      make([]Result, 0, len(matches)),
	}

	for i, m := range matches {
		job, score := m.Job, m.Score
		location := "N/A"
		if job.Location != nil {
			location = job.Location.String()
		}
		out.Results = append(out.Results, Result{
			Rank:     i + 1,
			JobID:    job.ID,
			Title:    job.Title,
			Company:  job.Company,
			Location: location,
			URL:      job.URL,
			Source:   job.Source,
			Salary:   job.Salary,
			Scores: Scores{
				Overall:    round(score.Overall),
				Skills:     round(score.Skills),
				Experience: round(score.Experience),
				Location:   round(score.Location),
				Salary:     round(score.Salary),
				Level:      round(score.Level),
			},
			MatchingSkills: score.MatchingSkills,
			MissingSkills:  score.MissingSkills,
			Reasoning:      score.Reasoning,
			Recommendation: m.Recommendation,
		})
	}
	return out
}

// ToFile writes the document, replacing any existing file. Paths ending in
// .yaml or .yml get YAML, everything else indented JSON.
func (r *Results) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening results file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(file)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		return nil
	}
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
