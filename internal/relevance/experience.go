package relevance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

// Component weights of the experience matcher overall score.
const (
	experienceWeight = 0.35
	levelWeight      = 0.25
	locationWeight   = 0.25
	salaryWeight     = 0.15
)

// ExperienceMatcher scores years of experience, seniority, location and
// compensation fit with fixed heuristics.
type ExperienceMatcher struct {
	now func() time.Time
}

func NewExperienceMatcher() *ExperienceMatcher {
	return &ExperienceMatcher{now: time.Now}
}

func (m *ExperienceMatcher) Name() string { return NameExperience }

func (m *ExperienceMatcher) Match(_ context.Context, p *profile.Profile, job *jobs.Job) (*Score, error) {
	years := p.YearsOfExperience(m.now())

	exp := experienceScore(years, job.Level)
	level := levelScore(job.Level, p.PreferredLevels)
	loc := locationScore(job.Location, p)
	sal := salaryScore(job.Salary, p.PreferredSalary)

	score := &Score{
		Overall:    experienceWeight*exp + levelWeight*level + locationWeight*loc + salaryWeight*sal,
		Experience: exp,
		Level:      level,
		Location:   loc,
		Salary:     sal,
		Reasoning: fmt.Sprintf("Experience match: experience=%.2f, level=%.2f, location=%.2f, salary=%.2f (%.1f years).",
			exp, level, loc, sal, years),
		Matcher: m.Name(),
	}
	return score.Clamp(), nil
}

func experienceScore(years float64, level jobs.Level) float64 {
	band, ok := scoring.BandFor(level)
	if !ok {
		if years > 0 {
			return 0.5
		}
		return 0.3
	}

	switch {
	case years < band.Min:
		return math.Max(0, 1-0.2*(band.Min-years))
	case years > band.Max:
		return math.Max(0.3, 1-0.1*(years-band.Max))
	default:
		return 1
	}
}

func levelScore(level jobs.Level, preferred []jobs.Level) float64 {
	valid := make([]jobs.Level, 0, len(preferred))
	for _, l := range preferred {
		if l.Valid() {
			valid = append(valid, l)
		}
	}
	if !level.Valid() || len(valid) == 0 {
		return 0.5
	}

	closest := math.MaxInt
	for _, l := range valid {
		if d := jobs.Distance(level, l); d < closest {
			closest = d
		}
	}

	switch closest {
	case 0:
		return 1
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0.1
	}
}

func locationScore(loc *jobs.Location, p *profile.Profile) float64 {
	if loc == nil {
		return 0.5
	}

	if loc.Remote {
		switch p.Remote() {
		case profile.RemoteRequired, profile.RemotePreferred:
			return 1
		case profile.RemoteFlexible:
			return 0.8
		default:
			return 0.5
		}
	}

	if len(p.PreferredLocations) == 0 {
		if p.WillingToRelocate {
			return 0.6
		}
		return 0.4
	}

	city := scoring.Normalize(loc.City)
	state := scoring.Normalize(loc.State)
	stateMatch := false
	for _, pref := range p.PreferredLocations {
		if c := scoring.Normalize(pref.City); c != "" && c == city {
			return 1
		}
		if s := scoring.Normalize(pref.State); s != "" && s == state {
			stateMatch = true
		}
	}

	switch {
	case stateMatch:
		return 0.7
	case p.WillingToRelocate:
		return 0.4
	default:
		return 0.1
	}
}

func salaryScore(job *jobs.Salary, preferred *jobs.Salary) float64 {
	if !job.Bounds() || !preferred.Bounds() {
		return 0.5
	}

	jobMin, jobMax := bound(job.Min, 0), bound(job.Max, math.Inf(1))
	prefMin, prefMax := bound(preferred.Min, 0), bound(preferred.Max, math.Inf(1))

	switch {
	case jobMax < prefMin:
		gap := (prefMin - jobMax) / prefMin
		return math.Max(0, 1-2*gap)
	case !math.IsInf(prefMax, 1) && jobMin > prefMax:
		return 0.9
	default:
		return 1
	}
}

func bound(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
