package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const (
	niceToHaveWeight = 0.5
	// neutralHighlights caps the candidate skills reported when a posting lists none.
	neutralHighlights = 10
)

// SkillMatcher scores the overlap between candidate skills and the skills a
// posting asks for. Required skills count fully, nice-to-haves count half.
type SkillMatcher struct{}

func NewSkillMatcher() *SkillMatcher { return &SkillMatcher{} }

func (m *SkillMatcher) Name() string { return NameSkill }

func (m *SkillMatcher) Match(_ context.Context, p *profile.Profile, job *jobs.Job) (*Score, error) {
	candidate := scoring.NormalizeSet(p.Skills)
	required := scoring.NormalizeSet(job.Requirements)
	nice := scoring.NormalizeSet(job.NiceToHaves)

	// Candidate skills named in the description count as requirements
	// unless the posting already lists them as nice-to-have.
	description := scoring.Normalize(job.Description)
	if description != "" {
		for skill := range candidate {
			if strings.Contains(description, skill) && !nice.Has(skill) {
				required[skill] = struct{}{}
			}
		}
	}

	if len(required) == 0 && len(nice) == 0 {
		highlights := originalCase(p.Skills, candidate)
		if len(highlights) > neutralHighlights {
			highlights = highlights[:neutralHighlights]
		}
		score := &Score{
			Overall:        0.5,
			Skills:         0.5,
			MatchingSkills: highlights,
			MissingSkills:  []string{},
			Reasoning:      "No skills listed for this job; skill fit is neutral.",
			Matcher:        m.Name(),
		}
		return score.Clamp(), nil
	}

	var matchedRequired, matchedNice int
	for skill := range required {
		if candidate.Has(skill) {
			matchedRequired++
		}
	}
	for skill := range nice {
		if candidate.Has(skill) {
			matchedNice++
		}
	}

	total := float64(len(required)) + niceToHaveWeight*float64(len(nice))
	matched := float64(matchedRequired) + niceToHaveWeight*float64(matchedNice)
	skills := matched / total
	if skills > 1 {
		skills = 1
	}

	wanted := make(scoring.Set, len(required)+len(nice))
	for skill := range required {
		wanted[skill] = struct{}{}
	}
	for skill := range nice {
		wanted[skill] = struct{}{}
	}

	score := &Score{
		Overall:        skills,
		Skills:         skills,
		MatchingSkills: originalCase(p.Skills, wanted),
		MissingSkills:  missingSkills(job.Skills(), candidate),
		Reasoning: fmt.Sprintf("Matched %d/%d required skills and %d/%d nice-to-haves.",
			matchedRequired, len(required), matchedNice, len(nice)),
		Matcher: m.Name(),
	}
	return score.Clamp(), nil
}

// originalCase returns the values whose normalized form is in set, keeping
// their original spelling and order and dropping repeats.
func originalCase(values []string, set scoring.Set) []string {
	out := []string{}
	seen := make(scoring.Set, len(values))
	for _, v := range values {
		n := scoring.Normalize(v)
		if !set.Has(n) || seen.Has(n) {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, v)
	}
	return out
}

func missingSkills(wanted []string, candidate scoring.Set) []string {
	out := []string{}
	seen := make(scoring.Set, len(wanted))
	for _, v := range wanted {
		n := scoring.Normalize(v)
		if n == "" || candidate.Has(n) || seen.Has(n) {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, v)
	}
	return out
}
