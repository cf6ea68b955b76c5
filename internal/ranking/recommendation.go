package ranking

import (
	"fmt"
	"strings"

	"github.com/spigell/job-ranker/internal/relevance"
)

const recommendedSkills = 3

// Recommend summarizes a score as a short piece of advice.
func Recommend(s *relevance.Score) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	switch {
	case s.Overall >= 0.8:
		b.WriteString("Strong match")
	case s.Overall >= 0.6:
		b.WriteString("Good match")
	default:
		b.WriteString("Partial match")
	}
	fmt.Fprintf(&b, " (%.0f%%).", s.Overall*100)

	if len(s.MatchingSkills) > 0 {
		fmt.Fprintf(&b, " Highlight: %s.", strings.Join(top(s.MatchingSkills), ", "))
	}
	if len(s.MissingSkills) > 0 {
		fmt.Fprintf(&b, " Gaps to address: %s.", strings.Join(top(s.MissingSkills), ", "))
	}
	return b.String()
}

func top(values []string) []string {
	if len(values) > recommendedSkills {
		return values[:recommendedSkills]
	}
	return values
}
