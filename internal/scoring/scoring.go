// Package scoring holds the text and numeric primitives shared by matchers and filters.
package scoring

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/spigell/job-ranker/internal/jobs"
)

// Normalize lowercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Set is a set of normalized strings.
type Set map[string]struct{}

// NormalizeSet builds a set from the normalized, non-empty values.
func NormalizeSet(values []string) Set {
	set := make(Set, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// WordSet splits the normalized text into unique words.
func WordSet(s string) Set {
	return NormalizeSet(strings.Fields(Normalize(s)))
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are identical.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b.Has(w) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Clamp bounds v to [0, 1]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// YearsBand is the expected range of experience for a level.
type YearsBand struct {
	Min float64
	Max float64
}

var yearsBands = map[jobs.Level]YearsBand{
	jobs.LevelEntry:     {0, 2},
	jobs.LevelJunior:    {1, 3},
	jobs.LevelMid:       {3, 6},
	jobs.LevelSenior:    {5, 10},
	jobs.LevelLead:      {8, 15},
	jobs.LevelExecutive: {12, 30},
}

// BandFor returns the experience band of a level.
func BandFor(l jobs.Level) (YearsBand, bool) {
	b, ok := yearsBands[l]
	return b, ok
}

// FormatAmount renders a whole amount with thousands separators.
func FormatAmount(v float64) string {
	digits := strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
