package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/job-ranker/internal/jobs"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Senior   Backend\tEngineer ": "senior backend engineer",
		"Café  Société":                 "cafe societe",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard(WordSet(""), WordSet("  ")))
	assert.Equal(t, 0.0, Jaccard(WordSet("go"), WordSet("")))
	assert.Equal(t, 1.0, Jaccard(WordSet("Senior Backend Engineer @ Acme"), WordSet("senior  backend engineer @ ACME")))
	assert.InDelta(t, 0.5, Jaccard(WordSet("a b c"), WordSet("b c d")), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2))
	assert.Equal(t, 1.0, Clamp(1.7))
	assert.Equal(t, 0.42, Clamp(0.42))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
}

func TestBandFor(t *testing.T) {
	b, ok := BandFor(jobs.LevelSenior)
	assert.True(t, ok)
	assert.Equal(t, YearsBand{5, 10}, b)

	_, ok = BandFor(jobs.LevelUnset)
	assert.False(t, ok)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "90,000", FormatAmount(90000))
	assert.Equal(t, "1,250,000", FormatAmount(1250000.4))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "-5,000", FormatAmount(-5000))
}
