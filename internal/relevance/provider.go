package relevance

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

//go:embed prompt.md
var promptTemplate string

const (
	maxPromptSkills       = 20
	maxPromptWork         = 5
	maxPromptEducation    = 3
	maxPromptRequirements = 15
	maxPromptDescription  = 500
	maxInstructionRunes   = 500
	notSpecified          = "Not specified"
)

const systemPrompt = "You are an expert recruiter and job matching specialist. " +
	"Evaluate how well a candidate's profile matches a job posting. " +
	"Consider direct skill matches, transferable skills, career trajectory and growth potential. " +
	"Be realistic: a score of 0.8 or more means an excellent match. " +
	"All scores must be between 0.0 and 1.0."

var scoreFields = []string{
	"overall_score", "skills_score", "experience_score",
	"location_score", "salary_score", "level_score",
}

// ScoringSchema is the structured answer requested from the provider.
var ScoringSchema = func() ai.Schema {
	props := map[string]any{
		"matching_skills": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"missing_skills":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"reasoning":       map[string]any{"type": "string", "description": "2-3 sentence explanation of the match quality"},
	}
	required := []any{}
	for _, f := range scoreFields {
		props[f] = map[string]any{"type": "number", "description": "0.0-1.0"}
		required = append(required, f)
	}
	return ai.Schema{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}()

// ProviderMatcher delegates scoring to a text-generation provider. Provider
// failures never surface as errors: the score falls back to neutral.
type ProviderMatcher struct {
	provider     ai.Provider
	instructions string
	now          func() time.Time
	logger       *zap.Logger
}

func NewProviderMatcher(provider ai.Provider, instructions string, log *zap.Logger) *ProviderMatcher {
	return &ProviderMatcher{
		provider:     provider,
		instructions: sanitizeInstructions(instructions),
		now:          time.Now,
		logger:       logger.OrNop(log),
	}
}

func (m *ProviderMatcher) Name() string { return NameProvider }

func (m *ProviderMatcher) Match(ctx context.Context, p *profile.Profile, job *jobs.Job) (*Score, error) {
	prompt := m.buildPrompt(p, job)

	data, err := m.generate(ctx, prompt)
	if err != nil {
		m.logger.Warn("provider matching failed", append(logger.JobFields(job), zap.Error(err))...)
		score := Neutral(0.5)
		score.Reasoning = fmt.Sprintf("LLM analysis unavailable: %v", err)
		score.Matcher = m.Name()
		score.Error = err.Error()
		return score, nil
	}

	return parseScore(data, m.Name()), nil
}

func (m *ProviderMatcher) generate(ctx context.Context, prompt string) (map[string]any, error) {
	if m.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ai.ErrUnavailable)
	}
	return m.provider.GenerateStructured(ctx, prompt, ScoringSchema, systemPrompt)
}

func parseScore(data map[string]any, matcher string) *Score {
	value := func(key string) float64 {
		v, ok := coerceFloat(data[key])
		if !ok {
			return 0.5
		}
		return v
	}

	score := &Score{
		Overall:        value("overall_score"),
		Skills:         value("skills_score"),
		Experience:     value("experience_score"),
		Location:       value("location_score"),
		Salary:         value("salary_score"),
		Level:          value("level_score"),
		MatchingSkills: coerceStrings(data["matching_skills"]),
		MissingSkills:  coerceStrings(data["missing_skills"]),
		Reasoning:      coerceString(data["reasoning"]),
		Matcher:        matcher,
	}
	return score.Clamp()
}

func (m *ProviderMatcher) buildPrompt(p *profile.Profile, job *jobs.Job) string {
	work := make([]string, 0, maxPromptWork)
	for _, exp := range head(p.WorkExperience, maxPromptWork) {
		work = append(work, fmt.Sprintf("- %s at %s", exp.Position, exp.Company))
	}

	education := make([]string, 0, maxPromptEducation)
	for _, edu := range head(p.Education, maxPromptEducation) {
		education = append(education, fmt.Sprintf("- %s in %s from %s", edu.Degree, edu.Field, edu.Institution))
	}

	location := notSpecified
	if job.Location != nil {
		location = job.Location.String()
	}

	level := notSpecified
	if job.Level.Valid() {
		level = job.Level.String()
	}

	replacer := strings.NewReplacer(
		"{{NAME}}", orDefault(p.FullName, "N/A"),
		"{{SUMMARY}}", orDefault(p.Summary, "N/A"),
		"{{SKILLS}}", orDefault(strings.Join(head(p.Skills, maxPromptSkills), ", "), "None listed"),
		"{{YEARS}}", strconv.FormatFloat(p.YearsOfExperience(m.now()), 'f', 1, 64),
		"{{WORK_HISTORY}}", orDefault(strings.Join(work, "\n"), "No work experience listed"),
		"{{EDUCATION}}", orDefault(strings.Join(education, "\n"), "No education listed"),
		"{{TITLE}}", job.Title,
		"{{COMPANY}}", job.Company,
		"{{LOCATION}}", location,
		"{{LEVEL}}", level,
		"{{SALARY}}", formatSalary(job.Salary),
		"{{REQUIREMENTS}}", orDefault(strings.Join(head(job.Requirements, maxPromptRequirements), ", "), notSpecified),
		"{{DESCRIPTION}}", orDefault(string(head([]rune(job.Description), maxPromptDescription)), "N/A"),
		"{{INSTRUCTIONS}}", orDefault(m.instructions, "none"),
	)
	return replacer.Replace(promptTemplate)
}

func formatSalary(s *jobs.Salary) string {
	if !s.Bounds() {
		return notSpecified
	}
	parts := make([]string, 0, 2)
	for _, v := range []*float64{s.Min, s.Max} {
		if v != nil && *v > 0 {
			parts = append(parts, "$"+scoring.FormatAmount(*v))
		}
	}
	if len(parts) == 0 {
		return notSpecified
	}
	return strings.Join(parts, " - ") + " " + s.Period
}

// sanitizeInstructions keeps user supplied criteria on one line and stops
// them from imitating prompt section markers.
func sanitizeInstructions(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")", "#", "").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > maxInstructionRunes {
		s = string(runes[:maxInstructionRunes])
	}
	return s
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
