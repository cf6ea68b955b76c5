package ranking

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/relevance"
)

// FilterConfig selects and parameterizes the default filters.
type FilterConfig struct {
	SalaryMin          *float64
	SalaryMax          *float64
	Locations          []string
	RequireRemote      bool
	LevelMin           jobs.Level
	LevelMax           jobs.Level
	Keywords           []string
	Companies          []string
	DuplicateThreshold float64
	ExcludeFile        string
	// Disabled maps filter names to the reason they are switched off.
	Disabled map[string]string
}

// Options configures a Ranker built by Build.
type Options struct {
	// Provider enables the provider-backed matcher when set.
	Provider     ai.Provider
	Instructions string
	// Weights override the default matcher weights by matcher name.
	Weights  map[string]float64
	Workers  int
	MinScore float64
	Filters  FilterConfig
}

// DefaultFilters returns the duplicate, salary and level filters followed by
// the location, keyword, company and exclude-file filters that cfg enables.
func DefaultFilters(cfg FilterConfig) ([]filtering.Filter, error) {
	filters := []filtering.Filter{
		filtering.NewDuplicate(cfg.DuplicateThreshold),
		filtering.NewSalary(cfg.SalaryMin, cfg.SalaryMax),
		filtering.NewLevel(cfg.LevelMin, cfg.LevelMax),
	}

	if len(cfg.Locations) > 0 || cfg.RequireRemote {
		filters = append(filters, filtering.NewLocation(cfg.Locations, cfg.RequireRemote))
	}
	if len(cfg.Keywords) > 0 {
		filters = append(filters, filtering.NewKeyword(cfg.Keywords))
	}
	if len(cfg.Companies) > 0 {
		filters = append(filters, filtering.NewExcludedCompanies(cfg.Companies))
	}
	if cfg.ExcludeFile != "" {
		f, err := filtering.NewExcludeFile(cfg.ExcludeFile)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// DefaultPipeline builds the default filters and disables the ones named in
// cfg.Disabled. An unknown name is an error.
func DefaultPipeline(cfg FilterConfig, log *zap.Logger) (*filtering.Pipeline, error) {
	filters, err := DefaultFilters(cfg)
	if err != nil {
		return nil, err
	}
	pipeline := filtering.NewPipeline(log, filters...)

	names := make([]string, 0, len(cfg.Disabled))
	for name := range cfg.Disabled {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !pipeline.DisableByName(name, cfg.Disabled[name]) {
			return nil, fmt.Errorf("cannot disable filter %q: not configured", name)
		}
	}
	return pipeline, nil
}

// NewDefaultMatcher combines the skill and experience matchers, and the
// provider matcher when provider is set, using the default weights overridden
// by weights.
func NewDefaultMatcher(provider ai.Provider, instructions string, weights map[string]float64, log *zap.Logger) *relevance.Hybrid {
	log = logger.OrNop(log)

	matchers := []relevance.Matcher{relevance.NewSkillMatcher(), relevance.NewExperienceMatcher()}
	if provider != nil {
		matchers = append(matchers, relevance.NewProviderMatcher(provider, instructions, log))
	}

	combined := relevance.DefaultWeights(provider != nil)
	for name, w := range weights {
		combined[name] = w
	}

	names := make([]string, 0, len(matchers))
	for _, m := range matchers {
		names = append(names, m.Name())
	}
	log.Info("using hybrid matcher", zap.Strings("matchers", names), zap.Any("weights", combined))

	return relevance.NewHybrid(matchers, combined, log)
}

// Build assembles a Ranker from opts.
func Build(opts Options, log *zap.Logger) (*Ranker, error) {
	log = logger.OrNop(log)

	pipeline, err := DefaultPipeline(opts.Filters, log)
	if err != nil {
		return nil, err
	}

	matcher := NewDefaultMatcher(opts.Provider, opts.Instructions, opts.Weights, log)
	scorer := relevance.NewScorer(matcher, opts.Workers, log)

	log.Info("ranker built", zap.Int("filters", pipeline.Len()), zap.Float64("min_score", opts.MinScore))
	return NewRanker(scorer, pipeline, opts.MinScore, log), nil
}
