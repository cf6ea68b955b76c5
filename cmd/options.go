package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/ai/gemini"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/ranking"
	"github.com/spigell/job-ranker/internal/secrets"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

func newRegistry(config *Config, logger *zap.Logger) (*jobs.Registry, error) {
	registry := jobs.NewRegistry(logger)
	for _, src := range config.Sources {
		if err := registry.Register(jobs.NewFileSource(src.Name, src.Path)); err != nil {
			return nil, fmt.Errorf("registering source %q: %w", src.Name, err)
		}
	}
	return registry, nil
}

func searchQuery(config *Config) (jobs.Query, []string) {
	if config.Search == nil {
		return jobs.Query{}, nil
	}
	return jobs.Query{
		Keywords:   config.Search.Query,
		Location:   config.Search.Location,
		MaxResults: config.Search.MaxResults,
	}, config.Search.Sources
}

func filterConfig(config *Config) (ranking.FilterConfig, error) {
	var cfg ranking.FilterConfig

	f := config.Filters
	if f == nil {
		return cfg, nil
	}

	if f.Salary != nil {
		cfg.SalaryMin = f.Salary.Min
		cfg.SalaryMax = f.Salary.Max
	}
	if f.Location != nil {
		cfg.Locations = f.Location.Allowed
		cfg.RequireRemote = f.Location.RequireRemote
	}
	if f.Level != nil {
		var err error
		if cfg.LevelMin, err = parseLevel(f.Level.Min); err != nil {
			return cfg, fmt.Errorf("filters.level.min: %w", err)
		}
		if cfg.LevelMax, err = parseLevel(f.Level.Max); err != nil {
			return cfg, fmt.Errorf("filters.level.max: %w", err)
		}
	}
	if f.Duplicate != nil {
		cfg.DuplicateThreshold = f.Duplicate.Threshold
	}
	cfg.Keywords = f.Keywords
	cfg.Companies = f.Companies
	cfg.ExcludeFile = f.ExcludeFile

	if len(f.Disabled) > 0 {
		cfg.Disabled = make(map[string]string, len(f.Disabled))
		for _, d := range f.Disabled {
			reason := d.Reason
			if reason == "" {
				reason = "disabled in config"
			}
			cfg.Disabled[d.Name] = reason
		}
	}

	return cfg, nil
}

func parseLevel(name string) (jobs.Level, error) {
	if strings.TrimSpace(name) == "" {
		return jobs.LevelUnset, nil
	}
	level, ok := jobs.ParseLevel(name)
	if !ok {
		return jobs.LevelUnset, fmt.Errorf("unknown job level %q", name)
	}
	return level, nil
}

func rankingOptions(config *Config, provider ai.Provider) (ranking.Options, error) {
	filters, err := filterConfig(config)
	if err != nil {
		return ranking.Options{}, err
	}

	opts := ranking.Options{
		Provider: provider,
		Weights:  config.Weights,
		Workers:  config.Workers,
		MinScore: config.MinRelevanceScore,
		Filters:  filters,
	}
	if config.AI != nil {
		opts.Instructions = config.AI.Instructions
	}
	return opts, nil
}

// newProvider returns nil when the provider-backed matcher is disabled.
func newProvider(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Provider, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gem := cfg.Gemini
	if gem == nil {
		gem = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gem.APIKeyFile,
		Env:  geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiAPIKeyEnv)
	}

	generatorConfig := gemini.Config{
		APIKey:            apiKey,
		Model:             gem.Model,
		Timeout:           gem.Timeout,
		MaxLogLength:      gem.MaxLogLength,
		RequestsPerMinute: gem.RequestsPerMinute,
	}
	if cb := cfg.CircuitBreaker; cb != nil {
		generatorConfig.CircuitBreaker = gemini.BreakerConfig{
			Enabled:     cb.Enabled,
			MaxFailures: cb.MaxFailures,
			Timeout:     cb.Timeout,
		}
	}

	generator, err := gemini.NewGenerator(ctx, generatorConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}
	logger.Info("using ai provider", zap.String("provider", "gemini"), zap.String("model", generator.Model()))
	return generator, nil
}
