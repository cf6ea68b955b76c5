package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "job-ranker"

	defaultOutput   = "job_matches.json"
	defaultMinScore = 0.6
	defaultWorkers  = 4
)

type Config struct {
	Profile           string             `mapstructure:"profile" validate:"required"`
	Output            string             `mapstructure:"output"`
	MinRelevanceScore float64            `mapstructure:"min-relevance-score" validate:"gte=0,lte=1"`
	Workers           int                `mapstructure:"workers" validate:"gte=0"`
	Sources           []*SourceConfig    `mapstructure:"sources" validate:"dive,required"`
	Search            *SearchConfig      `mapstructure:"search"`
	Weights           map[string]float64 `mapstructure:"weights" validate:"dive,gte=0"`
	Filters           *FiltersConfig     `mapstructure:"filters"`
	AI                *AIConfig          `mapstructure:"ai"`
}

type SourceConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Path string `mapstructure:"path" validate:"required"`
}

type SearchConfig struct {
	Query      string   `mapstructure:"query"`
	Location   string   `mapstructure:"location"`
	MaxResults int      `mapstructure:"max-results" validate:"gte=0"`
	Sources    []string `mapstructure:"sources"`
}

type FiltersConfig struct {
	Salary      *SalaryFilterConfig    `mapstructure:"salary"`
	Location    *LocationFilterConfig  `mapstructure:"location"`
	Level       *LevelFilterConfig     `mapstructure:"level"`
	Keywords    []string               `mapstructure:"keywords"`
	Companies   []string               `mapstructure:"companies"`
	Duplicate   *DuplicateFilterConfig `mapstructure:"duplicate"`
	ExcludeFile string                 `mapstructure:"exclude-file"`
	Disabled    []*DisabledFilter      `mapstructure:"disabled" validate:"dive,required"`
}

type DisabledFilter struct {
	Name   string `mapstructure:"name" validate:"required"`
	Reason string `mapstructure:"reason"`
}

type SalaryFilterConfig struct {
	Min *float64 `mapstructure:"min" validate:"omitempty,gte=0"`
	Max *float64 `mapstructure:"max" validate:"omitempty,gte=0"`
}

type LocationFilterConfig struct {
	Allowed       []string `mapstructure:"allowed"`
	RequireRemote bool     `mapstructure:"require-remote"`
}

type LevelFilterConfig struct {
	Min string `mapstructure:"min"`
	Max string `mapstructure:"max"`
}

type DuplicateFilterConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
}

type AIConfig struct {
	Enabled        bool                  `mapstructure:"enabled"`
	Provider       string                `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Instructions   string                `mapstructure:"instructions"`
	Gemini         *GeminiConfig         `mapstructure:"gemini"`
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit-breaker"`
}

type GeminiConfig struct {
	APIKeyFile        string        `mapstructure:"api-key-file"`
	Model             string        `mapstructure:"model"`
	MaxLogLength      int           `mapstructure:"max-log-length" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute" validate:"gte=0"`
}

type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max-failures"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-ranker scores job postings against a candidate profile, filters them and ranks the matches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("output", defaultOutput)
	viper.SetDefault("min-relevance-score", defaultMinScore)
	viper.SetDefault("workers", defaultWorkers)
}

func initConfig() {
	// Only run and filters need the config file.
	if runCmd.CalledAs() == "" && filtersCmd.CalledAs() == "" {
		return
	}

	// .env is optional; it usually carries GEMINI_API_KEY.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}
