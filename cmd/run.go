package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/ranking"
)

const (
	PromptSave                = "Save results"
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptFilterReport        = "Show filter report"
	PromptReportByCompany     = "Report by company"
	PromptBrowse              = "Browse matches"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptMatchesToFile       = "Dump matches to file"

	topMatchesToLog = 5
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, score, filter and rank job postings for the configured profile",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "save results without asking what to do with the matches")
	runCmd.Flags().StringP("output", "o", "", "file to save ranked results to (default is job_matches.json)")
	runCmd.Flags().Float64P("min-score", "m", defaultMinScore, "minimum overall relevance score for a match")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	runCmd.Flags().Bool("no-ai", false, "disable the provider-backed matcher even if enabled in config")

	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("min-relevance-score", runCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("filters.exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	prof, err := profile.Load(config.Profile)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err), zap.String("path", config.Profile))
	}

	logger.Info("profile loaded",
		zap.String("name", prof.FullName),
		zap.Int("skills", len(prof.Skills)),
		zap.Float64("years_of_experience", prof.YearsOfExperience(time.Now())),
	)

	list, err := fetchJobs(ctx, config, logger)
	if err != nil {
		logger.Fatal("getting available jobs", zap.Error(err))
	}

	if list.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	aiConfig := config.AI
	if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI {
		aiConfig = nil
	}

	provider, err := newProvider(ctx, aiConfig, logger)
	if err != nil {
		logger.Warn("skipping provider-backed matcher", zap.Error(err))
		provider = nil
	}

	opts, err := rankingOptions(config, provider)
	if err != nil {
		logger.Fatal("preparing ranking options", zap.Error(err))
	}

	ranker, err := ranking.Build(opts, logger)
	if err != nil {
		logger.Fatal("building ranker", zap.Error(err))
	}

	matches, report, err := ranker.MatchAndRank(ctx, prof, list)
	if err != nil {
		logger.Fatal("ranking jobs", zap.Error(err))
	}

	logger.Info("matches ranked", zap.Int("matches", len(matches)), zap.Float64("min_score", ranker.MinScore()))
	logReport(logger, report)
	logTopMatches(logger, matches)

	results := ranking.NewResults(prof, matches, report, time.Now().UTC())

	if len(matches) == 0 {
		logger.Info("no matching jobs found", zap.String("hint", "try broadening the search or lowering min-relevance-score"))
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if !interactive {
		logger.Debug("stdin is not a terminal, skipping the prompt")
	}

	if len(matches) == 0 || !interactive || cmd.Flag("auto-approve").Value.String() == "true" {
		if err := saveResults(logger, results, config.Output); err != nil {
			logger.Fatal("saving results", zap.Error(err))
		}
		return
	}

	items := []string{PromptSave, PromptBrowse, PromptFilterReport, PromptReportByCompany, PromptMatchesToFile}
	if config.Filters != nil && config.Filters.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	prompt := promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, results, matches); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, results *ranking.Results, matches []ranking.JobMatch) error {
	switch action {
	case PromptSave:
		return saveResults(logger, results, config.Output)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptBrowse:
		return browse(logger, matches)
	case PromptFilterReport:
		logReport(logger, results.FilterReport)
		for _, reason := range results.FilterReport.Reasons {
			logger.Info(reason)
		}
		return nil
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(matchedJobs(matches).ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", len(matches)))
		return nil
	case PromptMatchesToFile:
		filename, err := matchedJobs(matches).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.Filters.ExcludeFile, matchedJobs(matches))
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func fetchJobs(ctx context.Context, config *Config, logger *zap.Logger) (jobs.List, error) {
	registry, err := newRegistry(config, logger)
	if err != nil {
		return nil, err
	}

	query, sources := searchQuery(config)
	logger.Info("starting the search",
		zap.String("query", query.Keywords),
		zap.String("location", query.Location),
		zap.Strings("sources", registry.Names()),
	)

	list, err := registry.Fetch(ctx, query, sources...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Info("getting jobs", zap.Int("count", list.Len()))
	return list, nil
}

func browse(logger *zap.Logger, matches []ranking.JobMatch) error {
	items := make([]string, 0, len(matches)+1)
	for i, m := range matches {
		items = append(items, fmt.Sprintf("%d %s / %s / %.2f", i+1, m.Job.Title, m.Job.Company, m.Score.Overall))
	}

	matchPrompt := promptui.Select{
		Label: "Choose a match and press ENTER",
		Items: append(items, PromptBack),
	}

	for {
		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		rank, err := strconv.Atoi(strings.Split(selected, " ")[0])
		if err != nil || rank < 1 || rank > len(matches) {
			return fmt.Errorf("there is no such match %q", selected)
		}

		m := matches[rank-1]
		logger.Info("match details",
			zap.String("job_id", m.Job.ID),
			zap.String("title", m.Job.Title),
			zap.String("company", m.Job.Company),
			zap.String("url", m.Job.URL),
			zap.String("location", m.Job.Location.String()),
			zap.String("salary", m.Job.Salary.String()),
			zap.Any("score", m.Score),
			zap.Strings("filter_reasons", m.FilterReasons),
			zap.String("recommendation", m.Recommendation),
		)
	}
}

func appendToExcludeFile(logger *zap.Logger, path string, list jobs.List) error {
	excluded, err := jobs.LoadExcluded(path)
	if err != nil {
		return err
	}

	excluded.Append(list.ToExcluded("reviewed match"))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", list.Len()))
	return nil
}

func saveResults(logger *zap.Logger, results *ranking.Results, path string) error {
	if path == "" {
		path = defaultOutput
	}
	if err := results.ToFile(path); err != nil {
		return err
	}
	logger.Info("results saved", zap.String("filename", path), zap.Int("matches", results.TotalMatches))
	return nil
}

func logReport(logger *zap.Logger, report *filtering.Report) {
	if report == nil {
		return
	}
	logger.Info("filtering report",
		zap.Int("total_input", report.TotalInput),
		zap.Int("total_output", report.TotalOutput),
		zap.Int("total_removed", report.TotalRemoved),
		zap.Any("per_filter", report.PerFilter),
	)
}

func logTopMatches(logger *zap.Logger, matches []ranking.JobMatch) {
	for i, m := range matches {
		if i == topMatchesToLog {
			break
		}
		logger.Info("top match",
			zap.Int("rank", i+1),
			zap.String("title", m.Job.Title),
			zap.String("company", m.Job.Company),
			zap.Float64("score", m.Score.Overall),
		)
	}
}

func matchedJobs(matches []ranking.JobMatch) jobs.List {
	list := make(jobs.List, 0, len(matches))
	for _, m := range matches {
		list = append(list, m.Job)
	}
	return list
}
