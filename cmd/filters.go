package cmd

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/ranking"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the filters configured for the run command",
	Run: func(_ *cobra.Command, _ []string) {
		describeFilters()
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}

func describeFilters() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	cfg, err := filterConfig(config)
	if err != nil {
		logger.Fatal("parsing filters config", zap.Error(err))
	}

	pipeline, err := ranking.DefaultPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("building filters", zap.Error(err))
	}

	for _, st := range pipeline.Describe() {
		fmt.Println(formatStatus(st))
	}
}

func formatStatus(st filtering.Status) string {
	state := "enabled"
	if !st.Enabled {
		state = "disabled"
		if st.Reason != "" {
			state += " (" + st.Reason + ")"
		}
	}

	keys := make([]string, 0, len(st.Details))
	for k := range st.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, k := range keys {
		details = append(details, k+"="+st.Details[k])
	}

	line := fmt.Sprintf("%-28s %s", st.Name, state)
	if len(details) > 0 {
		line += "  " + strings.Join(details, " ")
	}
	return line
}
