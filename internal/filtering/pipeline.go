package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/profile"
)

// Report summarizes a pipeline run. TotalRemoved always equals
// TotalInput - TotalOutput.
type Report struct {
	TotalInput   int            `json:"total_input" yaml:"total_input"`
	TotalOutput  int            `json:"total_output" yaml:"total_output"`
	TotalRemoved int            `json:"total_removed" yaml:"total_removed"`
	PerFilter    map[string]int `json:"per_filter" yaml:"per_filter"`
	Reasons      []string       `json:"reasons" yaml:"reasons"`
	Removals     []Removal      `json:"removals" yaml:"removals"`
	Steps        []Step         `json:"steps" yaml:"steps"`
}

// ReasonsFor returns the removal reasons recorded for one posting.
func (r *Report) ReasonsFor(jobID string) []string {
	var out []string
	for _, rm := range r.Removals {
		if rm.JobID == jobID {
			out = append(out, rm.String())
		}
	}
	return out
}

type stage struct {
	filter  Filter
	enabled bool
	reason  string
}

// Pipeline runs filters sequentially, each consuming the survivors of the previous one.
type Pipeline struct {
	stages []*stage
	logger *zap.Logger
}

func NewPipeline(log *zap.Logger, filters ...Filter) *Pipeline {
	p := &Pipeline{logger: logger.OrNop(log)}
	for _, f := range filters {
		if f != nil {
			p.stages = append(p.stages, &stage{filter: f, enabled: true})
		}
	}
	return p
}

// Len returns the number of configured filters.
func (p *Pipeline) Len() int { return len(p.stages) }

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
// It reports whether any filter carried that name.
func (p *Pipeline) DisableByName(name, reason string) bool {
	found := false
	for _, s := range p.stages {
		if s.filter.Name() == name {
			s.enabled = false
			s.reason = reason
			found = true
		}
	}
	return found
}

// Run applies the enabled filters in order and reports what each removed.
func (p *Pipeline) Run(list jobs.List, prof *profile.Profile) (jobs.List, *Report) {
	report := &Report{
		TotalInput: len(list),
		PerFilter:  map[string]int{},
		Reasons:    []string{},
		Removals:   []Removal{},
		Steps:      []Step{},
	}

	current := append(jobs.List(nil), list...)
	for _, s := range p.stages {
		name := s.filter.Name()
		if !s.enabled {
			p.logger.Info("filter disabled", zap.String("name", name), zap.String("reason", s.reason))
			continue
		}

		before := len(current)
		next, removals := s.filter.Apply(current, prof)
		current = next

		step := Step{Name: name, Initial: before, Dropped: before - len(current), Left: len(current)}
		report.Steps = append(report.Steps, step)

		p.logger.Info("filter step",
			zap.String("name", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)

		if step.Dropped > 0 {
			report.PerFilter[name] = step.Dropped
			report.Removals = append(report.Removals, removals...)
			for _, rm := range removals {
				report.Reasons = append(report.Reasons, rm.String())
			}
		}
	}

	report.TotalOutput = len(current)
	report.TotalRemoved = report.TotalInput - report.TotalOutput
	return current, report
}

// Describe returns status entries for the configured filters.
func (p *Pipeline) Describe() []Status {
	statuses := make([]Status, 0, len(p.stages))
	for _, s := range p.stages {
		st := describe(s.filter)
		if !s.enabled {
			st.Enabled = false
			st.Reason = s.reason
		}
		statuses = append(statuses, st)
	}
	return statuses
}
