// Package filtering removes postings that fail acceptance rules and explains
// every removal.
package filtering

import (
	"fmt"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

// Filter removes postings that fail one acceptance rule. A posting lacking the
// data a filter needs is kept. Implementations must not modify the input list.
type Filter interface {
	Name() string
	Apply(list jobs.List, p *profile.Profile) (jobs.List, []Removal)
}

// Removal records why a filter dropped a posting.
type Removal struct {
	JobID   string `json:"job_id" yaml:"job_id"`
	Title   string `json:"title" yaml:"title"`
	Company string `json:"company" yaml:"company"`
	Filter  string `json:"filter" yaml:"filter"`
	Detail  string `json:"detail" yaml:"detail"`
}

func (r Removal) String() string {
	return fmt.Sprintf("[%s] Removed '%s' at %s: %s", r.Filter, r.Title, r.Company, r.Detail)
}

func removal(filter string, job *jobs.Job, format string, args ...any) Removal {
	return Removal{
		JobID:   job.ID,
		Title:   job.Title,
		Company: job.Company,
		Filter:  filter,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string `json:"name" yaml:"name"`
	Initial int    `json:"initial" yaml:"initial"`
	Dropped int    `json:"dropped" yaml:"dropped"`
	Left    int    `json:"left" yaml:"left"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

func describe(f Filter) Status {
	if reporter, ok := f.(statusProvider); ok {
		return reporter.Status()
	}
	return Status{Name: f.Name(), Enabled: true}
}

// preferences returns p, or an empty profile when p is nil.
func preferences(p *profile.Profile) *profile.Profile {
	if p == nil {
		return &profile.Profile{}
	}
	return p
}
