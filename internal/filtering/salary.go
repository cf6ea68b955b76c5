package filtering

import (
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const SalaryFilterName = "salary_filter"

type salaryFilter struct {
	min *float64
	max *float64
}

// NewSalary creates a filter removing postings paid outside [min, max]. Unset
// bounds fall back to the profile salary preference.
func NewSalary(min, max *float64) Filter {
	return &salaryFilter{min: min, max: max}
}

func (f *salaryFilter) Name() string { return SalaryFilterName }

func (f *salaryFilter) bounds(p *profile.Profile) (*float64, *float64) {
	min, max := f.min, f.max
	if pref := p.PreferredSalary; pref != nil {
		if min == nil {
			min = pref.Min
		}
		if max == nil {
			max = pref.Max
		}
	}
	return min, max
}

func (f *salaryFilter) Apply(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	min, max := f.bounds(preferences(p))
	if min == nil && max == nil {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		if !job.Salary.Bounds() {
			kept = append(kept, job)
			continue
		}

		highest, lowest := job.Salary.Max, job.Salary.Min
		if highest == nil {
			highest = job.Salary.Min
		}
		if lowest == nil {
			lowest = job.Salary.Max
		}

		switch {
		case min != nil && *highest < *min:
			removed = append(removed, removal(f.Name(), job, "salary $%s below minimum $%s",
				scoring.FormatAmount(*highest), scoring.FormatAmount(*min)))
		case max != nil && *lowest > *max:
			removed = append(removed, removal(f.Name(), job, "salary $%s above maximum $%s",
				scoring.FormatAmount(*lowest), scoring.FormatAmount(*max)))
		default:
			kept = append(kept, job)
		}
	}
	return kept, removed
}

func (f *salaryFilter) Status() Status {
	details := map[string]string{}
	if f.min != nil {
		details["min"] = scoring.FormatAmount(*f.min)
	}
	if f.max != nil {
		details["max"] = scoring.FormatAmount(*f.max)
	}
	if len(details) == 0 {
		details["bounds"] = "profile preference"
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
