package filtering

import (
	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

const LevelFilterName = "experience_level_filter"

type levelFilter struct {
	min jobs.Level
	max jobs.Level
}

// NewLevel creates a filter removing postings outside [min, max]. When both
// bounds are unset the span of the profile preferred levels is used.
func NewLevel(min, max jobs.Level) Filter {
	return &levelFilter{min: min, max: max}
}

func (f *levelFilter) Name() string { return LevelFilterName }

func (f *levelFilter) bounds(p *profile.Profile) (jobs.Level, jobs.Level) {
	min, max := f.min, f.max
	if min.Valid() || max.Valid() {
		return min, max
	}
	for _, l := range p.PreferredLevels {
		if !l.Valid() {
			continue
		}
		if !min.Valid() || l < min {
			min = l
		}
		if !max.Valid() || l > max {
			max = l
		}
	}
	return min, max
}

func (f *levelFilter) Apply(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	min, max := f.bounds(preferences(p))
	if !min.Valid() && !max.Valid() {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		switch idx := job.Level.Index(); {
		case !job.Level.Valid():
			kept = append(kept, job)
		case min.Valid() && idx < min.Index():
			removed = append(removed, removal(f.Name(), job, "level '%s' below minimum '%s'", job.Level, min))
		case max.Valid() && idx > max.Index():
			removed = append(removed, removal(f.Name(), job, "level '%s' above maximum '%s'", job.Level, max))
		default:
			kept = append(kept, job)
		}
	}
	return kept, removed
}

func (f *levelFilter) Status() Status {
	details := map[string]string{}
	if f.min.Valid() {
		details["min"] = f.min.String()
	}
	if f.max.Valid() {
		details["max"] = f.max.String()
	}
	if len(details) == 0 {
		details["bounds"] = "profile preference"
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
