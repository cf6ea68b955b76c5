package filtering

import (
	"strconv"
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const LocationFilterName = "location_filter"

type locationFilter struct {
	allowed       []string
	requireRemote bool
}

// NewLocation creates a filter keeping postings in the allowed places. With no
// allowed places configured the profile preferred cities and states are used;
// remote is required explicitly or when the profile requires it.
func NewLocation(allowed []string, requireRemote bool) Filter {
	f := &locationFilter{requireRemote: requireRemote}
	for _, loc := range allowed {
		if n := scoring.Normalize(loc); n != "" {
			f.allowed = append(f.allowed, n)
		}
	}
	return f
}

func (f *locationFilter) Name() string { return LocationFilterName }

func (f *locationFilter) Apply(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	p = preferences(p)

	allowed := f.allowed
	if len(allowed) == 0 {
		for _, loc := range p.PreferredLocations {
			if c := scoring.Normalize(loc.City); c != "" {
				allowed = append(allowed, c)
			}
			if s := scoring.Normalize(loc.State); s != "" {
				allowed = append(allowed, s)
			}
		}
	}

	requireRemote := f.requireRemote || p.Remote() == profile.RemoteRequired
	if len(allowed) == 0 && !requireRemote {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		loc := job.Location
		switch {
		case loc == nil:
			kept = append(kept, job)
		case loc.Remote:
			kept = append(kept, job)
		case requireRemote:
			removed = append(removed, removal(f.Name(), job, "not remote (%s)", loc))
		case matchesLocation(loc, allowed):
			kept = append(kept, job)
		default:
			removed = append(removed, removal(f.Name(), job, "location '%s' not in allowed list", loc))
		}
	}
	return kept, removed
}

func matchesLocation(loc *jobs.Location, allowed []string) bool {
	city := scoring.Normalize(loc.City)
	state := scoring.Normalize(loc.State)
	country := scoring.Normalize(loc.Country)
	for _, a := range allowed {
		if a == city || a == state || a == country ||
			strings.Contains(city, a) || strings.Contains(state, a) {
			return true
		}
	}
	return false
}

func (f *locationFilter) Status() Status {
	details := map[string]string{"require_remote": strconv.FormatBool(f.requireRemote)}
	if len(f.allowed) > 0 {
		details["allowed"] = strings.Join(f.allowed, ",")
	} else {
		details["allowed"] = "profile preference"
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
