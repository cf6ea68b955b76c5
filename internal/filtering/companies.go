package filtering

import (
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const CompaniesFilterName = "companies_filter"

type companiesFilter struct {
	companies scoring.Set
	names     []string
}

// NewExcludedCompanies creates a filter that removes postings of the listed companies.
func NewExcludedCompanies(companies []string) Filter {
	return &companiesFilter{companies: scoring.NormalizeSet(companies), names: companies}
}

func (f *companiesFilter) Name() string { return CompaniesFilterName }

func (f *companiesFilter) Apply(list jobs.List, _ *profile.Profile) (jobs.List, []Removal) {
	if len(f.companies) == 0 {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		if f.companies.Has(scoring.Normalize(job.Company)) {
			removed = append(removed, removal(f.Name(), job, "company '%s' is excluded", job.Company))
			continue
		}
		kept = append(kept, job)
	}
	return kept, removed
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
