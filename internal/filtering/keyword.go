package filtering

import (
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const KeywordFilterName = "keyword_filter"

type keywordFilter struct {
	keywords []string
}

// NewKeyword creates a filter removing postings that mention any excluded keyword.
func NewKeyword(excluded []string) Filter {
	f := &keywordFilter{}
	for _, k := range excluded {
		if n := scoring.Normalize(k); n != "" {
			f.keywords = append(f.keywords, n)
		}
	}
	return f
}

func (f *keywordFilter) Name() string { return KeywordFilterName }

func (f *keywordFilter) Apply(list jobs.List, _ *profile.Profile) (jobs.List, []Removal) {
	if len(f.keywords) == 0 {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		text := searchableText(job)
		if k, found := f.firstMatch(text); found {
			removed = append(removed, removal(f.Name(), job, "contains excluded keyword '%s'", k))
			continue
		}
		kept = append(kept, job)
	}
	return kept, removed
}

func (f *keywordFilter) firstMatch(text string) (string, bool) {
	for _, k := range f.keywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

func searchableText(job *jobs.Job) string {
	parts := []string{job.Title, job.Company, job.Description}
	parts = append(parts, job.Requirements...)
	parts = append(parts, job.NiceToHaves...)
	return scoring.Normalize(strings.Join(parts, " "))
}

func (f *keywordFilter) Status() Status {
	details := map[string]string{}
	if len(f.keywords) > 0 {
		details["keywords"] = strings.Join(f.keywords, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
