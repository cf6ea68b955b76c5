package filtering

import (
	"strconv"
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
	"github.com/spigell/job-ranker/internal/scoring"
)

const (
	DuplicateFilterName        = "duplicate_filter"
	DefaultSimilarityThreshold = 0.85
)

type duplicateFilter struct {
	threshold float64
}

// NewDuplicate creates a filter removing repeated postings: same ID, same URL
// ignoring query and trailing slash, or a "title @ company" signature whose
// word Jaccard similarity to a kept posting reaches threshold. A non-positive
// threshold selects DefaultSimilarityThreshold.
func NewDuplicate(threshold float64) Filter {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &duplicateFilter{threshold: threshold}
}

func (f *duplicateFilter) Name() string { return DuplicateFilterName }

func (f *duplicateFilter) Apply(list jobs.List, _ *profile.Profile) (jobs.List, []Removal) {
	if len(list) <= 1 {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal

	ids := map[string]struct{}{}
	urls := map[string]struct{}{}
	var signatures []scoring.Set

	for _, job := range list {
		if _, ok := ids[job.ID]; ok && job.ID != "" {
			removed = append(removed, removal(f.Name(), job, "duplicate of same job_id '%s'", job.ID))
			continue
		}

		if url := canonicalURL(job.URL); url != "" {
			if _, ok := urls[url]; ok {
				removed = append(removed, removal(f.Name(), job, "duplicate of same URL"))
				continue
			}
			urls[url] = struct{}{}
		}

		signature := scoring.WordSet(job.Title + " @ " + job.Company)
		if similarity, dup := f.similar(signature, signatures); dup {
			removed = append(removed, removal(f.Name(), job,
				"similar to existing posting (%.0f%% match)", similarity*100))
			continue
		}

		ids[job.ID] = struct{}{}
		signatures = append(signatures, signature)
		kept = append(kept, job)
	}
	return kept, removed
}

func (f *duplicateFilter) similar(signature scoring.Set, seen []scoring.Set) (float64, bool) {
	for _, existing := range seen {
		if s := scoring.Jaccard(signature, existing); s >= f.threshold {
			return s, true
		}
	}
	return 0, false
}

func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "?"); idx != -1 {
		raw = raw[:idx]
	}
	return strings.ToLower(strings.TrimRight(raw, "/"))
}

func (f *duplicateFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"threshold": strconv.FormatFloat(f.threshold, 'f', 2, 64)},
	}
}
