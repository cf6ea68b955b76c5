package filtering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

const ExcludeFileFilterName = "exclude_file"

type excludeFileFilter struct {
	path     string
	excluded map[string]struct{}
}

// NewExcludeFile creates a filter that removes postings listed in the exclude
// file at path. An empty path yields a filter that keeps everything.
func NewExcludeFile(path string) (Filter, error) {
	f := &excludeFileFilter{path: strings.TrimSpace(path), excluded: map[string]struct{}{}}
	if f.path == "" {
		return f, nil
	}

	excluded, err := jobs.LoadExcluded(f.path)
	if err != nil {
		return nil, fmt.Errorf("getting excluded jobs from file: %w", err)
	}
	f.excluded = excluded.IDs()
	return f, nil
}

func (f *excludeFileFilter) Name() string { return ExcludeFileFilterName }

func (f *excludeFileFilter) Apply(list jobs.List, _ *profile.Profile) (jobs.List, []Removal) {
	if len(f.excluded) == 0 {
		return list, nil
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		if _, ok := f.excluded[job.ID]; ok {
			removed = append(removed, removal(f.Name(), job, "listed in exclude file"))
			continue
		}
		kept = append(kept, job)
	}
	return kept, removed
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
		details["entries"] = strconv.Itoa(len(f.excluded))
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
