package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

// Mode selects how a composite combines its children.
type Mode string

const (
	ModeAnd Mode = "AND"
	ModeOr  Mode = "OR"
)

type compositeFilter struct {
	mode    Mode
	filters []Filter
}

// NewAnd keeps postings that survive every child, applied in sequence.
func NewAnd(filters ...Filter) Filter {
	return &compositeFilter{mode: ModeAnd, filters: filters}
}

// NewOr keeps postings that survive at least one child.
func NewOr(filters ...Filter) Filter {
	return &compositeFilter{mode: ModeOr, filters: filters}
}

func (f *compositeFilter) Name() string {
	names := make([]string, 0, len(f.filters))
	for _, child := range f.filters {
		names = append(names, child.Name())
	}
	return fmt.Sprintf("composite_%s(%s)", f.mode, strings.Join(names, ", "))
}

func (f *compositeFilter) Apply(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	if len(f.filters) == 0 {
		return list, nil
	}
	if f.mode == ModeOr {
		return f.applyOr(list, p)
	}
	return f.applyAnd(list, p)
}

func (f *compositeFilter) applyAnd(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	var removed []Removal
	current := list
	for _, child := range f.filters {
		var rm []Removal
		current, rm = child.Apply(current, p)
		removed = append(removed, rm...)
	}
	return current, removed
}

func (f *compositeFilter) applyOr(list jobs.List, p *profile.Profile) (jobs.List, []Removal) {
	passed := make(map[*jobs.Job]struct{}, len(list))
	for _, child := range f.filters {
		survivors, _ := child.Apply(list, p)
		for _, job := range survivors {
			passed[job] = struct{}{}
		}
	}

	kept := make(jobs.List, 0, len(list))
	var removed []Removal
	for _, job := range list {
		if _, ok := passed[job]; ok {
			kept = append(kept, job)
			continue
		}
		removed = append(removed, removal(f.Name(), job, "failed all OR filters"))
	}
	return kept, removed
}

func (f *compositeFilter) Status() Status {
	details := map[string]string{"mode": string(f.mode)}
	for _, child := range f.filters {
		st := describe(child)
		for k, v := range st.Details {
			details[st.Name+"."+k] = v
		}
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
