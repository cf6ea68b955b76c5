package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// EmploymentType describes the contract of a posting.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentFreelance  EmploymentType = "freelance"
	EmploymentInternship EmploymentType = "internship"
)

const (
	defaultCurrency = "USD"
	defaultPeriod   = "yearly"
)

// List is an ordered collection of postings.
type List []*Job

// Job is a single posting as supplied by a Source.
type Job struct {
	ID                  string            `json:"job_id,omitempty"`
	Title               string            `json:"title,omitempty"`
	Company             string            `json:"company,omitempty"`
	Description         string            `json:"description,omitempty"`
	Location            *Location         `json:"location,omitempty"`
	Requirements        []string          `json:"requirements,omitempty"`
	NiceToHaves         []string          `json:"nice_to_haves,omitempty"`
	Level               Level             `json:"level,omitempty"`
	EmploymentType      EmploymentType    `json:"employment_type,omitempty"`
	Salary              *Salary           `json:"salary,omitempty"`
	URL                 string            `json:"url,omitempty"`
	Source              string            `json:"source,omitempty"`
	PostedDate          *time.Time        `json:"posted_date,omitempty"`
	ApplicationDeadline *time.Time        `json:"application_deadline,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// Location of a posting or a candidate preference.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Remote  bool   `json:"remote,omitempty"`
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Remote {
		return "Remote"
	}
	return fmt.Sprintf("%s, %s, %s", l.City, l.State, l.Country)
}

// Salary is a compensation range. Either bound may be absent.
type Salary struct {
	Min      *float64 `json:"min_amount,omitempty" yaml:"min_amount,omitempty"`
	Max      *float64 `json:"max_amount,omitempty" yaml:"max_amount,omitempty"`
	Currency string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	Period   string   `json:"period,omitempty" yaml:"period,omitempty"`
}

// Bounds reports whether at least one side of the range is set.
func (s *Salary) Bounds() bool {
	return s != nil && (s.Min != nil || s.Max != nil)
}

func (s *Salary) String() string {
	if !s.Bounds() {
		return ""
	}
	format := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprintf("%.0f", *v)
	}
	return fmt.Sprintf("%s-%s %s/%s", format(s.Min), format(s.Max), s.Currency, s.Period)
}

// Amount is a helper for building optional salary bounds.
func Amount(v float64) *float64 {
	return &v
}

func (j *Job) applyDefaults() {
	if j.Salary != nil {
		if j.Salary.Currency == "" {
			j.Salary.Currency = defaultCurrency
		}
		if j.Salary.Period == "" {
			j.Salary.Period = defaultPeriod
		}
	}
}

// Skills returns required skills followed by nice-to-have skills.
func (j *Job) Skills() []string {
	out := make([]string, 0, len(j.Requirements)+len(j.NiceToHaves))
	out = append(out, j.Requirements...)
	return append(out, j.NiceToHaves...)
}

func (l List) Len() int {
	return len(l)
}

func (l List) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, job := range l {
		ids = append(ids, job.ID)
	}
	return ids
}

// ReportByCompany groups postings under their company name.
func (l List) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range l {
		report[job.Company] = append(report[job.Company], map[string]string{
			"title":    job.Title,
			"url":      job.URL,
			"location": job.Location.String(),
			"level":    job.Level.String(),
			"salary":   job.Salary.String(),
			"source":   job.Source,
		})
	}
	return report
}

// ToExcluded converts the postings into exclude file entries.
func (l List) ToExcluded(reason string) *Excluded {
	now := time.Now().UTC()
	excluded := &Excluded{}
	for _, job := range l {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         job.ID,
			URL:        job.URL,
			Company:    job.Company,
			Reason:     strings.TrimSpace(reason),
			ExcludedAt: now,
		})
	}
	return excluded
}

// DumpToTmpFile writes the postings as indented JSON into a temporary file.
func (l List) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}
