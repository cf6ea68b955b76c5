package profile

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/job-ranker/internal/jobs"
)

// RemotePreference expresses how the candidate feels about remote work.
type RemotePreference string

const (
	RemoteRequired      RemotePreference = "required"
	RemotePreferred     RemotePreference = "preferred"
	RemoteFlexible      RemotePreference = "flexible"
	RemoteNotInterested RemotePreference = "not_interested"
)

const daysPerYear = 365.25

// Profile describes the candidate postings are ranked for.
type Profile struct {
	ID                 string            `json:"user_id,omitempty"`
	FullName           string            `json:"full_name,omitempty" validate:"required"`
	Email              string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string            `json:"phone,omitempty"`
	Summary            string            `json:"summary,omitempty"`
	Location           *jobs.Location    `json:"location,omitempty"`
	Skills             []string          `json:"skills,omitempty"`
	WorkExperience     []WorkExperience  `json:"work_experience,omitempty" validate:"dive"`
	Education          []Education       `json:"education,omitempty"`
	Certifications     []string          `json:"certifications,omitempty"`
	PreferredLevels    []jobs.Level      `json:"preferred_job_levels,omitempty"`
	PreferredLocations []jobs.Location   `json:"preferred_locations,omitempty"`
	PreferredSalary    *jobs.Salary      `json:"preferred_salary_range,omitempty"`
	WillingToRelocate  bool              `json:"willing_to_relocate,omitempty"`
	RemotePreference   RemotePreference  `json:"remote_preference,omitempty" validate:"omitempty,oneof=required preferred flexible not_interested"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type WorkExperience struct {
	Company     string     `json:"company,omitempty"`
	Position    string     `json:"position,omitempty"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	IsCurrent   bool       `json:"is_current,omitempty"`
}

type Education struct {
	Institution    string     `json:"institution,omitempty"`
	Degree         string     `json:"degree,omitempty"`
	Field          string     `json:"field,omitempty"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"`
	GPA            *float64   `json:"gpa,omitempty"`
	Honors         []string   `json:"honors,omitempty"`
}

var validate = validator.New()

// Validate checks the structural constraints of the profile.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// YearsOfExperience sums the duration of all work entries, measuring current
// or open-ended roles up to now. Entries ending before they start are ignored.
// The result is rounded to one decimal.
func (p *Profile) YearsOfExperience(now time.Time) float64 {
	var days float64
	for _, exp := range p.WorkExperience {
		end := now
		if !exp.IsCurrent && exp.EndDate != nil {
			end = *exp.EndDate
		}
		d := end.Sub(exp.StartDate).Hours() / 24
		if d > 0 {
			days += d
		}
	}
	return math.Round(days/daysPerYear*10) / 10
}

// Remote returns the remote preference, defaulting to flexible.
func (p *Profile) Remote() RemotePreference {
	if p.RemotePreference == "" {
		return RemoteFlexible
	}
	return p.RemotePreference
}

// Load reads a profile document (yaml, json or toml) from path.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(strings.TrimSpace(path))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	var p Profile
	if err := jobs.Decode(v.AllSettings(), &p); err != nil {
		return nil, fmt.Errorf("decoding profile %q: %w", path, err)
	}

	if p.PreferredSalary != nil {
		if p.PreferredSalary.Currency == "" {
			p.PreferredSalary.Currency = "USD"
		}
		if p.PreferredSalary.Period == "" {
			p.PreferredSalary.Period = "yearly"
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
