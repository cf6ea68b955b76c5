package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-ranker/internal/jobs"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearsOfExperience(t *testing.T) {
	now := date(2024, 1, 1)
	end := date(2020, 1, 1)
	backwards := date(2010, 1, 1)

	p := &Profile{WorkExperience: []WorkExperience{
		{StartDate: date(2018, 1, 1), EndDate: &end},
		{StartDate: date(2022, 1, 1), IsCurrent: true},
		{StartDate: date(2015, 1, 1), EndDate: &backwards},
	}}

	assert.InDelta(t, 4.0, p.YearsOfExperience(now), 0.05)
	assert.Zero(t, (&Profile{}).YearsOfExperience(now))
}

func TestRemoteDefault(t *testing.T) {
	assert.Equal(t, RemoteFlexible, (&Profile{}).Remote())
	assert.Equal(t, RemoteRequired, (&Profile{RemotePreference: RemoteRequired}).Remote())
}

const profileDocument = `
full_name: Jane Doe
email: jane@example.com
skills: [Python, SQL, Go]
remote_preference: preferred
willing_to_relocate: true
preferred_job_levels: [mid, senior]
preferred_locations:
  - city: Austin
    state: TX
preferred_salary_range:
  min_amount: 100000
work_experience:
  - company: Initech
    position: Engineer
    start_date: 2019-02-01
    end_date: 2023-02-01
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profileDocument), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, []jobs.Level{jobs.LevelMid, jobs.LevelSenior}, p.PreferredLevels)
	assert.Equal(t, RemotePreferred, p.RemotePreference)
	require.Len(t, p.PreferredLocations, 1)
	assert.Equal(t, "Austin", p.PreferredLocations[0].City)
	require.NotNil(t, p.PreferredSalary)
	assert.Nil(t, p.PreferredSalary.Max)
	assert.Equal(t, "USD", p.PreferredSalary.Currency)
	assert.InDelta(t, 4.0, p.YearsOfExperience(date(2030, 1, 1)), 0.05)
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("full_name: Jane\nremote_preference: sometimes\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid profile")
}
