package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSource struct {
	name string
	list List
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, Query) (List, error) {
	return s.list, s.err
}

func TestRegistryFetchSkipsFailingSource(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewRegistry(zap.New(core))

	require.NoError(t, reg.Register(&stubSource{name: "b", list: List{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}}))
	require.NoError(t, reg.Register(&stubSource{name: "a", err: errors.New("boom")}))
	require.Error(t, reg.Register(&stubSource{name: "a"}))

	found, err := reg.Fetch(context.Background(), Query{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, found.IDs())
	assert.Equal(t, "b", found[0].Source)

	require.Equal(t, 1, logs.FilterMessage("fetching jobs failed").Len())
	assert.Equal(t, "a", logs.All()[0].ContextMap()["source"])
}

func TestRegistryUnknownSourceIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewRegistry(zap.New(core))
	require.NoError(t, reg.Register(&stubSource{name: "feed", list: List{{ID: "f1"}}}))

	found, err := reg.Fetch(context.Background(), Query{}, "missing", "feed")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, found.IDs())

	skipped := logs.FilterMessage("skipping job source").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "missing", skipped[0].ContextMap()["source"])

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

const jobsDocument = `
jobs:
  - job_id: go-1
    title: Senior Go Engineer
    company: Acme
    description: Build services in Go and Kubernetes
    level: senior
    employment_type: full_time
    location:
      city: Berlin
      country: Germany
    requirements: [Go, Kubernetes]
    nice_to_haves: [SQL]
    salary:
      min_amount: 90000
      max_amount: 120000
    posted_date: 2024-03-01
  - title: Python Developer
    company: Globex
    url: https://jobs.example.com/py?ref=feed
    location:
      remote: true
    requirements: [Python]
`

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobsDocument), 0o644))

	src := NewFileSource("local", path)

	all, err := src.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	first := all[0]
	assert.Equal(t, "go-1", first.ID)
	assert.Equal(t, LevelSenior, first.Level)
	assert.Equal(t, EmploymentFullTime, first.EmploymentType)
	require.NotNil(t, first.Salary)
	assert.InDelta(t, 90000, *first.Salary.Min, 0.001)
	assert.Equal(t, "USD", first.Salary.Currency)
	assert.Equal(t, "yearly", first.Salary.Period)
	require.NotNil(t, first.PostedDate)
	assert.Equal(t, 2024, first.PostedDate.Year())
	assert.Equal(t, "local", first.Source)

	second := all[1]
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, StableID(second), second.ID)
	assert.Equal(t, "Remote", second.Location.String())

	filtered, err := src.Fetch(context.Background(), Query{Keywords: "kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go-1"}, filtered.IDs())

	byLocation, err := src.Fetch(context.Background(), Query{Location: "paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, byLocation.IDs())
}

func TestExcludedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := LoadExcluded(path)
	require.NoError(t, err)
	assert.Empty(t, excluded.Items)

	list := List{{ID: "1", Company: "Acme"}, {ID: "2", Company: "Globex"}}
	excluded.Append(list.ToExcluded("seen"))
	excluded.Append(List{{ID: "1"}}.ToExcluded("again"))
	require.NoError(t, excluded.ToFile(path))

	reloaded, err := LoadExcluded(path)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 2)
	assert.Equal(t, "seen", reloaded.Items[0].Reason)
	assert.Contains(t, reloaded.IDs(), "2")
}
