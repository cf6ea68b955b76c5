package filtering

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-ranker/internal/jobs"
	"github.com/spigell/job-ranker/internal/profile"
)

func sampleJobs() jobs.List {
	return jobs.List{
		{ID: "1", Title: "Senior Backend Engineer", Company: "Acme", Level: jobs.LevelSenior, Salary: salary(jobs.Amount(120000), jobs.Amount(150000))},
		{ID: "2", Title: "Senior Backend Engineer", Company: "Acme", Level: jobs.LevelSenior},
		{ID: "3", Title: "Junior Support", Company: "Globex", Level: jobs.LevelEntry},
		{ID: "4", Title: "Backend Engineer", Company: "Initech", Salary: salary(nil, jobs.Amount(90000))},
		{ID: "5", Title: "Crypto Engineer", Company: "Hooli", Level: jobs.LevelMid},
		{ID: "6", Title: "Staff Engineer", Company: "Umbrella", Level: jobs.LevelLead},
	}
}

func TestPipelineRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	pipeline := NewPipeline(zap.New(core),
		NewDuplicate(0),
		NewSalary(jobs.Amount(100000), nil),
		NewLevel(jobs.LevelMid, jobs.LevelSenior),
		NewKeyword([]string{"crypto"}),
		NewLocation(nil, false),
	)

	input := sampleJobs()
	out, report := pipeline.Run(input, &profile.Profile{})

	assert.Equal(t, []string{"1"}, out.IDs())
	assert.Equal(t, 6, report.TotalInput)
	assert.Equal(t, 1, report.TotalOutput)
	assert.Equal(t, report.TotalInput-report.TotalOutput, report.TotalRemoved)
	assert.Equal(t, map[string]int{
		DuplicateFilterName: 1,
		SalaryFilterName:    1,
		LevelFilterName:     2,
		KeywordFilterName:   1,
	}, report.PerFilter)
	assert.Len(t, report.Reasons, 5)
	assert.Len(t, report.Removals, 5)
	assert.Len(t, report.Steps, 5)
	assert.Equal(t, Step{Name: LocationFilterName, Initial: 1, Dropped: 0, Left: 1}, report.Steps[4])

	assert.Equal(t, []string{"[salary_filter] Removed 'Backend Engineer' at Initech: salary $90,000 below minimum $100,000"}, report.ReasonsFor("4"))
	assert.Empty(t, report.ReasonsFor("1"))

	assert.Len(t, input, 6, "input must not be modified")

	steps := logs.FilterMessage("filter step").All()
	require.Len(t, steps, 5)
	assert.Equal(t, DuplicateFilterName, steps[0].ContextMap()["name"])
	assert.EqualValues(t, 1, steps[0].ContextMap()["dropped"])
}

func TestPipelineReasonsKeyedByJobID(t *testing.T) {
	list := jobs.List{
		{ID: "a", Title: "Engineer", Company: "Acme", Salary: salary(nil, jobs.Amount(10))},
		{ID: "b", Title: "Engineer", Company: "Acme", Salary: salary(nil, jobs.Amount(1000000))},
	}
	_, report := NewPipeline(nil, NewSalary(jobs.Amount(100), nil)).Run(list, nil)
	assert.Len(t, report.ReasonsFor("a"), 1)
	assert.Empty(t, report.ReasonsFor("b"))
}

func TestPipelineEmpty(t *testing.T) {
	out, report := NewPipeline(nil).Run(sampleJobs(), nil)
	assert.Len(t, out, 6)
	assert.Equal(t, 6, report.TotalInput)
	assert.Equal(t, 6, report.TotalOutput)
	assert.Zero(t, report.TotalRemoved)
	assert.Empty(t, report.PerFilter)
	assert.Empty(t, report.Reasons)

	out, report = NewPipeline(nil, NewDuplicate(0), NewSalary(jobs.Amount(1), nil)).Run(nil, nil)
	assert.Empty(t, out)
	assert.Zero(t, report.TotalInput)
	assert.Zero(t, report.TotalRemoved)
}

func TestPipelineInvariantHolds(t *testing.T) {
	for n := 0; n < 20; n++ {
		list := make(jobs.List, 0, n)
		for i := 0; i < n; i++ {
			list = append(list, &jobs.Job{
				ID:      fmt.Sprintf("%d", i%7),
				Title:   fmt.Sprintf("Engineer %d", i%5),
				Company: "Acme",
				Level:   jobs.Levels()[i%6],
				Salary:  salary(nil, jobs.Amount(float64(50000+i*10000))),
			})
		}
		pipeline := NewPipeline(nil,
			NewDuplicate(0),
			NewOr(NewSalary(jobs.Amount(100000), nil), NewLevel(jobs.LevelSenior, jobs.LevelUnset)),
		)
		out, report := pipeline.Run(list, nil)
		assert.Equal(t, report.TotalInput-report.TotalOutput, report.TotalRemoved)
		assert.Equal(t, len(out), report.TotalOutput)

		sum := 0
		for _, c := range report.PerFilter {
			sum += c
		}
		assert.Equal(t, report.TotalRemoved, sum)
	}
}

func TestPipelineDisableAndDescribe(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	pipeline := NewPipeline(zap.New(core), NewDuplicate(0.9), NewKeyword([]string{"crypto"}))
	assert.True(t, pipeline.DisableByName(KeywordFilterName, "disabled by flag"))
	assert.False(t, pipeline.DisableByName("no_such_filter", "typo"))

	out, report := pipeline.Run(sampleJobs(), nil)
	assert.Len(t, out, 5)
	assert.NotContains(t, report.PerFilter, KeywordFilterName)
	assert.Equal(t, 1, logs.FilterMessage("filter disabled").Len())

	statuses := pipeline.Describe()
	require.Len(t, statuses, 2)
	assert.Equal(t, Status{Name: DuplicateFilterName, Enabled: true, Details: map[string]string{"threshold": "0.90"}}, statuses[0])
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, "disabled by flag", statuses[1].Reason)
	assert.Equal(t, "crypto", statuses[1].Details["keywords"])
}
