package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-ranker/internal/jobs"
)

func TestStringFieldsSkipsBlanks(t *testing.T) {
	fields := StringFields(
		StringField{Key: " matcher ", Value: " hybrid "},
		StringField{Key: FieldCompany, Value: "  "},
		StringField{Key: "", Value: "orphan"},
	)
	require.Len(t, fields, 1)
	assert.Equal(t, "matcher", fields[0].Key)
	assert.Equal(t, "hybrid", fields[0].String)
	assert.Empty(t, StringFields())
}

func TestWithCommonFieldsAnnotatesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	log := WithCommonFields(zap.New(core), "gemini", "gemini-2.5-flash")
	log.Debug("request sent")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{
		FieldProvider: "gemini",
		FieldModel:    "gemini-2.5-flash",
	}, entries[0].ContextMap())

	assert.Len(t, CommonFields("gemini", ""), 1)
	assert.NotPanics(t, func() { WithCommonFields(nil, "gemini", "x").Info("dropped") })
}

func TestWithFieldsWithoutFieldsReturnsLogger(t *testing.T) {
	base := zap.NewExample()
	assert.Same(t, base, WithFields(base))
	assert.NotNil(t, WithFields(nil))
}

func TestJobFields(t *testing.T) {
	tests := []struct {
		name string
		job  *jobs.Job
		want map[string]string
	}{
		{
			name: "complete",
			job:  &jobs.Job{ID: "42", Title: "Go Developer", Company: "Acme"},
			want: map[string]string{FieldJobID: "42", FieldJobTitle: "Go Developer", FieldCompany: "Acme"},
		},
		{
			name: "partial",
			job:  &jobs.Job{Title: "Go Developer"},
			want: map[string]string{FieldJobTitle: "Go Developer"},
		},
		{
			name: "nil",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]string{}
			for _, f := range JobFields(tt.job) {
				got[f.Key] = f.String
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "disabled", input: "anything", limit: 0, want: ""},
		{name: "short", input: "  score this  ", limit: 20, want: "score this"},
		{name: "collapses whitespace", input: "line one\n\n\tline two", limit: 50, want: "line one line two"},
		{name: "cut", input: "candidate profile", limit: 9, want: "candidate..."},
		{name: "runes", input: "Zürich Genève", limit: 6, want: "Zürich..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.input, tt.limit))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	base := zap.NewExample()
	assert.Same(t, base, OrNop(base))
}
