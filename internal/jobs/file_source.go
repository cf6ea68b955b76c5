package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// FileSource serves postings from a local yaml, json or toml document with a
// top level "jobs" list.
type FileSource struct {
	name string
	path string
}

func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: strings.TrimSpace(name), path: strings.TrimSpace(path)}
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Fetch(ctx context.Context, q Query) (List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded, err := s.load()
	if err != nil {
		return nil, err
	}

	keywords := strings.Fields(strings.ToLower(q.Keywords))
	location := strings.ToLower(strings.TrimSpace(q.Location))

	result := make(List, 0, len(loaded))
	for _, job := range loaded {
		if !containsAll(searchText(job), keywords) {
			continue
		}
		if location != "" && job.Location != nil && !job.Location.Remote &&
			!strings.Contains(strings.ToLower(job.Location.String()), location) {
			continue
		}
		result = append(result, job)
		if q.MaxResults > 0 && len(result) == q.MaxResults {
			break
		}
	}
	return result, nil
}

func (s *FileSource) load() (List, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading jobs file %q: %w", s.path, err)
	}

	var list List
	if err := Decode(v.Get("jobs"), &list); err != nil {
		return nil, fmt.Errorf("decoding jobs file %q: %w", s.path, err)
	}

	for _, job := range list {
		if job == nil {
			continue
		}
		if job.Source == "" {
			job.Source = s.name
		}
		if strings.TrimSpace(job.ID) == "" {
			job.ID = StableID(job)
		}
		job.applyDefaults()
	}
	return compact(list), nil
}

// StableID derives a deterministic identifier for postings that lack one.
func StableID(job *Job) string {
	key := strings.Join([]string{job.Source, job.Title, job.Company, job.URL}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func searchText(job *Job) string {
	parts := append([]string{job.Title, job.Description}, job.Requirements...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

func compact(list List) List {
	out := list[:0]
	for _, job := range list {
		if job != nil {
			out = append(out, job)
		}
	}
	return out
}
