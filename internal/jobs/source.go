package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

var ErrUnknownSource = errors.New("unknown job source")

// Query narrows the postings a Source returns.
type Query struct {
	Keywords   string
	Location   string
	MaxResults int
}

// Source supplies postings for a query.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) (List, error)
}

// Registry holds the sources available to a run. It is populated once at
// startup and only read afterwards.
type Registry struct {
	sources map[string]Source
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{sources: make(map[string]Source), logger: logger}
}

func (r *Registry) Register(s Source) error {
	if s == nil {
		return errors.New("source is required")
	}
	name := s.Name()
	if name == "" {
		return errors.New("source name is required")
	}
	if _, ok := r.sources[name]; ok {
		return fmt.Errorf("source %q already registered", name)
	}
	r.sources[name] = s
	return nil
}

func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return s, nil
}

// Names returns registered source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetch queries the named sources (all when none given) and concatenates the
// results. Failing sources and unknown names are logged and skipped.
func (r *Registry) Fetch(ctx context.Context, q Query, names ...string) (List, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	selected := make([]Source, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			r.logger.Warn("skipping job source", zap.String("source", name), zap.Error(err))
			continue
		}
		selected = append(selected, s)
	}

	var all List
	for _, s := range selected {
		found, err := s.Fetch(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Warn("fetching jobs failed", zap.String("source", s.Name()), zap.Error(err))
			continue
		}

		if q.MaxResults > 0 && len(found) > q.MaxResults {
			found = found[:q.MaxResults]
		}

		for _, job := range found {
			if job.Source == "" {
				job.Source = s.Name()
			}
		}

		r.logger.Info("fetched jobs", zap.String("source", s.Name()), zap.Int("count", len(found)))
		all = append(all, found...)
	}

	return all, nil
}
