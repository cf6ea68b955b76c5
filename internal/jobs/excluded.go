package jobs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Excluded is the content of an exclude file: postings the user never wants to see again.
type Excluded struct {
	Items []*ExcludedJob `json:"items"`
}

type ExcludedJob struct {
	ID         string    `json:"id"`
	URL        string    `json:"url,omitempty"`
	Company    string    `json:"company,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// LoadExcluded reads an exclude file. A missing or empty file yields an empty list.
func LoadExcluded(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Excluded{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose IDs are not yet present.
func (e *Excluded) Append(other *Excluded) {
	if other == nil {
		return
	}
	seen := e.IDs()
	for _, item := range other.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *Excluded) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		ids[item.ID] = struct{}{}
	}
	return ids
}

func (e *Excluded) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
