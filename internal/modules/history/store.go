package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Record is one successfully published post, kept for the RSS feed and
// operational visibility.
type Record struct {
	Title       string    `json:"title"`
	PostURL     string    `json:"post_url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Links       []string  `json:"links"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

type Store struct {
	basePath string
	mu       sync.RWMutex
}

func NewStore(basePath string) (*Store, error) {
	dir := filepath.Join(basePath, "posts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.With("path", dir, "context", "creating history directory").Wrap(err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Append(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%d.json", record.PublishedAt.UnixNano())
	path := filepath.Join(s.basePath, "posts", name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return oops.With("title", record.Title).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("path", path).Wrap(err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, "posts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Record{}, nil
		}
		return nil, oops.With("path", dir).Wrap(err)
	}

	records := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*Record, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, false
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, false
		}
		return &record, true
	})

	sort.Slice(records, func(i, j int) bool {
		return records[i].PublishedAt.After(records[j].PublishedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
