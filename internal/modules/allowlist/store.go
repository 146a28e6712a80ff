package allowlist

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultDomains seeds the store on first run. Substring matching against
// URLs means each entry also covers its subdomains and mirror paths.
var DefaultDomains = []string{
	"terabox.com",
	"teraboxapp.com",
	"1024terabox.com",
	"terasharelink.com",
	"teraboxlink.com",
	"mirrobox.com",
	"nephobox.com",
	"freeterabox.com",
	"momerybox.com",
	"4funbox.com",
}

// Store holds the set of permitted link domains, backed by a flat file
// with one domain per line. Mutations are written through immediately.
type Store struct {
	path    string
	domains map[string]struct{}
	mu      sync.RWMutex
}

// Open loads the allowlist from path. If the file does not exist it is
// created with the default domain set.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		domains: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, oops.With("path", path).Wrap(err)
		}
		for _, d := range DefaultDomains {
			s.domains[normalize(d)] = struct{}{}
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
		return s, nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		if d := normalize(line); d != "" {
			s.domains[d] = struct{}{}
		}
	}
	return s, nil
}

// Add inserts a domain. It reports false if the domain was already present.
func (s *Store) Add(domain string) (bool, error) {
	d := normalize(domain)
	if d == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[d]; ok {
		return false, nil
	}
	s.domains[d] = struct{}{}
	if err := s.persist(); err != nil {
		delete(s.domains, d)
		return false, err
	}
	return true, nil
}

// Remove deletes a domain. It reports false if the domain was not present.
func (s *Store) Remove(domain string) (bool, error) {
	d := normalize(domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[d]; !ok {
		return false, nil
	}
	delete(s.domains, d)
	if err := s.persist(); err != nil {
		s.domains[d] = struct{}{}
		return false, err
	}
	return true, nil
}

// Domains returns the current set sorted ascending.
func (s *Store) Domains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

// Contains reports whether the exact domain is in the set.
func (s *Store) Contains(domain string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.domains[normalize(domain)]
	return ok
}

func (s *Store) sorted() []string {
	domains := lo.Keys(s.domains)
	sort.Strings(domains)
	return domains
}

// persist writes the sorted set, one domain per line. Callers must hold mu.
func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return oops.With("path", s.path).Wrap(err)
		}
	}
	content := strings.Join(s.sorted(), "\n") + "\n"
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return oops.With("path", s.path).Wrap(err)
	}
	return nil
}

func normalize(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
