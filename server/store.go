package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// fileTimeLayout is the timestamp part of generated file names.
const fileTimeLayout = "20060102_150405"

var errNotFound = errors.New("result not found")

// resultStore keeps generated storyboard JSON in memory for ResultTTL and,
// when dir is set, on disk.
type resultStore struct {
	mem *cache.Cache
	dir string
}

func newResultStore(mem *cache.Cache, dir string) *resultStore {
	return &resultStore{mem: mem, dir: dir}
}

// save stores data under a timestamped name and returns that name. Names
// already taken get a numeric suffix. A failed disk write is returned
// alongside the name; the in-memory copy is still usable.
func (s *resultStore) save(now time.Time, data []byte) (string, error) {
	base := "storyboard_" + now.Format(fileTimeLayout)
	name := base + ".json"
	for i := 1; s.mem.Add(name, data, cache.DefaultExpiration) != nil; i++ {
		name = fmt.Sprintf("%s_%d.json", base, i)
	}

	if s.dir == "" {
		return name, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return name, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return name, fmt.Errorf("writing %s: %w", name, err)
	}
	return name, nil
}

// load returns a stored result. Only plain file names are accepted.
func (s *resultStore) load(name string) ([]byte, error) {
	if !validName(name) {
		return nil, errNotFound
	}
	if v, ok := s.mem.Get(name); ok {
		return v.([]byte), nil
	}
	if s.dir == "" {
		return nil, errNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
