package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tilemask/internal/autotile"
)

// Names of the built-in rule tables.
const (
	Terrain10        = "terrain10"
	Corner16         = "corner16"
	Corner16Tolerant = "corner16-tolerant"
	Pipe16           = "pipe16"
)

// ErrUnknownRules is returned when a rule table name is not registered.
var ErrUnknownRules = errors.New("unknown rule table")

// Registry holds rule tables by name.
type Registry struct {
	tables map[string]*autotile.RuleTable
}

// NewRegistry creates a registry from already built tables. Later tables
// replace earlier ones with the same name.
func NewRegistry(tables ...*autotile.RuleTable) *Registry {
	r := &Registry{tables: make(map[string]*autotile.RuleTable, len(tables))}
	for _, t := range tables {
		r.tables[t.Name()] = t
	}
	return r
}

// Builtin returns a registry holding only the embedded rule tables.
func Builtin() (*Registry, error) {
	files, err := fs.Glob(builtinFS, "*.json")
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, f := range files {
		rs, err := Load[RuleSet](f)
		if err != nil {
			return nil, err
		}
		t, err := rs.Table()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		r.tables[t.Name()] = t
	}
	return r, nil
}

// MustBuiltin is Builtin that panics. The embedded files are validated by
// tests, so this only fails on a broken build.
func MustBuiltin() *Registry {
	r, err := Builtin()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadDir returns the built-ins plus every *.json rule set in dir. Files in
// dir override built-ins of the same name. An empty dir skips the scan.
func LoadDir(dir string) (*Registry, error) {
	r, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rules directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		r.tables[t.Name()] = t
	}
	return r, nil
}

// Get returns the named table.
func (r *Registry) Get(name string) (*autotile.RuleTable, error) {
	t, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownRules)
	}
	return t, nil
}

// MustGet returns the named table, panicking if it is missing.
func (r *Registry) MustGet(name string) *autotile.RuleTable {
	t, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tables.
func (r *Registry) Count() int {
	return len(r.tables)
}
