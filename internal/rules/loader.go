// Package rules loads auto-tiling rule tables from JSON. The built-in
// tables are embedded; more can be dropped into a directory.
package rules

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"tilemask/internal/autotile"
)

// builtinFS embeds the rule sets that ship with the binary.
//
//go:embed *.json
var builtinFS embed.FS

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := builtinFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("read embedded file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// MustLoad reads and unmarshals an embedded JSON file, panicking on error.
func MustLoad[T any](filename string) T {
	result, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return result
}

// RuleSet is the on-disk form of a rule table.
type RuleSet struct {
	Name      string     `json:"name"`
	Variants  int        `json:"variants"`
	Normalize string     `json:"normalize,omitempty"`
	Rules     []RuleJSON `json:"rules"`
}

// RuleJSON is one entry. Mask, Dirs or both may be given; when both are
// present they must agree.
type RuleJSON struct {
	Mask    *int   `json:"mask,omitempty"`
	Dirs    string `json:"dirs,omitempty"`
	Variant int    `json:"variant"`
}

// Table validates the rule set and builds the lookup table.
func (rs RuleSet) Table() (*autotile.RuleTable, error) {
	if rs.Name == "" {
		return nil, fmt.Errorf("rule set has no name")
	}
	norm, err := autotile.ParseNormalize(rs.Normalize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rs.Name, err)
	}

	out := make([]autotile.Rule, 0, len(rs.Rules))
	for i, r := range rs.Rules {
		mask, err := r.mask()
		if err != nil {
			return nil, fmt.Errorf("%s: rule %d: %w", rs.Name, i, err)
		}
		out = append(out, autotile.Rule{Mask: mask, Variant: autotile.Variant(r.Variant)})
	}
	return autotile.NewRuleTable(rs.Name, rs.Variants, norm, out)
}

func (r RuleJSON) mask() (autotile.Mask, error) {
	if r.Mask == nil && r.Dirs == "" {
		return 0, fmt.Errorf("needs mask or dirs")
	}

	var fromMask, fromDirs autotile.Mask
	if r.Mask != nil {
		if *r.Mask < 0 || *r.Mask > 255 {
			return 0, fmt.Errorf("mask %d outside 0..255", *r.Mask)
		}
		fromMask = autotile.Mask(*r.Mask)
	}
	if r.Dirs != "" {
		m, err := autotile.ParseMask(r.Dirs)
		if err != nil {
			return 0, err
		}
		fromDirs = m
	}

	switch {
	case r.Mask == nil:
		return fromDirs, nil
	case r.Dirs == "":
		return fromMask, nil
	case fromMask != fromDirs:
		return 0, fmt.Errorf("mask %d does not match dirs %q (%d)", fromMask, r.Dirs, fromDirs)
	}
	return fromMask, nil
}

// FromTable converts a table back to its on-disk form, with dirs filled in.
func FromTable(t *autotile.RuleTable) RuleSet {
	rs := RuleSet{
		Name:      t.Name(),
		Variants:  t.Variants(),
		Normalize: string(t.Normalize()),
	}
	for _, r := range t.Rules() {
		m := int(r.Mask)
		dirs := r.Mask.String()
		if r.Mask == autotile.MaskAll {
			dirs = "all"
		}
		rs.Rules = append(rs.Rules, RuleJSON{Mask: &m, Dirs: dirs, Variant: int(r.Variant)})
	}
	return rs
}

// LoadFile reads a rule set from disk.
func LoadFile(path string) (*autotile.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rule JSON %s: %w", path, err)
	}
	t, err := rs.Table()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
