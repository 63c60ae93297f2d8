package autotile

import (
	"errors"
	"fmt"
)

// Variant selects one sprite from a tile kind's ordered sprite list.
// Variant 0 doubles as the fallback for unrecognized masks.
type Variant int

// Normalize controls how a mask is reduced before the table lookup.
type Normalize string

const (
	// NormalizeNone looks the raw mask up.
	NormalizeNone Normalize = "none"
	// NormalizeCorners clears diagonals not backed by both adjacent cardinals.
	NormalizeCorners Normalize = "corners"
	// NormalizeCardinal keeps only N, W, E and S.
	NormalizeCardinal Normalize = "cardinal"
)

// ParseNormalize accepts "", "none", "corners" or "cardinal".
func ParseNormalize(s string) (Normalize, error) {
	switch Normalize(s) {
	case "", NormalizeNone:
		return NormalizeNone, nil
	case NormalizeCorners, NormalizeCardinal:
		return Normalize(s), nil
	}
	return "", fmt.Errorf("unknown normalize mode %q", s)
}

// Apply reduces m according to the mode.
func (n Normalize) Apply(m Mask) Mask {
	switch n {
	case NormalizeCorners:
		return normalizeCorners(m)
	case NormalizeCardinal:
		return m & MaskCardinals
	}
	return m
}

// Rule maps one mask to a variant.
type Rule struct {
	Mask    Mask
	Variant Variant
}

var (
	ErrNoVariants         = errors.New("rule table needs at least one variant")
	ErrVariantRange       = errors.New("variant out of range")
	ErrDuplicateMask      = errors.New("duplicate mask")
	ErrDiagonalInCardinal = errors.New("diagonal bits in cardinal rule table")
)

// RuleTable is one tileset's auto-tiling behavior. It is immutable once built
// and safe to share between tile kinds.
type RuleTable struct {
	name      string
	variants  int
	normalize Normalize
	rules     []Rule
	lookup    [256]Variant
}

// NewRuleTable validates rules and precomputes the lookup for every mask.
func NewRuleTable(name string, variants int, normalize Normalize, rules []Rule) (*RuleTable, error) {
	if variants <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoVariants)
	}
	if normalize == "" {
		normalize = NormalizeNone
	}

	seen := make(map[Mask]bool, len(rules))
	for _, r := range rules {
		if r.Variant < 0 || int(r.Variant) >= variants {
			return nil, fmt.Errorf("%s: mask %d -> %d of %d: %w", name, r.Mask, r.Variant, variants, ErrVariantRange)
		}
		if seen[r.Mask] {
			return nil, fmt.Errorf("%s: mask %d (%s): %w", name, r.Mask, r.Mask, ErrDuplicateMask)
		}
		if normalize == NormalizeCardinal && r.Mask&^MaskCardinals != 0 {
			return nil, fmt.Errorf("%s: mask %d (%s): %w", name, r.Mask, r.Mask, ErrDiagonalInCardinal)
		}
		seen[r.Mask] = true
	}

	t := &RuleTable{
		name:      name,
		variants:  variants,
		normalize: normalize,
		rules:     append([]Rule(nil), rules...),
	}
	exact := make(map[Mask]Variant, len(rules))
	for _, r := range rules {
		exact[r.Mask] = r.Variant
	}
	for m := 0; m < 256; m++ {
		t.lookup[m] = exact[normalize.Apply(Mask(m))]
	}
	return t, nil
}

// MustRuleTable is NewRuleTable that panics on invalid input.
func MustRuleTable(name string, variants int, normalize Normalize, rules []Rule) *RuleTable {
	t, err := NewRuleTable(name, variants, normalize, rules)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's name.
func (t *RuleTable) Name() string { return t.name }

// Variants returns the size of the variant sequence the table indexes.
func (t *RuleTable) Variants() int { return t.variants }

// Normalize returns the table's normalization mode.
func (t *RuleTable) Normalize() Normalize { return t.normalize }

// Rules returns a copy of the entries in their configured order.
func (t *RuleTable) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Resolve maps a mask to its variant. Unlisted masks resolve to 0.
func (t *RuleTable) Resolve(m Mask) Variant {
	if t == nil {
		return 0
	}
	return t.lookup[m]
}
