// Package autotile computes neighbor bitmasks for placed tiles and maps them
// to sprite variants through swappable rule tables.
package autotile

import (
	"fmt"
	"strings"
)

// Position addresses a grid cell. Y grows to the north. Z is carried through
// but never varied when sampling neighbors.
type Position struct {
	X, Y, Z int
}

// Add returns p offset by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

// Mask is the 8-bit occupancy pattern of a cell's neighbors.
type Mask uint8

// Neighbor bits. The layout is fixed; rule tables are written against it.
const (
	MaskNW Mask = 1 << iota // 1
	MaskN                   // 2
	MaskNE                  // 4
	MaskW                   // 8
	MaskE                   // 16
	MaskSW                  // 32
	MaskS                   // 64
	MaskSE                  // 128
)

// MaskCardinals holds the four orthogonal bits.
const MaskCardinals = MaskN | MaskW | MaskE | MaskS

// MaskAll has every neighbor set.
const MaskAll Mask = 0xFF

// Neighbor pairs a grid offset with the bit it sets.
type Neighbor struct {
	Offset Position
	Bit    Mask
	Name   string
}

// Neighbors lists the eight sampled offsets in bit order.
var Neighbors = [8]Neighbor{
	{Position{X: -1, Y: 1}, MaskNW, "nw"},
	{Position{X: 0, Y: 1}, MaskN, "n"},
	{Position{X: 1, Y: 1}, MaskNE, "ne"},
	{Position{X: -1, Y: 0}, MaskW, "w"},
	{Position{X: 1, Y: 0}, MaskE, "e"},
	{Position{X: -1, Y: -1}, MaskSW, "sw"},
	{Position{X: 0, Y: -1}, MaskS, "s"},
	{Position{X: 1, Y: -1}, MaskSE, "se"},
}

// BuildMask samples the eight neighbors of p. A bit is set iff same reports
// true for that neighbor; cells the predicate does not know about are absent.
func BuildMask(p Position, same func(Position) bool) Mask {
	var mask Mask
	for _, n := range Neighbors {
		if same(p.Add(n.Offset)) {
			mask |= n.Bit
		}
	}
	return mask
}

// Has reports whether every bit in bits is set.
func (m Mask) Has(bits Mask) bool {
	return m&bits == bits
}

// String returns the set directions joined by "|", or "0" for an empty mask.
func (m Mask) String() string {
	if m == 0 {
		return "0"
	}
	return strings.Join(m.Dirs(), "|")
}

// Dirs returns the names of the set bits in bit order.
func (m Mask) Dirs() []string {
	var dirs []string
	for _, n := range Neighbors {
		if m&n.Bit != 0 {
			dirs = append(dirs, n.Name)
		}
	}
	return dirs
}

// ParseMask reads a direction list such as "nw n w" or "nw|n|w". "all"
// sets every bit. Direction names are case-insensitive; repeats are allowed.
func ParseMask(s string) (Mask, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '|' || r == ',' || r == '\t'
	})
	var mask Mask
	for _, f := range fields {
		f = strings.ToLower(f)
		switch f {
		case "0":
			continue
		case "all":
			mask = MaskAll
			continue
		}
		bit, ok := dirBits[f]
		if !ok {
			return 0, fmt.Errorf("unknown direction %q", f)
		}
		mask |= bit
	}
	return mask, nil
}

var dirBits = func() map[string]Mask {
	m := make(map[string]Mask, len(Neighbors))
	for _, n := range Neighbors {
		m[n.Name] = n.Bit
	}
	return m
}()

// normalizeCorners drops each diagonal bit whose two adjacent cardinals are
// not both set.
func normalizeCorners(m Mask) Mask {
	if !m.Has(MaskN | MaskW) {
		m &^= MaskNW
	}
	if !m.Has(MaskN | MaskE) {
		m &^= MaskNE
	}
	if !m.Has(MaskS | MaskW) {
		m &^= MaskSW
	}
	if !m.Has(MaskS | MaskE) {
		m &^= MaskSE
	}
	return m
}
