// Package world keeps the named tilemaps served to inspector sessions.
package world

import (
	"fmt"
	"sort"
	"sync"

	"tilemask/internal/autotile"
	"tilemask/internal/maps"
	"tilemask/internal/rules"
)

// World wraps multiple Tilemaps. Every call takes the lock, so edits from
// concurrent sessions are applied one at a time.
type World struct {
	mu    sync.Mutex
	maps  map[string]*maps.Tilemap
	rules *rules.Registry
}

// Cell is one entry of a Snapshot.
type Cell struct {
	Kind    autotile.Kind
	Mask    autotile.Mask
	Variant autotile.Variant
	Tiled   bool // kind is auto-tiled and a sprite was assigned
}

// Snapshot is a copy of a map's state, rows top to bottom.
type Snapshot struct {
	Name   string
	Width  int
	Height int
	Cells  [][]Cell
}

// New builds a tilemap for every map using reg for rule lookups.
func New(allMaps map[string]*maps.Map, reg *rules.Registry) (*World, error) {
	w := &World{maps: make(map[string]*maps.Tilemap, len(allMaps)), rules: reg}
	for name, m := range allMaps {
		tm, err := maps.NewTilemap(m, reg)
		if err != nil {
			return nil, err
		}
		w.maps[name] = tm
	}
	return w, nil
}

// Rules returns the rule registry the world was built with.
func (w *World) Rules() *rules.Registry { return w.rules }

// Names returns the map names, sorted.
func (w *World) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.maps))
	for name := range w.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *World) get(name string) (*maps.Tilemap, error) {
	tm, ok := w.maps[name]
	if !ok {
		return nil, fmt.Errorf("unknown map %q", name)
	}
	return tm, nil
}

// Set places kind at p on the named map and returns the refreshed cells.
func (w *World) Set(name string, p autotile.Position, kind autotile.Kind) ([]autotile.Position, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tm, err := w.get(name)
	if err != nil {
		return nil, err
	}
	return tm.Set(p, kind)
}

// Clear empties p on the named map and returns the refreshed cells.
func (w *World) Clear(name string, p autotile.Position) ([]autotile.Position, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tm, err := w.get(name)
	if err != nil {
		return nil, err
	}
	return tm.Clear(p)
}

// Snapshot copies the named map's kinds, masks and variants.
func (w *World) Snapshot(name string) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tm, err := w.get(name)
	if err != nil {
		return Snapshot{}, err
	}

	m := tm.Map()
	snap := Snapshot{Name: name, Width: m.Width, Height: m.Height, Cells: make([][]Cell, m.Height)}
	for r := 0; r < m.Height; r++ {
		snap.Cells[r] = make([]Cell, m.Width)
		for x := 0; x < m.Width; x++ {
			p := m.PositionOf(x, r)
			c := Cell{Kind: m.TileAt(x, r)}
			if mask, ok := tm.Mask(p); ok {
				c.Mask = mask
			}
			if data, ok := tm.TileData(p); ok {
				c.Variant = data.Variant
				c.Tiled = true
			}
			snap.Cells[r][x] = c
		}
	}
	return snap, nil
}
