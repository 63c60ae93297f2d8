package maps

import (
	"fmt"

	"tilemask/internal/autotile"
	"tilemask/internal/rules"
)

// Tilemap hosts a Map: it owns the per-kind tile configuration, caches the
// data applied to each cell and drains refresh requests after every edit.
type Tilemap struct {
	m       *Map
	tiles   map[autotile.Kind]*autotile.Tile
	cache   map[autotile.Position]autotile.TileData
	pending []autotile.Position
}

// NewTilemap resolves every kind's rule table from reg and computes the
// initial data for all cells. Kinds without a definition occupy cells but
// are never auto-tiled.
func NewTilemap(m *Map, reg *rules.Registry) (*Tilemap, error) {
	tm := &Tilemap{
		m:     m,
		tiles: make(map[autotile.Kind]*autotile.Tile, len(m.Kinds)),
	}
	for kind, def := range m.Kinds {
		rt, err := reg.Get(def.Rules)
		if err != nil {
			return nil, fmt.Errorf("map %q kind %q: %w", m.Name, kind, err)
		}
		tm.tiles[kind] = &autotile.Tile{
			Kind:     kind,
			Rules:    rt,
			Sprites:  def.Sprites,
			Collider: def.Collider,
		}
	}
	tm.Rebuild()
	return tm, nil
}

// Map returns the underlying grid.
func (tm *Tilemap) Map() *Map { return tm.m }

// Tile returns the auto-tile configuration for kind, or nil.
func (tm *Tilemap) Tile(kind autotile.Kind) *autotile.Tile { return tm.tiles[kind] }

// Rebuild recomputes the cached data for every cell.
func (tm *Tilemap) Rebuild() {
	tm.cache = make(map[autotile.Position]autotile.TileData)
	for r := 0; r < tm.m.Height; r++ {
		for x := 0; x < tm.m.Width; x++ {
			tm.evaluate(tm.m.PositionOf(x, r))
		}
	}
}

// RefreshTile implements autotile.Refresher. The request is queued and
// handled before the current edit returns.
func (tm *Tilemap) RefreshTile(p autotile.Position) {
	tm.pending = append(tm.pending, p)
}

// Set places kind at p and refreshes every affected cell. It returns the
// cells that were re-evaluated, starting with p itself.
func (tm *Tilemap) Set(p autotile.Position, kind autotile.Kind) ([]autotile.Position, error) {
	if kind == "" {
		return tm.Clear(p)
	}
	return tm.edit(p, kind)
}

// Clear empties p and refreshes the neighbors that held the removed kind.
func (tm *Tilemap) Clear(p autotile.Position) ([]autotile.Position, error) {
	return tm.edit(p, "")
}

func (tm *Tilemap) edit(p autotile.Position, kind autotile.Kind) ([]autotile.Position, error) {
	if !tm.m.InBounds(p) {
		return nil, fmt.Errorf("position (%d,%d,%d) outside %dx%d map", p.X, p.Y, p.Z, tm.m.Width, tm.m.Height)
	}
	old, _ := tm.m.Occupant(p)
	tm.m.setKind(p, kind)

	tm.RefreshTile(p)
	if t := tm.tiles[old]; t != nil && old != kind {
		t.RefreshTile(tm.m, tm, p)
	}
	if t := tm.tiles[kind]; t != nil {
		t.RefreshTile(tm.m, tm, p)
	}
	return tm.drain(), nil
}

// drain evaluates queued cells once each, in request order.
func (tm *Tilemap) drain() []autotile.Position {
	seen := make(map[autotile.Position]bool, len(tm.pending))
	var done []autotile.Position
	for len(tm.pending) > 0 {
		p := tm.pending[0]
		tm.pending = tm.pending[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		tm.evaluate(p)
		done = append(done, p)
	}
	tm.pending = nil
	return done
}

func (tm *Tilemap) evaluate(p autotile.Position) {
	delete(tm.cache, p)
	kind, ok := tm.m.Occupant(p)
	if !ok {
		return
	}
	t := tm.tiles[kind]
	if t == nil {
		return
	}
	if data, ok := t.TileData(tm.m, p); ok {
		tm.cache[p] = data
	}
}

// TileData returns the cached data for p. It reports false for empty cells,
// kinds without configuration and cells the tile left untouched.
func (tm *Tilemap) TileData(p autotile.Position) (autotile.TileData, bool) {
	data, ok := tm.cache[p]
	return data, ok
}

// Variant returns the variant at p computed fresh from the grid, and
// whether p holds an auto-tiled kind.
func (tm *Tilemap) Variant(p autotile.Position) (autotile.Variant, bool) {
	t := tm.occupantTile(p)
	if t == nil {
		return 0, false
	}
	return t.ComputeVariant(tm.m, p), true
}

// Mask returns the same-kind neighbor mask at p, and whether p holds an
// auto-tiled kind.
func (tm *Tilemap) Mask(p autotile.Position) (autotile.Mask, bool) {
	t := tm.occupantTile(p)
	if t == nil {
		return 0, false
	}
	return t.Mask(tm.m, p), true
}

func (tm *Tilemap) occupantTile(p autotile.Position) *autotile.Tile {
	kind, ok := tm.m.Occupant(p)
	if !ok {
		return nil
	}
	return tm.tiles[kind]
}
