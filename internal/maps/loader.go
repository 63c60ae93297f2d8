package maps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tilemask/internal/autotile"
	"tilemask/internal/rules"
)

// EmptyKind marks legend entries that leave the cell unoccupied.
const EmptyKind = "empty"

// KindDef configures how one tile kind is auto-tiled.
type KindDef struct {
	Rules    string
	Sprites  []string
	Collider autotile.ColliderType
}

// Map is a rectangular tile grid. Tiles are stored in rows top to bottom,
// while Positions are y-up with (0,0) at the bottom-left cell.
type Map struct {
	Name   string
	Width  int
	Height int
	Tiles  [][]int         // [row][x] legend indices
	Legend []autotile.Kind // index → kind, "" for empty
	Kinds  map[autotile.Kind]KindDef
}

// jsonMap is the on-disk JSON format.
type jsonMap struct {
	Name   string              `json:"name"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Tiles  [][]int             `json:"tiles"`
	Legend map[string]string   `json:"legend"`
	Kinds  map[string]jsonKind `json:"kinds"`
}

type jsonKind struct {
	Rules    string   `json:"rules"`
	Sprites  []string `json:"sprites"`
	Collider string   `json:"collider,omitempty"`
}

// LoadMap reads a JSON map file from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	return ParseMap(data)
}

// ParseMap decodes a map from its JSON form.
func ParseMap(data []byte) (*Map, error) {
	var jm jsonMap
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}

	// Build legend array sized to the max index
	maxIdx := 0
	for k := range jm.Legend {
		var idx int
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil || idx < 0 {
			return nil, fmt.Errorf("legend key %q is not a tile index", k)
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	legend := make([]autotile.Kind, maxIdx+1)
	for k, name := range jm.Legend {
		var idx int
		fmt.Sscanf(k, "%d", &idx)
		if name != EmptyKind {
			legend[idx] = autotile.Kind(name)
		}
	}

	// Validate tile dimensions
	if len(jm.Tiles) != jm.Height {
		return nil, fmt.Errorf("tile rows %d != declared height %d", len(jm.Tiles), jm.Height)
	}
	for y, row := range jm.Tiles {
		if len(row) != jm.Width {
			return nil, fmt.Errorf("row %d has %d tiles, expected %d", y, len(row), jm.Width)
		}
		for x, idx := range row {
			if idx < 0 || idx >= len(legend) {
				return nil, fmt.Errorf("tile (%d,%d) index %d out of legend range [0..%d]", x, y, idx, len(legend)-1)
			}
		}
	}

	kinds := make(map[autotile.Kind]KindDef, len(jm.Kinds))
	for name, jk := range jm.Kinds {
		kinds[autotile.Kind(name)] = KindDef{
			Rules:    jk.Rules,
			Sprites:  jk.Sprites,
			Collider: autotile.ParseColliderType(jk.Collider),
		}
	}

	return &Map{
		Name:   jm.Name,
		Width:  jm.Width,
		Height: jm.Height,
		Tiles:  jm.Tiles,
		Legend: legend,
		Kinds:  kinds,
	}, nil
}

// InBounds reports whether p lies on the map's z=0 layer.
func (m *Map) InBounds(p autotile.Position) bool {
	return p.Z == 0 && p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

func (m *Map) row(y int) int {
	return m.Height - 1 - y
}

// Occupant implements autotile.Grid. Out-of-bounds and empty cells are absent.
func (m *Map) Occupant(p autotile.Position) (autotile.Kind, bool) {
	if !m.InBounds(p) {
		return "", false
	}
	k := m.TileAt(p.X, m.row(p.Y))
	return k, k != ""
}

// TileAt returns the kind at column x of row r, counting rows from the top.
// Returns "" for out-of-bounds coordinates and empty cells.
func (m *Map) TileAt(x, r int) autotile.Kind {
	if x < 0 || x >= m.Width || r < 0 || r >= m.Height {
		return ""
	}
	idx := m.Tiles[r][x]
	if idx < 0 || idx >= len(m.Legend) {
		return ""
	}
	return m.Legend[idx]
}

// PositionOf converts a top-down (x, row) pair into a y-up Position.
func (m *Map) PositionOf(x, r int) autotile.Position {
	return autotile.Position{X: x, Y: m.row(r)}
}

// setKind writes kind (or "" for empty) at p, growing the legend if needed.
func (m *Map) setKind(p autotile.Position, kind autotile.Kind) {
	idx := -1
	for i, k := range m.Legend {
		if k == kind {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = len(m.Legend)
		m.Legend = append(m.Legend, kind)
	}
	m.Tiles[m.row(p.Y)][p.X] = idx
}

// LoadMaps scans a directory for *.json files, loads each as a Map,
// and returns them indexed by Name.
func LoadMaps(dir string) (map[string]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}

	allMaps := make(map[string]*Map)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		m, err := LoadMap(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		if _, exists := allMaps[m.Name]; exists {
			return nil, fmt.Errorf("duplicate map name %q in %s", m.Name, entry.Name())
		}
		allMaps[m.Name] = m
	}

	return allMaps, nil
}

// DefaultMap returns a small fallback map if no JSON file is available: a
// grass field with a pond, using the terrain and corner rule sets.
func DefaultMap() *Map {
	w, h := 16, 10
	tiles := make([][]int, h)
	for y := 0; y < h; y++ {
		tiles[y] = make([]int, w)
		for x := 0; x < w; x++ {
			switch {
			case x >= 2 && x < 9 && y >= 2 && y < 8:
				tiles[y][x] = 1 // grass
			case x >= 10 && x < 14 && y >= 3 && y < 7:
				tiles[y][x] = 2 // water
			}
		}
	}

	return &Map{
		Name:   "Default",
		Width:  w,
		Height: h,
		Tiles:  tiles,
		Legend: []autotile.Kind{"", "grass", "water"},
		Kinds: map[autotile.Kind]KindDef{
			"grass": {Rules: rules.Terrain10, Sprites: numberedSprites("grass", 10), Collider: autotile.ColliderNone},
			"water": {Rules: rules.Corner16, Sprites: numberedSprites("water", 16), Collider: autotile.ColliderGrid},
		},
	}
}

func numberedSprites(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s_%d", prefix, i)
	}
	return out
}
