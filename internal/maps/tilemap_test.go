package maps

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"tilemask/internal/autotile"
	"tilemask/internal/rules"
)

func testTilemap(t *testing.T, grid [][]string) *Tilemap {
	t.Helper()
	m := buildTestMap(grid)
	m.Kinds["g"] = KindDef{Rules: rules.Terrain10, Sprites: numberedSprites("g", 10)}
	m.Kinds["w"] = KindDef{Rules: rules.Corner16, Sprites: numberedSprites("w", 16), Collider: autotile.ColliderGrid}
	tm, err := NewTilemap(m, rules.MustBuiltin())
	if err != nil {
		t.Fatalf("NewTilemap: %v", err)
	}
	return tm
}

func pos(x, y int) autotile.Position { return autotile.Position{X: x, Y: y} }

func TestTilemapInitialVariants(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"g", "g", "w", "w"},
		{"g", "g", "w", "w"},
	})

	tests := []struct {
		name     string
		p        autotile.Position
		expected autotile.Variant
		sprite   string
	}{
		{"grass top-left", pos(0, 1), 6, "g_6"},
		{"grass bottom-right", pos(1, 0), 1, "g_1"},
		{"water top-left", pos(2, 1), 12, "w_12"},
		{"water bottom-right", pos(3, 0), 3, "w_3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tm.Variant(tt.p)
			if !ok || v != tt.expected {
				t.Errorf("Variant(%v) = %d, %v; want %d", tt.p, v, ok, tt.expected)
			}
			data, ok := tm.TileData(tt.p)
			if !ok || data.Sprite != tt.sprite {
				t.Errorf("TileData(%v) = %+v, %v; want sprite %s", tt.p, data, ok, tt.sprite)
			}
		})
	}

	data, _ := tm.TileData(pos(3, 0))
	if data.Collider != autotile.ColliderGrid {
		t.Errorf("water collider = %v, want grid", data.Collider)
	}
}

func TestTilemapSetRefreshesSameKindNeighbors(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"g", "g", "."},
		{"g", "g", "."},
		{"w", ".", "."},
	})

	if v, _ := tm.Variant(pos(1, 1)); v != 1 {
		t.Fatalf("before: Variant(1,1) = %d, want 1", v)
	}

	refreshed, err := tm.Set(pos(2, 1), "g")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	// The cell itself, then same-kind neighbors in bit order. The water at
	// (0,0) is not a neighbor of (2,1) and is never touched.
	want := []autotile.Position{pos(2, 1), pos(1, 2), pos(1, 1)}
	if !reflect.DeepEqual(refreshed, want) {
		t.Errorf("refreshed = %v, want %v", refreshed, want)
	}

	// (1,1) now has nw n w e: not a listed mask.
	if data, ok := tm.TileData(pos(1, 1)); !ok || data.Variant != 0 {
		t.Errorf("after: TileData(1,1) = %+v, %v; want variant 0", data, ok)
	}
	if m, _ := tm.Mask(pos(1, 1)); m != autotile.MaskNW|autotile.MaskN|autotile.MaskW|autotile.MaskE {
		t.Errorf("after: Mask(1,1) = %s", m)
	}
}

func TestTilemapSetSkipsOtherKinds(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"w", "w", "."},
		{"w", "w", "."},
	})
	refreshed, err := tm.Set(pos(2, 0), "g")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !reflect.DeepEqual(refreshed, []autotile.Position{pos(2, 0)}) {
		t.Errorf("refreshed = %v, want only the placed cell", refreshed)
	}
}

func TestTilemapClearRefreshesRemovedKind(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"g", "g"},
		{"g", "g"},
	})
	refreshed, err := tm.Clear(pos(1, 1))
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	want := []autotile.Position{pos(1, 1), pos(0, 1), pos(0, 0), pos(1, 0)}
	if !reflect.DeepEqual(refreshed, want) {
		t.Errorf("refreshed = %v, want %v", refreshed, want)
	}
	if _, ok := tm.TileData(pos(1, 1)); ok {
		t.Error("cleared cell should have no data")
	}
	if _, ok := tm.Variant(pos(1, 1)); ok {
		t.Error("cleared cell should have no variant")
	}
	// (0,0) lost its NE neighbor: n e only → mask 18, unlisted.
	if v, _ := tm.Variant(pos(0, 0)); v != 0 {
		t.Errorf("Variant(0,0) = %d, want 0", v)
	}
}

func TestTilemapReplaceKind(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"g", "g"},
		{"g", "w"},
	})
	refreshed, err := tm.Set(pos(1, 0), "g")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(refreshed) != 4 {
		t.Errorf("refreshed = %v, want the cell and its three grass neighbors", refreshed)
	}
	if v, _ := tm.Variant(pos(1, 0)); v != 1 {
		t.Errorf("Variant(1,0) = %d, want 1", v)
	}
	if data, _ := tm.TileData(pos(0, 1)); data.Variant != 6 {
		t.Errorf("TileData(0,1) = %+v, want variant 6", data)
	}
}

func TestTilemapCacheMatchesFreshCompute(t *testing.T) {
	tm := testTilemap(t, [][]string{
		{"g", "g", "g", "."},
		{"g", "g", "g", "."},
		{"g", "g", "g", "w"},
	})
	edits := []struct {
		p    autotile.Position
		kind autotile.Kind
	}{
		{pos(3, 2), "g"}, {pos(1, 1), ""}, {pos(3, 0), "g"}, {pos(1, 1), "w"}, {pos(0, 0), ""},
	}
	for _, e := range edits {
		if _, err := tm.Set(e.p, e.kind); err != nil {
			t.Fatalf("Set(%v, %q): %v", e.p, e.kind, err)
		}
	}

	cached := tm.cache
	tm.Rebuild()
	if !reflect.DeepEqual(cached, tm.cache) {
		t.Errorf("incremental cache diverged from rebuild:\n%v\n%v", cached, tm.cache)
	}
}

func TestTilemapErrors(t *testing.T) {
	tm := testTilemap(t, [][]string{{"g"}})
	if _, err := tm.Set(pos(1, 0), "g"); err == nil {
		t.Error("expected out-of-bounds error")
	}
	if _, err := tm.Clear(autotile.Position{Z: 2}); err == nil {
		t.Error("expected error on another z layer")
	}

	m := buildTestMap([][]string{{"g"}})
	m.Kinds["g"] = KindDef{Rules: "blob47"}
	if _, err := NewTilemap(m, rules.MustBuiltin()); !errors.Is(err, rules.ErrUnknownRules) {
		t.Errorf("NewTilemap err = %v, want ErrUnknownRules", err)
	}
}

func TestTilemapUnconfiguredKind(t *testing.T) {
	tm := testTilemap(t, [][]string{{"rock", "g"}})
	if _, ok := tm.Variant(pos(0, 0)); ok {
		t.Error("unconfigured kind should have no variant")
	}
	if _, ok := tm.TileData(pos(0, 0)); ok {
		t.Error("unconfigured kind should have no data")
	}
	if tm.Tile("rock") != nil || tm.Tile("g") == nil {
		t.Error("Tile lookup mismatch")
	}
}

func TestTilemapEmptySpritesNoop(t *testing.T) {
	m := buildTestMap([][]string{{"g", "g"}})
	m.Kinds["g"] = KindDef{Rules: rules.Terrain10}
	tm, err := NewTilemap(m, rules.MustBuiltin())
	if err != nil {
		t.Fatalf("NewTilemap: %v", err)
	}
	if _, ok := tm.TileData(pos(0, 0)); ok {
		t.Error("kind with no sprites should leave cells untouched")
	}
	if v, ok := tm.Variant(pos(0, 0)); !ok || v != 0 {
		t.Errorf("Variant = %d, %v; want 0, true", v, ok)
	}
}

func TestTilemapMeadowWithCustomRules(t *testing.T) {
	reg, err := rules.LoadDir(filepath.Join("..", "..", "assets", "rules"))
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	m, err := LoadMap(filepath.Join("..", "..", "assets", "maps", "meadow.json"))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	tm, err := NewTilemap(m, reg)
	if err != nil {
		t.Fatalf("NewTilemap: %v", err)
	}

	tests := []struct {
		name   string
		p      autotile.Position
		sprite string
	}{
		{"fence west end", pos(1, 2), "fence_end_w"},
		{"fence rail", pos(4, 2), "fence_rail"},
		{"fence tee", pos(3, 2), "fence_tee_s"},
		{"fence corner falls back", pos(7, 2), "fence_post"},
		{"grass top-left", pos(1, 6), "grass_6"},
		{"water center", pos(8, 5), "water_15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok := tm.TileData(tt.p)
			if !ok || data.Sprite != tt.sprite {
				t.Errorf("TileData(%v) = %+v, %v; want %s", tt.p, data, ok, tt.sprite)
			}
		})
	}
	if _, ok := tm.TileData(pos(9, 0)); ok {
		t.Error("rock has no rules and should stay untiled")
	}
}
