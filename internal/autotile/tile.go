package autotile

// Kind identifies a tile type. Two cells take part in each other's masks
// only when their kinds are equal.
type Kind string

// Grid is the host's read-only view of placed tiles.
type Grid interface {
	// Occupant returns the kind at p, or false when the cell is empty or
	// outside the grid.
	Occupant(p Position) (Kind, bool)
}

// Refresher is implemented by hosts that re-evaluate cells on request.
// When the re-evaluation happens is up to the host.
type Refresher interface {
	RefreshTile(p Position)
}

// ColliderType is passed through to the host untouched.
type ColliderType int

const (
	ColliderNone ColliderType = iota
	ColliderSprite
	ColliderGrid
)

var colliderNames = [...]string{"none", "sprite", "grid"}

func (c ColliderType) String() string {
	if c < 0 || int(c) >= len(colliderNames) {
		return "none"
	}
	return colliderNames[c]
}

// ParseColliderType maps "none", "sprite" or "grid" to a ColliderType.
// Anything else, including "", is ColliderNone.
func ParseColliderType(s string) ColliderType {
	for i, n := range colliderNames {
		if n == s {
			return ColliderType(i)
		}
	}
	return ColliderNone
}

// Tile is the per-kind configuration: which rule table picks the variant
// and which sprite each variant shows.
type Tile struct {
	Kind     Kind
	Rules    *RuleTable
	Sprites  []string
	Collider ColliderType
}

// TileData is what the host applies to a cell.
type TileData struct {
	Mask     Mask
	Variant  Variant
	Sprite   string
	Collider ColliderType
}

func (t *Tile) same(g Grid) func(Position) bool {
	return func(p Position) bool {
		k, ok := g.Occupant(p)
		return ok && k == t.Kind
	}
}

// Mask returns the same-kind neighbor mask at p.
func (t *Tile) Mask(g Grid, p Position) Mask {
	return BuildMask(p, t.same(g))
}

// ComputeVariant resolves the variant for the cell at p. Results that fall
// outside the sprite list come back as 0.
func (t *Tile) ComputeVariant(g Grid, p Position) Variant {
	v := t.Rules.Resolve(t.Mask(g, p))
	if len(t.Sprites) > 0 && int(v) >= len(t.Sprites) {
		return 0
	}
	return v
}

// TileData returns the data to apply at p. It reports false, and the host
// should leave the cell's visual alone, when there are no sprites or when
// the cell is not occupied by this kind.
func (t *Tile) TileData(g Grid, p Position) (TileData, bool) {
	if len(t.Sprites) == 0 {
		return TileData{}, false
	}
	if !t.same(g)(p) {
		return TileData{}, false
	}
	mask := t.Mask(g, p)
	v := t.Rules.Resolve(mask)
	if v < 0 || int(v) >= len(t.Sprites) {
		return TileData{}, false
	}
	return TileData{
		Mask:     mask,
		Variant:  v,
		Sprite:   t.Sprites[v],
		Collider: t.Collider,
	}, true
}

// NeighborsToRefresh returns the neighbors of p currently holding this
// kind, in bit order. Other kinds never read this kind's cells, so they
// are left out.
func (t *Tile) NeighborsToRefresh(g Grid, p Position) []Position {
	same := t.same(g)
	var out []Position
	for _, n := range Neighbors {
		np := p.Add(n.Offset)
		if same(np) {
			out = append(out, np)
		}
	}
	return out
}

// RefreshTile asks r to re-evaluate every same-kind neighbor of p.
func (t *Tile) RefreshTile(g Grid, r Refresher, p Position) {
	for _, np := range t.NeighborsToRefresh(g, p) {
		r.RefreshTile(np)
	}
}
