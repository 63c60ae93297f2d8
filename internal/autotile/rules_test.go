package autotile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terrainTable(t *testing.T) *RuleTable {
	t.Helper()
	rt, err := NewRuleTable("terrain10", 10, NormalizeNone, []Rule{
		{11, 1}, {22, 2}, {31, 3}, {104, 4}, {107, 5},
		{208, 6}, {214, 7}, {248, 8}, {255, 9},
	})
	require.NoError(t, err)
	return rt
}

func cornerTable(t *testing.T, normalize Normalize) *RuleTable {
	t.Helper()
	rt, err := NewRuleTable("corner16", 16, normalize, []Rule{
		{11, 3}, {22, 5}, {31, 7}, {208, 12}, {214, 13},
		{248, 14}, {104, 10}, {107, 11}, {255, 15},
	})
	require.NoError(t, err)
	return rt
}

func TestResolveTerrainScenarios(t *testing.T) {
	rt := terrainTable(t)
	assert.Equal(t, Variant(1), rt.Resolve(11))
	assert.Equal(t, Variant(9), rt.Resolve(255))
	assert.Equal(t, Variant(0), rt.Resolve(0))
}

func TestResolveCornerScenarios(t *testing.T) {
	rt := cornerTable(t, NormalizeNone)
	assert.Equal(t, Variant(3), rt.Resolve(11))
	assert.Equal(t, Variant(15), rt.Resolve(255))
	assert.Equal(t, Variant(12), rt.Resolve(208))
}

func TestResolveAlwaysInRange(t *testing.T) {
	for _, rt := range []*RuleTable{terrainTable(t), cornerTable(t, NormalizeNone), cornerTable(t, NormalizeCorners)} {
		for m := 0; m < 256; m++ {
			v := rt.Resolve(Mask(m))
			require.GreaterOrEqual(t, int(v), 0, "%s mask %d", rt.Name(), m)
			require.Less(t, int(v), rt.Variants(), "%s mask %d", rt.Name(), m)
		}
	}
}

func TestResolveUnlistedMasksFallBack(t *testing.T) {
	rt := terrainTable(t)
	listed := map[Mask]bool{}
	for _, r := range rt.Rules() {
		listed[r.Mask] = true
	}
	for m := 0; m < 256; m++ {
		if listed[Mask(m)] {
			continue
		}
		assert.Equal(t, Variant(0), rt.Resolve(Mask(m)), "mask %d", m)
	}
}

func TestResolveCornersToleratesDiagonalNoise(t *testing.T) {
	strict := cornerTable(t, NormalizeNone)
	tolerant := cornerTable(t, NormalizeCorners)

	noisy := Mask(11) | MaskNE | MaskSE
	assert.Equal(t, Variant(0), strict.Resolve(noisy))
	assert.Equal(t, Variant(3), tolerant.Resolve(noisy))

	// Canonical masks resolve the same either way.
	for _, r := range strict.Rules() {
		assert.Equal(t, strict.Resolve(r.Mask), tolerant.Resolve(r.Mask), "mask %d", r.Mask)
	}
}

func TestResolveCardinalIgnoresDiagonals(t *testing.T) {
	rt, err := NewRuleTable("pipe", 16, NormalizeCardinal, []Rule{{MaskN, 1}, {MaskE, 2}, {MaskS | MaskE, 12}})
	require.NoError(t, err)

	assert.Equal(t, Variant(1), rt.Resolve(MaskN|MaskNE|MaskNW))
	assert.Equal(t, Variant(12), rt.Resolve(MaskS|MaskE|MaskSE))
	assert.Equal(t, Variant(0), rt.Resolve(MaskN|MaskE))
}

func TestNewRuleTableValidation(t *testing.T) {
	tests := []struct {
		name      string
		variants  int
		normalize Normalize
		rules     []Rule
		want      error
	}{
		{"no variants", 0, NormalizeNone, nil, ErrNoVariants},
		{"variant too large", 10, NormalizeNone, []Rule{{11, 10}}, ErrVariantRange},
		{"negative variant", 10, NormalizeNone, []Rule{{11, -1}}, ErrVariantRange},
		{"duplicate", 10, NormalizeNone, []Rule{{11, 1}, {11, 2}}, ErrDuplicateMask},
		{"diagonal in pipe", 16, NormalizeCardinal, []Rule{{11, 3}}, ErrDiagonalInCardinal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleTable("bad", tt.variants, tt.normalize, tt.rules)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRuleTableKeepsOrderAndCopies(t *testing.T) {
	in := []Rule{{255, 9}, {11, 1}}
	rt, err := NewRuleTable("order", 10, "", in)
	require.NoError(t, err)
	in[0].Variant = 2

	got := rt.Rules()
	assert.Equal(t, []Rule{{255, 9}, {11, 1}}, got)
	assert.Equal(t, NormalizeNone, rt.Normalize())

	got[0].Variant = 3
	assert.Equal(t, Variant(9), rt.Resolve(255))
}

func TestNilRuleTableResolvesZero(t *testing.T) {
	var rt *RuleTable
	assert.Equal(t, Variant(0), rt.Resolve(MaskAll))
}

func TestParseNormalize(t *testing.T) {
	for in, want := range map[string]Normalize{"": NormalizeNone, "none": NormalizeNone, "corners": NormalizeCorners, "cardinal": NormalizeCardinal} {
		got, err := ParseNormalize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseNormalize("blob")
	assert.Error(t, err)
}

func TestMustRuleTablePanics(t *testing.T) {
	assert.Panics(t, func() { MustRuleTable("bad", 0, NormalizeNone, nil) })
}
