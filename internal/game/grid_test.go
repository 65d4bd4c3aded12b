package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGridUpdateAndQuery(t *testing.T) {
	g := NewSpatialGrid(16)

	require.True(t, g.Update(1, Vec3{X: 5, Z: 5}, 1))
	require.True(t, g.Update(2, Vec3{X: 100, Z: 100}, 1))
	require.Equal(t, 2, g.Len())

	out := g.QueryNearby(Vec3{X: 4, Z: 4}, nil)
	require.Len(t, out, 1)
	require.Equal(t, EntityID(1), out[0].ID)

	// Same-cell refresh is an in-place update, not a cell move.
	require.False(t, g.Update(1, Vec3{X: 6, Z: 6}, 1))
	e, ok := g.EntryFor(1)
	require.True(t, ok)
	require.Equal(t, 6.0, e.Pos.X)

	// Crossing a cell boundary moves the record.
	require.True(t, g.Update(1, Vec3{X: 40, Z: 40}, 1))
	out = g.QueryNearby(Vec3{X: 4, Z: 4}, nil)
	require.Empty(t, out)
	out = g.QueryNearby(Vec3{X: 40, Z: 40}, nil)
	require.Len(t, out, 1)
}

func TestGridQueryRadiusCoversWideRanges(t *testing.T) {
	g := NewSpatialGrid(16)
	g.Update(1, Vec3{X: 60, Z: 0}, 1) // ~4 cells away

	require.Empty(t, g.QueryNearby(Vec3{}, nil))
	out := g.QueryRadius(Vec3{}, 64, nil)
	require.Len(t, out, 1)
}

func TestGridRemove(t *testing.T) {
	g := NewSpatialGrid(16)
	g.Update(7, Vec3{X: 1, Z: 1}, 1)
	g.Remove(7)
	require.False(t, g.Contains(7))
	require.Equal(t, 0, g.Len())

	// Removing an absent entity is silently fine.
	g.Remove(7)
	require.Equal(t, 0, g.RepairedInserts())
}

func TestGridNegativeCoordinates(t *testing.T) {
	g := NewSpatialGrid(16)
	g.Update(1, Vec3{X: -1, Z: -1}, 1)
	g.Update(2, Vec3{X: 1, Z: 1}, 1)

	// Both sit in adjacent cells around the origin; a nearby query at the
	// origin must see both.
	out := g.QueryNearby(Vec3{}, nil)
	require.Len(t, out, 2)
}
