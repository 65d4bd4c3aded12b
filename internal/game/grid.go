package game

import "math"

// defaultGridCellSize is one building footprint, roughly. Query callers
// always apply the true distance filter on top of the cell filter.
const defaultGridCellSize = 16.0

// GridEntry is one cached record in a grid cell.
type GridEntry struct {
	ID     EntityID
	Pos    Vec3
	Radius float64
}

type cellKey struct {
	cx, cz int
}

// SpatialGrid is a uniform-cell 2D index over the ground plane. It holds
// weak references only: an entity in the grid must exist in the store, or
// be pruned in the same tick.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]GridEntry
	where    map[EntityID]cellKey // recorded cell per entity

	// repairedInserts counts detected double-insert repairs; a non-zero
	// value after a run points at a refresh bug.
	repairedInserts int
}

// NewSpatialGrid creates a grid with the given cell side.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = defaultGridCellSize
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]GridEntry),
		where:    make(map[EntityID]cellKey),
	}
}

func (g *SpatialGrid) keyFor(pos Vec3) cellKey {
	return cellKey{
		cx: int(math.Floor(pos.X / g.cellSize)),
		cz: int(math.Floor(pos.Z / g.cellSize)),
	}
}

// Update inserts or moves the entity's cached record. Returns true when the
// entity changed cell (or was newly inserted). O(1) amortized.
func (g *SpatialGrid) Update(id EntityID, pos Vec3, radius float64) bool {
	nk := cellKey{
		cx: int(math.Floor(pos.X / g.cellSize)),
		cz: int(math.Floor(pos.Z / g.cellSize)),
	}

	ok, exists := g.where[id]
	if exists && ok == nk {
		// Same cell: refresh the cached tuple in place.
		bucket := g.cells[nk]
		for i := range bucket {
			if bucket[i].ID == id {
				bucket[i].Pos = pos
				bucket[i].Radius = radius
				return false
			}
		}
		// Recorded cell has no entry: repair by falling through to insert.
		g.repairedInserts++
	}
	if exists {
		g.removeFromCell(id, ok)
	}

	bucket := g.cells[nk]
	// Double inserts are a bug; detect and repair instead of duplicating.
	for i := range bucket {
		if bucket[i].ID == id {
			bucket[i].Pos = pos
			bucket[i].Radius = radius
			g.where[id] = nk
			g.repairedInserts++
			return false
		}
	}
	g.cells[nk] = append(bucket, GridEntry{ID: id, Pos: pos, Radius: radius})
	g.where[id] = nk
	return true
}

// Remove deletes the entity's record. Silently succeeds when absent.
func (g *SpatialGrid) Remove(id EntityID) {
	k, exists := g.where[id]
	if !exists {
		return
	}
	g.removeFromCell(id, k)
	delete(g.where, id)
}

func (g *SpatialGrid) removeFromCell(id EntityID, k cellKey) {
	bucket := g.cells[k]
	for i := range bucket {
		if bucket[i].ID == id {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[k] = bucket[:len(bucket)-1]
			if len(g.cells[k]) == 0 {
				delete(g.cells, k)
			}
			return
		}
	}
}

// QueryNearby appends all records in the 3x3 cell block around pos to out
// and returns it. Guaranteed complete for ranges up to one cell side when
// radii are bounded by one cell. Callers apply the true distance filter.
func (g *SpatialGrid) QueryNearby(pos Vec3, out []GridEntry) []GridEntry {
	k := g.keyFor(pos)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			out = append(out, g.cells[cellKey{k.cx + dx, k.cz + dz}]...)
		}
	}
	return out
}

// QueryRadius appends all records in the (2k+1)^2 block covering radius r
// around pos. Callers apply the true distance filter.
func (g *SpatialGrid) QueryRadius(pos Vec3, r float64, out []GridEntry) []GridEntry {
	span := int(math.Ceil(r / g.cellSize))
	if span < 1 {
		span = 1
	}
	k := g.keyFor(pos)
	for dz := -span; dz <= span; dz++ {
		for dx := -span; dx <= span; dx++ {
			out = append(out, g.cells[cellKey{k.cx + dx, k.cz + dz}]...)
		}
	}
	return out
}

// Contains reports whether the entity has a grid record.
func (g *SpatialGrid) Contains(id EntityID) bool {
	_, ok := g.where[id]
	return ok
}

// EntryFor returns the cached record for an entity.
func (g *SpatialGrid) EntryFor(id EntityID) (GridEntry, bool) {
	k, ok := g.where[id]
	if !ok {
		return GridEntry{}, false
	}
	for _, e := range g.cells[k] {
		if e.ID == id {
			return e, true
		}
	}
	return GridEntry{}, false
}

// Len returns the number of indexed entities.
func (g *SpatialGrid) Len() int {
	return len(g.where)
}

// RepairedInserts returns the count of double-insert repairs performed.
func (g *SpatialGrid) RepairedInserts() int {
	return g.repairedInserts
}
