package game

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Vision runs early in the tick and caches, per unit, the hostile entities
// inside its sight radius. Intel, targeting, and tactics all read the cache
// instead of re-querying the grid.
//
// The pass is read-only over the store and the grid, and each worker writes
// only its own units' VisionState, so the shards run in parallel.

// visionParallelMin is the unit count below which the serial path is cheaper
// than spinning up a group.
const visionParallelMin = 64

func (w *World) updateVision() {
	var ids []EntityID
	for _, id := range w.ids {
		if w.visions[id] != nil && w.units[id] != nil && w.transforms[id] != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	if len(ids) < visionParallelMin {
		w.visionPass(ids)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(ids) {
		workers = len(ids)
	}
	chunk := (len(ids) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(ids); start += chunk {
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}
		shard := ids[start:end]
		g.Go(func() error {
			w.visionPass(shard)
			return nil
		})
	}
	_ = g.Wait() // shards never return errors
}

func (w *World) visionPass(ids []EntityID) {
	var scratch []GridEntry
	for _, id := range ids {
		u := w.units[id]
		tr := w.transforms[id]
		v := w.visions[id]
		sight := w.Tables.Unit(u.Type).Sight

		v.Visible = v.Visible[:0]
		scratch = scratch[:0]
		scratch = w.grid.QueryRadius(tr.Pos, sight, scratch)
		for _, e := range scratch {
			if e.ID == id || !w.alive[e.ID] {
				continue
			}
			owner, ok := w.ownerOf(e.ID)
			if !ok || !isHostile(u.Player, owner) {
				continue
			}
			if tr.Pos.DistXZ(e.Pos) > sight {
				continue
			}
			v.Visible = append(v.Visible, e.ID)
		}
		sort.Slice(v.Visible, func(i, j int) bool { return v.Visible[i] < v.Visible[j] })
	}
}

// ownerOf returns the owning player of a unit, building, or site.
func (w *World) ownerOf(id EntityID) (PlayerID, bool) {
	if u := w.units[id]; u != nil {
		return u.Player, true
	}
	if b := w.buildings[id]; b != nil {
		return b.Player, true
	}
	if s := w.sites[id]; s != nil {
		return s.Player, true
	}
	return NeutralPlayer, false
}
