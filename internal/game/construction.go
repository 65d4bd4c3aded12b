package game

import "math"

// Construction: a placed site debits the cost immediately, waits for its
// assigned worker, then fills at the global build rate until it flips into
// a completed building.

const (
	buildReach = 2.0

	// nearResourceDist is how close a "near resource" building must be
	// placed to some source.
	nearResourceDist = 40.0
)

// PlaceBuilding validates placement, debits the cost, creates the site, and
// assigns the worker. The worker walks over and builds. A worker already
// building elsewhere is pulled off that site first.
func (w *World) PlaceBuilding(p PlayerID, bt BuildingType, pos Vec3, worker EntityID) (EntityID, error) {
	pl := w.players[p]
	if pl == nil {
		return 0, ErrInvalidTarget
	}
	u := w.units[worker]
	if u == nil || u.Player != p || w.gatherers[worker] == nil {
		return 0, ErrInvalidTarget
	}
	st := w.Tables.Building(bt)
	if !w.PlacementOK(bt, pos) {
		return 0, ErrNoPlacement
	}
	if !pl.Debit(st.Cost) {
		return 0, ErrCannotAfford
	}

	w.CancelConstruction(worker)
	site := w.SpawnSite(p, bt, pos)
	if err := w.AssignBuilder(site, worker); err != nil {
		return 0, err
	}
	w.events.Add(w.tick, int64(site), "construction", "placed", bt.String())
	return site, nil
}

// AssignBuilder reserves an unclaimed site for a worker and sends it over.
// Used at placement and to resume a site whose builder died; any progress
// already on the site is kept.
func (w *World) AssignBuilder(site, worker EntityID) error {
	s := w.sites[site]
	if s == nil || !w.alive[site] || s.Reserved {
		return ErrInvalidTarget
	}
	u := w.units[worker]
	if u == nil || u.Player != s.Player || w.gatherers[worker] == nil || w.tasks[worker] != nil {
		return ErrInvalidTarget
	}
	tr := w.transforms[site]
	s.Worker = worker
	s.Reserved = true
	w.MarkChanged(kindSite, site)

	w.StopGathering(worker)
	w.attachConstruction(worker, &ConstructionTask{
		Site:         site,
		Building:     s.Type,
		TargetPos:    tr.Pos,
		MovingToSite: true,
		TotalTime:    w.Tables.Building(s.Type).BuildTime,
	})
	w.SetMoveTarget(worker, tr.Pos)
	return nil
}

// CancelConstruction detaches a worker's build task and releases the site's
// reservation. The site keeps its progress and can be reassigned; the
// debited cost stays spent.
func (w *World) CancelConstruction(worker EntityID) {
	task := w.tasks[worker]
	if task == nil {
		return
	}
	if s := w.sites[task.Site]; s != nil && s.Worker == worker {
		s.Worker = 0
		s.Reserved = false
		w.MarkChanged(kindSite, task.Site)
	}
	w.detachConstruction(worker)
	w.ClearMoveTarget(worker)
}

// PlacementOK checks bounds, static overlap with spacing, and the
// near-resource requirement for storage-class buildings.
func (w *World) PlacementOK(bt BuildingType, pos Vec3) bool {
	st := w.Tables.Building(bt)
	if math.Abs(pos.X) > worldBound || math.Abs(pos.Z) > worldBound {
		return false
	}
	spacing := st.MinSpacing
	if spacing < st.Radius {
		spacing = st.Radius
	}
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pos, spacing+defaultGridCellSize, scratch)
	for _, e := range scratch {
		if !w.alive[e.ID] {
			continue
		}
		col := w.colliders[e.ID]
		if col == nil {
			continue
		}
		clearance := st.Radius + col.Radius
		switch {
		case w.buildings[e.ID] != nil || w.sites[e.ID] != nil:
			clearance = spacing + col.Radius
		case w.obstacles[e.ID] != nil:
			clearance += obstacleMargin(w.obstacles[e.ID].Kind)
		case col.Class != CollideStatic:
			// Units block placement only at direct overlap.
		}
		if pos.DistXZ(e.Pos) < clearance {
			return false
		}
	}
	if st.NearResource {
		near := false
		scratch = scratch[:0]
		scratch = w.grid.QueryRadius(pos, nearResourceDist, scratch)
		for _, e := range scratch {
			if src := w.resources[e.ID]; src != nil && !src.Depleted() &&
				pos.DistXZ(e.Pos) <= nearResourceDist {
				near = true
				break
			}
		}
		if !near {
			return false
		}
	}
	return true
}

func (w *World) advanceConstruction(dt float64) {
	w.releaseOrphanedSites()
	rate := w.Tables.Balance.BuildRate
	for _, id := range w.ids {
		task := w.tasks[id]
		if task == nil {
			continue
		}
		if h := w.healths[id]; h != nil && h.Dying {
			continue
		}
		site := w.sites[task.Site]
		if site == nil || !w.alive[task.Site] {
			// Site destroyed or already finished under us.
			w.detachConstruction(id)
			continue
		}

		if task.MovingToSite {
			if !w.withinReach(id, task.Site, buildReach) {
				if k := w.kinematics[id]; k != nil && !k.HasTarget {
					w.SetMoveTarget(id, task.TargetPos)
				}
				continue
			}
			task.MovingToSite = false
			site.Started = true
			w.ClearMoveTarget(id)
			w.events.Add(w.tick, int64(task.Site), "construction", "started", task.Building.String())
		}

		site.Progress += rate * dt
		w.MarkChanged(kindSite, task.Site)
		if site.Progress < task.TotalTime {
			continue
		}

		// Done: the site becomes a completed building at the next flush.
		player := site.Player
		bt := site.Type
		pos := w.transforms[task.Site].Pos
		w.Despawn(task.Site)
		w.detachConstruction(id)
		w.deferSpawn(func(wd *World) {
			nid := wd.SpawnBuilding(player, bt, pos, true)
			wd.events.Add(wd.tick, int64(nid), "construction", "complete", bt.String())
		})
	}
}

// releaseOrphanedSites drops reservations whose builder is dead, dying, or
// no longer tasked with the site, so the site can be reassigned instead of
// dangling forever on a stale worker reference.
func (w *World) releaseOrphanedSites() {
	for _, id := range w.ids {
		s := w.sites[id]
		if s == nil || !s.Reserved {
			continue
		}
		task := w.tasks[s.Worker]
		h := w.healths[s.Worker]
		if w.alive[s.Worker] && (h == nil || !h.Dying) && task != nil && task.Site == id {
			continue
		}
		s.Worker = 0
		s.Reserved = false
		w.MarkChanged(kindSite, id)
		w.events.Add(w.tick, int64(id), "construction", "builder_lost", s.Type.String())
	}
}

// obstacleMargin gives soft clutter a wider berth than plain rocks so
// buildings never visually clip into canopy.
func obstacleMargin(k ObstacleKind) float64 {
	switch k {
	case ObstacleMushroom, ObstacleTree:
		return 3.0
	default:
		return 1.0
	}
}

// ringOffset returns the i-th of 8 compass offsets at the given distance.
func ringOffset(i int, dist float64) Vec3 {
	ang := float64(i) * math.Pi / 4
	return Vec3{X: math.Cos(ang) * dist, Z: math.Sin(ang) * dist}
}
