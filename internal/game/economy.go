package game

// The gather cycle: move to source, gather against the source's shared
// slots, carry home, deliver, repeat. Source and drop-off are weak
// references re-validated every tick; a dangling reference re-routes the
// worker instead of crashing it.

const (
	// gatherReach pads the arrival test at sources and drop-offs.
	gatherReach = 1.5

	// sourceSearchRadius bounds the grid sweep when a worker re-selects a
	// source after depletion.
	sourceSearchRadius = 240.0
)

// OrderGather sends a worker to a resource source. The slot is claimed on
// arrival, not at order time, so over-subscribed orders degrade gracefully.
func (w *World) OrderGather(id, source EntityID) error {
	g := w.gatherers[id]
	if g == nil {
		return ErrInvalidTarget
	}
	src := w.resources[source]
	if src == nil || src.Depleted() {
		return ErrInvalidTarget
	}
	w.releaseSlot(id, g)
	g.Source = source
	g.SourceType = src.Type
	g.Phase = GatherMovingToResource
	if tr := w.transforms[source]; tr != nil {
		w.SetMoveTarget(id, tr.Pos)
	}
	w.MarkChanged(kindGatherer, id)
	return nil
}

// StopGathering idles a worker, releasing any held slot. Carried resources
// stay on the worker.
func (w *World) StopGathering(id EntityID) {
	g := w.gatherers[id]
	if g == nil {
		return
	}
	w.releaseSlot(id, g)
	g.Phase = GatherIdle
	w.ClearMoveTarget(id)
	w.MarkChanged(kindGatherer, id)
}

func (w *World) releaseSlot(id EntityID, g *GathererState) {
	if !g.reserved {
		return
	}
	if src := w.resources[g.Source]; src != nil {
		src.Gatherers--
	}
	g.reserved = false
}

func (w *World) updateEconomy(dt float64) {
	bal := &w.Tables.Balance
	for _, id := range w.ids {
		g := w.gatherers[id]
		u := w.units[id]
		if g == nil || u == nil {
			continue
		}
		if h := w.healths[id]; h != nil && h.Dying {
			continue
		}
		if w.tasks[id] != nil {
			continue // building takes precedence over gathering
		}
		tr := w.transforms[id]

		switch g.Phase {
		case GatherIdle:
			// Nothing; assignment comes from orders or the AI rebalance.

		case GatherMovingToResource:
			src := w.resources[g.Source]
			if src == nil || src.Depleted() {
				w.rerouteGatherer(id, g, tr)
				continue
			}
			stst := w.transforms[g.Source]
			if stst == nil {
				w.rerouteGatherer(id, g, tr)
				continue
			}
			if !w.withinReach(id, g.Source, gatherReach) {
				w.SetMoveTarget(id, stst.Pos)
				continue
			}
			if !g.reserved {
				if src.Gatherers >= src.MaxGatherers {
					w.rerouteGatherer(id, g, tr)
					continue
				}
				src.Gatherers++
				g.reserved = true
			}
			g.Phase = GatherGathering
			w.ClearMoveTarget(id)
			w.MarkChanged(kindGatherer, id)

		case GatherGathering:
			src := w.resources[g.Source]
			if src == nil || src.Depleted() {
				w.releaseSlot(id, g)
				w.headHome(id, g)
				continue
			}
			take := bal.GatherRate * dt
			if room := bal.CarryCapacity - g.Carried; take > room {
				take = room
			}
			if take > src.Amount {
				take = src.Amount
			}
			src.Amount -= take
			g.Carried += take
			g.CarriedType = src.Type
			w.MarkChanged(kindResource, g.Source)
			if src.Depleted() {
				w.depleteSource(g.Source, src)
			}
			if g.Carried >= bal.CarryCapacity || src.Depleted() {
				w.releaseSlot(id, g)
				w.headHome(id, g)
			}

		case GatherReturningToBase:
			drop := w.buildings[g.DropOff]
			if drop == nil || !drop.Complete || !w.alive[g.DropOff] {
				w.headHome(id, g) // re-pick a drop-off
				continue
			}
			if !w.withinReach(id, g.DropOff, gatherReach) {
				if dtr := w.transforms[g.DropOff]; dtr != nil {
					w.SetMoveTarget(id, dtr.Pos)
				}
				continue
			}
			g.Phase = GatherDelivering
			w.ClearMoveTarget(id)
			w.MarkChanged(kindGatherer, id)

		case GatherDelivering:
			if g.Carried > 0 {
				if pl := w.players[u.Player]; pl != nil {
					pl.Credit(g.CarriedType, g.Carried)
				}
				w.events.AddNum(w.tick, int64(u.Player), "economy", "delivered", g.Carried)
				g.Carried = 0
			}
			src := w.resources[g.Source]
			if src != nil && !src.Depleted() {
				g.Phase = GatherMovingToResource
				if stst := w.transforms[g.Source]; stst != nil {
					w.SetMoveTarget(id, stst.Pos)
				}
			} else {
				w.rerouteGatherer(id, g, tr)
			}
			w.MarkChanged(kindGatherer, id)
		}
	}
}

// withinReach tests planar distance against the two colliders plus a pad.
func (w *World) withinReach(a, b EntityID, pad float64) bool {
	ta, tb := w.transforms[a], w.transforms[b]
	if ta == nil || tb == nil {
		return false
	}
	reach := pad
	if c := w.colliders[a]; c != nil {
		reach += c.Radius
	}
	if c := w.colliders[b]; c != nil {
		reach += c.Radius
	}
	return ta.Pos.DistXZ(tb.Pos) <= reach
}

// headHome routes a carrying worker to its nearest drop-off. With nothing
// carried the worker just re-routes to a source.
func (w *World) headHome(id EntityID, g *GathererState) {
	if g.Carried <= 0 {
		if tr := w.transforms[id]; tr != nil {
			w.rerouteGatherer(id, g, tr)
		}
		return
	}
	u := w.units[id]
	drop := w.nearestDropOff(u.Player, w.transforms[id].Pos)
	if drop == 0 {
		g.Phase = GatherIdle
		w.ClearMoveTarget(id)
		w.MarkChanged(kindGatherer, id)
		return
	}
	g.DropOff = drop
	g.Phase = GatherReturningToBase
	if dtr := w.transforms[drop]; dtr != nil {
		w.SetMoveTarget(id, dtr.Pos)
	}
	w.MarkChanged(kindGatherer, id)
}

// rerouteGatherer finds a replacement source near the worker, preferring
// the type it was assigned to; with carried cargo it delivers first, and it
// idles when nothing is left.
func (w *World) rerouteGatherer(id EntityID, g *GathererState, tr *Transform) {
	if g.Carried > 0 {
		w.releaseSlot(id, g)
		w.headHome(id, g)
		return
	}
	w.releaseSlot(id, g)
	next := w.nearestOpenSourceOfType(tr.Pos, g.SourceType)
	if next == 0 {
		next = w.nearestOpenSource(tr.Pos)
	}
	if next == 0 {
		g.Source = 0
		g.Phase = GatherIdle
		w.ClearMoveTarget(id)
		w.MarkChanged(kindGatherer, id)
		return
	}
	g.Source = next
	g.SourceType = w.resources[next].Type
	g.Phase = GatherMovingToResource
	if stst := w.transforms[next]; stst != nil {
		w.SetMoveTarget(id, stst.Pos)
	}
	w.MarkChanged(kindGatherer, id)
}

// nearestOpenSource returns the closest non-depleted source with a free
// slot, searched through the grid, or zero.
func (w *World) nearestOpenSource(pos Vec3) EntityID {
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pos, sourceSearchRadius, scratch)
	var best EntityID
	bestD := sourceSearchRadius
	for _, e := range scratch {
		src := w.resources[e.ID]
		if src == nil || src.Depleted() || src.Gatherers >= src.MaxGatherers {
			continue
		}
		if d := pos.DistXZ(e.Pos); d <= sourceSearchRadius && (best == 0 || d < bestD) {
			bestD = d
			best = e.ID
		}
	}
	return best
}

// nearestOpenSourceOfType is nearestOpenSource restricted to one resource type.
func (w *World) nearestOpenSourceOfType(pos Vec3, rt ResourceType) EntityID {
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pos, sourceSearchRadius, scratch)
	var best EntityID
	bestD := sourceSearchRadius
	for _, e := range scratch {
		src := w.resources[e.ID]
		if src == nil || src.Type != rt || src.Depleted() || src.Gatherers >= src.MaxGatherers {
			continue
		}
		if d := pos.DistXZ(e.Pos); d <= sourceSearchRadius && (best == 0 || d < bestD) {
			bestD = d
			best = e.ID
		}
	}
	return best
}

// nearestDropOff returns the player's closest completed drop-off building.
func (w *World) nearestDropOff(p PlayerID, pos Vec3) EntityID {
	var best EntityID
	bestD := 0.0
	for _, id := range w.ids {
		b := w.buildings[id]
		if b == nil || b.Player != p || !b.Complete || !w.Tables.IsDropOff(b.Type) {
			continue
		}
		tr := w.transforms[id]
		if tr == nil {
			continue
		}
		d := pos.DistXZ(tr.Pos)
		if best == 0 || d < bestD {
			best = id
			bestD = d
		}
	}
	return best
}

// depleteSource logs and despawns an exhausted source. Workers holding the
// reference re-route on their next update.
func (w *World) depleteSource(id EntityID, src *ResourceSource) {
	w.events.Add(w.tick, int64(id), "economy", "source_depleted", src.Type.String())
	w.Despawn(id)
}

// rebalanceWorkers steers AI workers toward the scarcest stockpile. Idle
// workers go to the nearest open source of the neediest type (any type as a
// fallback); when some line has drawn two or more gatherers beyond the
// neediest line, one empty-handed worker is shifted over per cadence.
func (w *World) rebalanceWorkers() {
	for _, pid := range w.playerIDs {
		pl := w.players[pid]
		if pl == nil || !pl.AI {
			continue
		}

		var counts [resourceTypeCount]int
		var movable [resourceTypeCount]EntityID // one empty-handed donor per line
		var idle []EntityID
		for _, id := range w.UnitsOf(pid) {
			g := w.gatherers[id]
			if g == nil || w.tasks[id] != nil {
				continue
			}
			if c := w.combats[id]; c != nil && c.Phase != CombatIdle {
				continue
			}
			if g.Phase == GatherIdle {
				idle = append(idle, id)
				continue
			}
			src := w.resources[g.Source]
			if src == nil {
				continue
			}
			counts[src.Type]++
			if movable[src.Type] == 0 && g.Carried == 0 {
				movable[src.Type] = id
			}
		}

		need := neediestResource(pl)
		for _, id := range idle {
			// A site that lost its builder takes priority over gathering.
			if site := w.unreservedSiteOf(pid); site != 0 {
				if w.AssignBuilder(site, id) == nil {
					continue
				}
			}
			tr := w.transforms[id]
			if tr == nil {
				continue
			}
			src := w.nearestOpenSourceOfType(tr.Pos, need)
			if src == 0 {
				src = w.nearestOpenSource(tr.Pos)
			}
			if src != 0 {
				_ = w.OrderGather(id, src)
			}
		}

		heavy, most := need, counts[need]
		for rt := ResourceType(0); rt < resourceTypeCount; rt++ {
			if counts[rt] > most {
				heavy, most = rt, counts[rt]
			}
		}
		if heavy != need && most >= counts[need]+2 {
			if id := movable[heavy]; id != 0 {
				if tr := w.transforms[id]; tr != nil {
					if src := w.nearestOpenSourceOfType(tr.Pos, need); src != 0 {
						_ = w.OrderGather(id, src)
					}
				}
			}
		}
	}
}

// unreservedSiteOf returns the player's lowest-ID site awaiting a builder.
func (w *World) unreservedSiteOf(p PlayerID) EntityID {
	for _, id := range w.ids {
		if s := w.sites[id]; s != nil && s.Player == p && !s.Reserved {
			return id
		}
	}
	return 0
}

// neediestResource returns the type with the lowest stockpile.
func neediestResource(pl *PlayerState) ResourceType {
	need := ResourceType(0)
	for rt := ResourceType(1); rt < resourceTypeCount; rt++ {
		if pl.Stock[rt] < pl.Stock[need] {
			need = rt
		}
	}
	return need
}
