package game

// Unit production. Costs are debited at enqueue and are not refunded: a
// completed order that no longer fits under the population cap is discarded.
// Queues are bounded FIFOs attached to producer buildings.

// productionQueueBound caps the orders a single building holds.
const productionQueueBound = 8

// TrainUnit enqueues a unit for a player. The producer is chosen among the
// player's completed buildings able to train the type: the first building
// with an empty queue, else the least-loaded one, ties resolving to the
// lower entity ID.
func (w *World) TrainUnit(p PlayerID, ut UnitType) error {
	pl := w.players[p]
	if pl == nil {
		return ErrInvalidTarget
	}
	st := w.Tables.Unit(ut)

	producer, exists := w.pickProducer(p, ut)
	if !exists {
		return ErrNoProducer
	}
	if producer == 0 {
		return ErrQueueFull
	}
	q := w.queues[producer]
	if !pl.PopHeadroom(st.Pop) {
		return ErrNoPopulation
	}
	if !pl.Debit(st.Cost) {
		return ErrCannotAfford
	}
	q.Items = append(q.Items, ut)
	w.MarkChanged(kindProduction, producer)
	w.events.Add(w.tick, int64(producer), "production", "enqueued", ut.String())
	return nil
}

// pickProducer returns the building to receive the order. The second result
// reports whether the player owns any completed producer at all; a zero ID
// with true means every queue is full.
func (w *World) pickProducer(p PlayerID, ut UnitType) (EntityID, bool) {
	var leastLoaded EntityID
	leastLen := productionQueueBound
	exists := false
	for _, id := range w.ids {
		b := w.buildings[id]
		if b == nil || b.Player != p || !b.Complete {
			continue
		}
		if !w.canProduce(b.Type, ut) {
			continue
		}
		q := w.queues[id]
		if q == nil {
			continue
		}
		exists = true
		if len(q.Items) == 0 {
			return id, true // first empty queue wins outright
		}
		if len(q.Items) < leastLen {
			leastLen = len(q.Items)
			leastLoaded = id
		}
	}
	return leastLoaded, exists
}

func (w *World) canProduce(bt BuildingType, ut UnitType) bool {
	for _, p := range w.Tables.ProducersOf(ut) {
		if p == bt {
			return true
		}
	}
	return false
}

// QueueLen reports the queued order count on a producer building.
func (w *World) QueueLen(id EntityID) int {
	if q := w.queues[id]; q != nil {
		return len(q.Items)
	}
	return 0
}

func (w *World) advanceProduction(dt float64) {
	for _, id := range w.ids {
		q := w.queues[id]
		b := w.buildings[id]
		if q == nil || b == nil || !b.Complete || len(q.Items) == 0 {
			continue
		}
		ut := q.Items[0]
		st := w.Tables.Unit(ut)
		q.Progress += dt
		if q.Progress < st.BuildTime {
			continue
		}
		q.Progress -= st.BuildTime
		q.Items = q.Items[1:]
		w.MarkChanged(kindProduction, id)

		player := b.Player
		spawnAt := w.rallyPoint(id, b, st.Radius)
		w.deferSpawn(func(wd *World) {
			pl := wd.players[player]
			if pl == nil {
				return
			}
			// Population is re-checked at spawn; the cost is already spent
			// and stays spent.
			if !pl.PopHeadroom(st.Pop) {
				wd.events.Add(wd.tick, int64(player), "production", "discarded", ut.String())
				wd.log.Warn("production discarded at spawn: over population cap")
				return
			}
			nid := wd.SpawnUnit(player, ut, spawnAt)
			wd.events.Add(wd.tick, int64(nid), "production", "complete", ut.String())
		})
	}
}

// rallyPoint finds a clear spot at the building's rally offset, walking a
// small spiral when the first choice is blocked.
func (w *World) rallyPoint(id EntityID, b *BuildingInfo, unitRadius float64) Vec3 {
	tr := w.transforms[id]
	if tr == nil {
		return w.homeAnchor(b.Player)
	}
	base := tr.Pos.Add(b.RallyOffset)
	var scratch []GridEntry
	for ring := 0; ring < 4; ring++ {
		step := float64(ring) * (unitRadius*2 + 0.5)
		for i := 0; i < 8; i++ {
			p := base.Add(ringOffset(i, step))
			scratch = scratch[:0]
			scratch = w.grid.QueryNearby(p, scratch)
			if w.spotFree(id, p, unitRadius, scratch) {
				return p
			}
		}
	}
	return base
}
