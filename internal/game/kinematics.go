package game

import (
	"math"

	"go.uber.org/zap"
)

// Movement integration, local separation, obstacle rejection, and stuck
// recovery. Positions never leave the world bound and never go NaN; any
// corrupt position is snapped back to the owner's base anchor.

const (
	stuckHistoryLen = 16

	// A unit with a move target whose net displacement over the sampling
	// window stays under stuckMinDisplacement for stuckWindowSec is stuck.
	stuckWindowSec       = 1.5
	stuckMinDisplacement = 0.75

	// Recovery escalation: probe 8 directions at probeScale radii, else
	// back-step backStepScale radii; attempts are spaced recoveryRetrySec
	// apart and after maxRecoveryAttempts the unit teleports home.
	recoveryProbeScale   = 3.0
	recoveryBackStep     = 2.0
	recoveryRetrySec     = 1.0
	maxRecoveryAttempts  = 3
	arriveThresholdFloor = 0.5
)

// SetMoveTarget points a unit at a destination. Re-issuing the same target
// is a no-op in effect; the kinematic converges on the same state.
func (w *World) SetMoveTarget(id EntityID, target Vec3) {
	k := w.kinematics[id]
	if k == nil {
		return
	}
	target.X = clampF(target.X, -worldBound, worldBound)
	target.Z = clampF(target.Z, -worldBound, worldBound)
	k.Target = target
	k.HasTarget = true
	k.stuckSince = 0
	k.attempts = 0
	w.MarkChanged(kindKinematic, id)
}

// ClearMoveTarget stops a unit.
func (w *World) ClearMoveTarget(id EntityID) {
	k := w.kinematics[id]
	if k == nil {
		return
	}
	k.HasTarget = false
	k.stuckSince = 0
	k.attempts = 0
	w.MarkChanged(kindKinematic, id)
}

func (w *World) updateKinematics(dt float64) {
	var scratch []GridEntry
	for _, id := range w.ids {
		k := w.kinematics[id]
		u := w.units[id]
		if k == nil || u == nil {
			continue
		}
		tr := w.transforms[id]
		col := w.colliders[id]
		st := w.Tables.Unit(u.Type)

		w.steer(id, tr, k, st, dt)

		moved := k.Vel.LenXZ() > 1e-9
		if moved {
			tr.Pos = tr.Pos.Add(k.Vel.Scale(dt))
		}

		scratch = scratch[:0]
		scratch = w.grid.QueryNearby(tr.Pos, scratch)
		w.separate(id, tr, k, col, scratch, dt)
		w.rejectStatics(id, tr, k, col, scratch)

		// Ground clamp and hard world bound.
		tr.Pos.X = clampF(tr.Pos.X, -worldBound, worldBound)
		tr.Pos.Z = clampF(tr.Pos.Z, -worldBound, worldBound)
		tr.Pos.Y = w.terrain(tr.Pos.X, tr.Pos.Z) + terrainOffset

		if math.IsNaN(tr.Pos.X) || math.IsNaN(tr.Pos.Z) || math.IsNaN(tr.Pos.Y) {
			w.log.Warn("position went NaN; snapping to base",
				zap.Uint64("entity", uint64(id)))
			tr.Pos = w.homeAnchor(u.Player)
			tr.Pos.Y = w.terrain(tr.Pos.X, tr.Pos.Z) + terrainOffset
			k.Vel = Vec3{}
		}

		w.detectStuck(id, tr, k, col, u)

		w.MarkChanged(kindTransform, id)
		w.markMoved(id)
	}
}

// steer applies acceleration- and turn-limited seeking toward the target.
func (w *World) steer(id EntityID, tr *Transform, k *Kinematic, st *UnitStats, dt float64) {
	var desired Vec3
	if k.HasTarget {
		to := k.Target.Sub(tr.Pos)
		dist := to.LenXZ()
		arrive := arriveThresholdFloor
		if c := w.colliders[id]; c != nil && c.Radius > arrive {
			arrive = c.Radius
		}
		if dist <= arrive {
			k.HasTarget = false
			k.stuckSince = 0
			k.attempts = 0
		} else {
			desired = to.NormXZ().Scale(st.MaxSpeed)
			// Slow into the target to avoid orbiting it.
			if dist < st.MaxSpeed*0.5 {
				desired = desired.Scale(dist / (st.MaxSpeed * 0.5))
			}
		}
	}

	dv := desired.Sub(k.Vel)
	k.Vel = k.Vel.Add(dv.ClampLenXZ(st.Accel * dt))
	k.Vel = k.Vel.ClampLenXZ(st.MaxSpeed)
	k.Vel.Y = 0

	if k.Vel.LenXZ() > 0.05 {
		want := HeadingTo(tr.Pos.X, tr.Pos.Z, tr.Pos.X+k.Vel.X, tr.Pos.Z+k.Vel.Z)
		tr.Heading = TurnToward(tr.Heading, want, st.TurnRate*dt)
	}
	w.MarkChanged(kindKinematic, id)
}

// separate adds a repulsive steering contribution away from mobile units of
// the same collision class. Repulsion reaches separation_multiplier times
// the unit's own radius and the total push per second is capped at
// separation_force_strength; both come from the balance table.
func (w *World) separate(id EntityID, tr *Transform, k *Kinematic, col *Collider, nearby []GridEntry, dt float64) {
	if col == nil {
		return
	}
	bal := &w.Tables.Balance
	rangeR := bal.SeparationMultiplier * col.Radius
	var push Vec3
	for _, e := range nearby {
		if e.ID == id || !w.alive[e.ID] {
			continue
		}
		other := w.colliders[e.ID]
		if other == nil || w.units[e.ID] == nil || other.Class != col.Class {
			continue
		}
		reach := rangeR + other.Radius
		d := tr.Pos.DistXZ(e.Pos)
		if d >= reach || reach <= 0 {
			continue
		}
		var away Vec3
		if d < 1e-6 {
			// Perfectly stacked: split along a deterministic axis.
			if id < e.ID {
				away = Vec3{X: 1}
			} else {
				away = Vec3{X: -1}
			}
		} else {
			away = tr.Pos.Sub(e.Pos).NormXZ()
		}
		push = push.Add(away.Scale(1 - d/reach))
	}
	if push.LenXZ() < 1e-9 {
		return
	}
	push = push.ClampLenXZ(1).Scale(bal.SeparationForce)
	k.Vel = k.Vel.Add(push.Scale(dt))
	w.MarkChanged(kindKinematic, id)
}

// rejectStatics pushes the unit fully out of static colliders and removes
// the inward velocity component so it slides along the surface.
func (w *World) rejectStatics(id EntityID, tr *Transform, k *Kinematic, col *Collider, nearby []GridEntry) {
	if col == nil || col.Class == CollideAir {
		return // flyers pass over ground clutter
	}
	for _, e := range nearby {
		if e.ID == id || !w.alive[e.ID] {
			continue
		}
		other := w.colliders[e.ID]
		if other == nil || other.Class != CollideStatic {
			continue
		}
		minDist := col.Radius + other.Radius
		d := tr.Pos.DistXZ(e.Pos)
		if d >= minDist {
			continue
		}
		var out Vec3
		if d < 1e-6 {
			out = Vec3{X: 1}
		} else {
			out = tr.Pos.Sub(e.Pos).NormXZ()
		}
		tr.Pos = e.Pos.Add(out.Scale(minDist))
		inward := k.Vel.X*(-out.X) + k.Vel.Z*(-out.Z)
		if inward > 0 {
			k.Vel.X += out.X * inward
			k.Vel.Z += out.Z * inward
		}
	}
}

// detectStuck samples position history and escalates recovery for units that
// have a target but are not making progress.
func (w *World) detectStuck(id EntityID, tr *Transform, k *Kinematic, col *Collider, u *UnitInfo) {
	oldest := tr.Pos
	if k.historyLen == stuckHistoryLen {
		oldest = k.history[k.historyHead]
	} else if k.historyLen > 0 {
		oldest = k.history[0]
	}
	k.history[k.historyHead] = tr.Pos
	k.historyHead = (k.historyHead + 1) % stuckHistoryLen
	if k.historyLen < stuckHistoryLen {
		k.historyLen++
	}

	if !k.HasTarget {
		k.stuckSince = 0
		k.attempts = 0
		return
	}
	if k.historyLen < stuckHistoryLen || tr.Pos.DistXZ(oldest) >= stuckMinDisplacement {
		k.stuckSince = 0
		return
	}

	now := w.clock.now
	if k.stuckSince == 0 {
		k.stuckSince = now
		return
	}
	if now-k.stuckSince < stuckWindowSec || now-k.lastAttempt < recoveryRetrySec {
		return
	}
	k.lastAttempt = now

	if k.attempts >= maxRecoveryAttempts {
		// Final escalation: go home, drop the order, and start over.
		tr.Pos = w.homeAnchor(u.Player)
		tr.Pos.Y = w.terrain(tr.Pos.X, tr.Pos.Z) + terrainOffset
		k.Vel = Vec3{}
		k.HasTarget = false
		k.stuckSince = 0
		k.attempts = 0
		w.MarkChanged(kindKinematic, id)
		w.events.Add(w.tick, int64(id), "kinematics", "teleport_home", u.Type.String())
		return
	}
	k.attempts++

	radius := 1.0
	if col != nil {
		radius = col.Radius
	}
	if probe, ok := w.probeFreeSpot(id, tr.Pos, k.Target, radius*recoveryProbeScale, radius); ok {
		tr.Pos = probe
		w.events.Add(w.tick, int64(id), "kinematics", "probe_recover", u.Type.String())
		return
	}
	// All probes blocked: back away along the target line. The heading can
	// lag far behind under turn-rate limits, so it is not used here.
	back := tr.Pos.Sub(k.Target).NormXZ()
	tr.Pos = tr.Pos.Add(back.Scale(radius * recoveryBackStep))
	w.events.Add(w.tick, int64(id), "kinematics", "back_step", u.Type.String())
}

// probeFreeSpot tests 8 compass offsets around pos at the given distance and
// returns the free spot closest to target.
func (w *World) probeFreeSpot(id EntityID, pos, target Vec3, dist, radius float64) (Vec3, bool) {
	best := Vec3{}
	bestD := math.MaxFloat64
	found := false
	var scratch []GridEntry
	for i := 0; i < 8; i++ {
		ang := float64(i) * math.Pi / 4
		p := Vec3{X: pos.X + math.Cos(ang)*dist, Z: pos.Z + math.Sin(ang)*dist}
		if math.Abs(p.X) > worldBound || math.Abs(p.Z) > worldBound {
			continue
		}
		scratch = scratch[:0]
		scratch = w.grid.QueryNearby(p, scratch)
		if !w.spotFree(id, p, radius, scratch) {
			continue
		}
		if d := p.DistXZ(target); d < bestD {
			bestD = d
			best = p
			found = true
		}
	}
	return best, found
}

// spotFree reports whether a circle at p overlaps no static collider.
func (w *World) spotFree(id EntityID, p Vec3, radius float64, nearby []GridEntry) bool {
	for _, e := range nearby {
		if e.ID == id || !w.alive[e.ID] {
			continue
		}
		other := w.colliders[e.ID]
		if other == nil || other.Class != CollideStatic {
			continue
		}
		if p.DistXZ(e.Pos) < radius+other.Radius {
			return false
		}
	}
	return true
}

// homeAnchor returns the player's base anchor, or the origin when the player
// has no base yet.
func (w *World) homeAnchor(p PlayerID) Vec3 {
	if pl := w.players[p]; pl != nil {
		return pl.BaseAnchor
	}
	return Vec3{}
}
