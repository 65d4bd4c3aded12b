package game

// Combat: target selection on the combat-AI cadence, chase/attack phase
// transitions and damage application every tick. Targets are weak
// references, re-validated before every use.

const (
	// regenDelaySec is how long a unit must go undamaged before regeneration
	// starts.
	regenDelaySec = 5.0

	// chaseRangeFactor: a target that slips out of attack range is chased as
	// long as it stays within this multiple of the range.
	chaseRangeFactor = 2.0
)

// Target priority weights. Workers die first, siege last; wounded targets
// get finished off.
const (
	scoreWorker   = 30.0
	scoreFighter  = 20.0
	scoreSiege    = 12.0
	scoreBuilding = 5.0
	scoreWounded  = 10.0
)

// OrderAttack points a unit at a specific hostile entity. An explicit
// attack turns auto-attack on, so the unit keeps fighting after the
// target dies.
func (w *World) OrderAttack(id, target EntityID) error {
	c := w.combats[id]
	u := w.units[id]
	if c == nil || u == nil {
		return ErrInvalidTarget
	}
	owner, ok := w.ownerOf(target)
	if !ok || !w.alive[target] || !isHostile(u.Player, owner) || w.healths[target] == nil {
		return ErrInvalidTarget
	}
	c.Target = target
	c.Phase = CombatMovingToAttack
	c.AutoAttack = true
	w.MarkChanged(kindCombat, id)
	return nil
}

// updateCombatDecisions acquires targets for idle auto-attackers. Runs on
// the combat-AI cadence, not every tick; an acquired target is sticky until
// it dies or leaves chase range.
func (w *World) updateCombatDecisions() {
	for _, id := range w.ids {
		c := w.combats[id]
		if c == nil || !c.AutoAttack {
			continue
		}
		// Idle units and units marching under tactical orders both engage
		// what they can see; everyone else is already committed.
		if c.Phase != CombatIdle && c.Phase != CombatMovingToCombat {
			continue
		}
		v := w.visions[id]
		if v == nil || len(v.Visible) == 0 {
			continue
		}
		if t := w.pickTarget(id, v.Visible); t != 0 {
			c.Target = t
			c.Phase = CombatMovingToAttack
			w.MarkChanged(kindCombat, id)
		}
	}
}

// pickTarget scores visible hostiles and returns the best, or zero. Ties
// resolve to the lower entity ID because candidates arrive ascending.
func (w *World) pickTarget(id EntityID, candidates []EntityID) EntityID {
	tr := w.transforms[id]
	var best EntityID
	bestScore := -1.0
	for _, c := range candidates {
		if !w.alive[c] {
			continue
		}
		h := w.healths[c]
		if h == nil || h.Dying {
			continue
		}
		score := scoreBuilding
		if u := w.units[c]; u != nil {
			switch w.Tables.Unit(u.Type).Role {
			case RoleWorker:
				score = scoreWorker
			case RoleSiege:
				score = scoreSiege
			default:
				score = scoreFighter
			}
		}
		if h.Current < h.Max*0.5 {
			score += scoreWounded
		}
		if ct := w.transforms[c]; ct != nil {
			score -= tr.Pos.DistXZ(ct.Pos) * 0.05
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func (w *World) updateCombat(dt float64) {
	now := w.clock.now
	active := false
	for _, id := range w.ids {
		c := w.combats[id]
		u := w.units[id]
		if c == nil || u == nil {
			continue
		}
		h := w.healths[id]
		if h != nil && h.Dying {
			continue
		}
		st := w.Tables.Unit(u.Type)

		w.regenerate(h, st, now, dt)

		if c.Phase == CombatIdle {
			continue
		}
		if (c.Phase == CombatMoving || c.Phase == CombatMovingToCombat) && c.Target == 0 {
			// Plain combat march; kinematics finishes it.
			if k := w.kinematics[id]; k == nil || !k.HasTarget {
				c.Phase = CombatIdle
			}
			continue
		}

		th := w.healths[c.Target]
		towner, ok := w.ownerOf(c.Target)
		if !w.alive[c.Target] || th == nil || th.Dying || !ok || !isHostile(u.Player, towner) {
			w.dropTarget(id, c)
			continue
		}
		ttr := w.transforms[c.Target]
		tr := w.transforms[id]
		if ttr == nil || tr == nil {
			w.dropTarget(id, c)
			continue
		}

		dist := tr.Pos.DistXZ(ttr.Pos)
		reach := st.Range
		if tc := w.colliders[c.Target]; tc != nil {
			reach += tc.Radius
		}

		switch {
		case dist <= reach:
			if c.Phase != CombatInCombat {
				c.Phase = CombatInCombat
				w.events.Add(w.tick, int64(id), "combat", "engage", u.Type.String())
			}
			w.ClearMoveTarget(id)
			tr.Heading = TurnToward(tr.Heading,
				HeadingTo(tr.Pos.X, tr.Pos.Z, ttr.Pos.X, ttr.Pos.Z), st.TurnRate*dt)
			if now-c.LastAttackAt >= 1.0/st.AttackSpeed {
				c.LastAttackAt = now
				w.applyDamage(id, c.Target, st)
			}
			active = true

		case c.Phase == CombatInCombat && dist <= reach*chaseRangeFactor:
			// Slipped out of reach; chase without giving up the target.
			c.Phase = CombatMoving
			w.SetMoveTarget(id, ttr.Pos)
			active = true

		case c.Phase == CombatMoving && dist > reach*chaseRangeFactor:
			w.dropTarget(id, c)

		default:
			// Still approaching; refresh the intercept point.
			if c.Phase == CombatIdle {
				c.Phase = CombatMovingToAttack
			}
			w.SetMoveTarget(id, ttr.Pos)
		}
		w.MarkChanged(kindCombat, id)
	}
	w.combatActive = active
}

func (w *World) dropTarget(id EntityID, c *CombatState) {
	c.Target = 0
	c.Phase = CombatIdle
	w.ClearMoveTarget(id)
	w.MarkChanged(kindCombat, id)
}

// applyDamage runs the armor formula against the target and posts a death
// when it drops to zero.
func (w *World) applyDamage(attacker, target EntityID, st *UnitStats) {
	h := w.healths[target]
	if h == nil || h.Dying {
		return
	}
	armor := 0.0
	class := ArmorStructure
	if tu := w.units[target]; tu != nil {
		ts := w.Tables.Unit(tu.Type)
		armor = ts.Armor
		class = ts.ArmorClass
	}
	dmg := st.Damage - armor
	if dmg < 0 {
		dmg = 0
	}
	dmg *= DamageModifier(st.DamageType, class)
	h.Current -= dmg
	h.LastDamageAt = w.clock.now
	w.MarkChanged(kindHealth, target)
	w.events.AddNum(w.tick, int64(attacker), "combat", "damage", dmg)
	if h.Current <= 0 {
		h.Current = 0
		w.postDeath(target)
	}
}

// regenerate trickles health back after a quiet spell.
func (w *World) regenerate(h *Health, st *UnitStats, now, dt float64) {
	if h == nil || st.Regen <= 0 || h.Current >= h.Max {
		return
	}
	if now-h.LastDamageAt < regenDelaySec {
		return
	}
	h.Current += st.Regen * dt
	if h.Current > h.Max {
		h.Current = h.Max
	}
}
