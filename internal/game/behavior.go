package game

// Per-unit housekeeping on the unit-management cadence: wounded workers run
// home, and stray military units without orders drift back toward their
// rally instead of standing in the open.

const (
	fleeHealthFraction = 0.5
	fleeRecentDamage   = 2.0
	strayRallyRadius   = 60.0
)

func (w *World) updateUnitBehavior() {
	now := w.clock.now
	for _, id := range w.ids {
		u := w.units[id]
		if u == nil {
			continue
		}
		pl := w.players[u.Player]
		if pl == nil || !pl.AI {
			continue
		}
		h := w.healths[id]
		if h == nil || h.Dying {
			continue
		}
		st := w.Tables.Unit(u.Type)

		if st.Role == RoleWorker {
			// Workers do not fight back; a hurt worker abandons its task
			// and runs for the base.
			if h.Current < h.Max*fleeHealthFraction && now-h.LastDamageAt < fleeRecentDamage {
				if w.tasks[id] == nil {
					w.StopGathering(id)
					w.SetMoveTarget(id, pl.BaseAnchor)
				}
			}
			continue
		}

		// Military with no orders and no fight nearby regroups at base.
		c := w.combats[id]
		k := w.kinematics[id]
		if c == nil || k == nil || c.Phase != CombatIdle || k.HasTarget {
			continue
		}
		if v := w.visions[id]; v != nil && len(v.Visible) > 0 {
			continue // combat decisions will engage
		}
		tr := w.transforms[id]
		if tr != nil && tr.Pos.DistXZ(pl.BaseAnchor) > strayRallyRadius {
			w.SetMoveTarget(id, pl.BaseAnchor)
		}
	}
}
