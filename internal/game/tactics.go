package game

import "math"

// Tactics: stance selection and army-group coordination. Groups are
// rebuilt from scratch every tactics tick, so dead units simply stop
// appearing; no cleanup pass is needed.

// Stance is the tactical mode that shapes how army groups form.
type Stance int

const (
	StanceDefensive Stance = iota
	StanceHarass
	StanceAggressive
	StanceRetreat
	StanceExpand
)

func (s Stance) String() string {
	switch s {
	case StanceDefensive:
		return "defensive"
	case StanceHarass:
		return "harass"
	case StanceAggressive:
		return "aggressive"
	case StanceRetreat:
		return "retreat"
	case StanceExpand:
		return "expand"
	default:
		return "unknown"
	}
}

// ArmyRole is the job a group performs.
type ArmyRole int

const (
	RoleMainArmy ArmyRole = iota
	RoleHarassers
	RoleDefenders
)

func (r ArmyRole) String() string {
	switch r {
	case RoleMainArmy:
		return "main_army"
	case RoleHarassers:
		return "harassers"
	case RoleDefenders:
		return "defenders"
	default:
		return "unknown"
	}
}

// ArmyGroup is a set of units sharing one objective this tactics tick.
type ArmyGroup struct {
	Role   ArmyRole
	Units  []EntityID
	Target Vec3
}

const (
	aggressionMinArmy     = 6
	aggressionRatio       = 1.5
	aggressionCooldownSec = 60.0
	harassMinArmy         = 3
	harassSquadSize       = 3
	harassRingRadius      = 35.0
	defendMinArmy         = 5
	rallyHoldRadius       = 6.0
)

// TacticsState is the per-player tactical record.
type TacticsState struct {
	Stance       Stance
	LastAttackAt float64
	TargetPlayer PlayerID
	Attacking    bool
	Groups       []ArmyGroup

	forced bool // an AttackEnemy goal demands aggression this tick
}

func newTacticsState() *TacticsState {
	return &TacticsState{}
}

func (w *World) updateTactics() {
	now := w.clock.now
	for _, pid := range w.playerIDs {
		pl := w.players[pid]
		if pl == nil || !pl.AI || pl.tactics == nil {
			continue
		}
		t := pl.tactics

		enemy := w.chooseTargetPlayer(pid, t)
		if enemy == NeutralPlayer {
			t.Groups = nil
			t.Attacking = false
			continue
		}
		t.TargetPlayer = enemy
		report := pl.Intel(enemy)
		army := w.militaryOf(pid)
		own := len(army)

		prev := t.Stance
		switch {
		case t.forced:
			t.Stance = StanceAggressive
			t.forced = false
		case report.Threat >= ThreatHigh:
			t.Stance = StanceDefensive
		case own >= aggressionMinArmy &&
			float64(own) >= aggressionRatio*float64(report.Military) &&
			now-t.LastAttackAt >= aggressionCooldownSec:
			t.Stance = StanceAggressive
		case report.EcoFocus && own >= harassMinArmy:
			t.Stance = StanceHarass
		case report.Military > 2*own:
			t.Stance = StanceRetreat
		case own < defendMinArmy:
			t.Stance = StanceDefensive
		default:
			// Keep the previous stance when nothing forces a change.
		}
		if t.Stance != prev {
			w.events.Add(w.tick, int64(pid), "tactics", "stance", t.Stance.String())
		}

		w.rebuildGroups(pl, t, report, army, now)
		w.coordinateGroups(t)
	}
}

// chooseTargetPlayer keeps the current target while it still has presence,
// otherwise picks the lowest-ID enemy with any entity on the map.
func (w *World) chooseTargetPlayer(p PlayerID, t *TacticsState) PlayerID {
	hasPresence := func(e PlayerID) bool {
		return len(w.UnitsOf(e)) > 0 || len(w.BuildingsOf(e)) > 0
	}
	if t.TargetPlayer != NeutralPlayer && t.TargetPlayer != p && hasPresence(t.TargetPlayer) {
		return t.TargetPlayer
	}
	for _, e := range w.EnemiesOf(p) {
		if hasPresence(e) {
			return e
		}
	}
	return NeutralPlayer
}

// militaryOf lists the player's live military units, ascending.
func (w *World) militaryOf(p PlayerID) []EntityID {
	var out []EntityID
	for _, id := range w.UnitsOf(p) {
		u := w.units[id]
		if !w.Tables.Unit(u.Type).Role.IsMilitary() {
			continue
		}
		if h := w.healths[id]; h != nil && h.Dying {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (w *World) rebuildGroups(pl *PlayerState, t *TacticsState, report *EnemyReport, army []EntityID, now float64) {
	t.Groups = t.Groups[:0]
	rally := pl.BaseAnchor

	switch t.Stance {
	case StanceAggressive:
		if !t.Attacking {
			t.Attacking = true
			t.LastAttackAt = now
			w.events.Add(w.tick, int64(pl.ID), "tactics", "attack_launched", report.Strategy.String())
		}
		t.Groups = append(t.Groups, ArmyGroup{
			Role:   RoleMainArmy,
			Units:  army,
			Target: report.BaseLocation,
		})

	case StanceHarass:
		t.Attacking = false
		n := harassSquadSize
		if n > len(army) {
			n = len(army)
		}
		t.Groups = append(t.Groups, ArmyGroup{
			Role:   RoleHarassers,
			Units:  army[:n],
			Target: report.BaseLocation,
		})
		if len(army) > n {
			t.Groups = append(t.Groups, ArmyGroup{
				Role:   RoleDefenders,
				Units:  army[n:],
				Target: rally,
			})
		}

	default: // Defensive, Retreat, Expand all hold at the rally point
		t.Attacking = false
		t.Groups = append(t.Groups, ArmyGroup{
			Role:   RoleDefenders,
			Units:  army,
			Target: rally,
		})
	}
}

// markCombatMarch flags a unit as moving under tactical orders so the
// combat-decision pass keeps engaging what it meets on the way.
func (w *World) markCombatMarch(id EntityID) {
	c := w.combats[id]
	if c == nil || c.Target != 0 {
		return
	}
	c.Phase = CombatMovingToCombat
	w.MarkChanged(kindCombat, id)
}

// coordinateGroups pushes move targets consistent with each group's role.
// Units actively trading blows are left alone.
func (w *World) coordinateGroups(t *TacticsState) {
	for _, g := range t.Groups {
		for i, id := range g.Units {
			if c := w.combats[id]; c != nil && c.Phase == CombatInCombat {
				continue
			}
			switch g.Role {
			case RoleMainArmy:
				w.SetMoveTarget(id, g.Target)
				w.markCombatMarch(id)
			case RoleHarassers:
				// Spread around the periphery at fixed angular offsets.
				ang := 2 * math.Pi * float64(i) / float64(len(g.Units))
				w.SetMoveTarget(id, Vec3{
					X: g.Target.X + math.Cos(ang)*harassRingRadius,
					Z: g.Target.Z + math.Sin(ang)*harassRingRadius,
				})
				w.markCombatMarch(id)
			case RoleDefenders:
				tr := w.transforms[id]
				if tr != nil && tr.Pos.DistXZ(g.Target) > rallyHoldRadius {
					w.SetMoveTarget(id, g.Target)
				}
			}
		}
	}
}
