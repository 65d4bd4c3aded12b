package game

// Intelligence: each AI player aggregates what its own units can currently
// see into per-enemy reports. Reports persist between observations, so a
// player remembers the last-known picture when contact is lost.

// ThreatLevel buckets observed enemy military strength.
type ThreatLevel int

const (
	ThreatNone ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

func (t ThreatLevel) String() string {
	switch t {
	case ThreatNone:
		return "none"
	case ThreatLow:
		return "low"
	case ThreatMedium:
		return "medium"
	case ThreatHigh:
		return "high"
	case ThreatCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func threatFromMilitary(n int) ThreatLevel {
	switch {
	case n <= 0:
		return ThreatNone
	case n <= 2:
		return ThreatLow
	case n <= 5:
		return ThreatMedium
	case n <= 9:
		return ThreatHigh
	default:
		return ThreatCritical
	}
}

// EnemyStrategy classifies an opponent's observed play.
type EnemyStrategy int

const (
	StrategyUnknown EnemyStrategy = iota
	StrategyEconomyRush
	StrategyMilitaryRush
	StrategyFastExpansion
	StrategyDefensive
	StrategyAggressive
)

func (s EnemyStrategy) String() string {
	switch s {
	case StrategyEconomyRush:
		return "economy_rush"
	case StrategyMilitaryRush:
		return "military_rush"
	case StrategyFastExpansion:
		return "fast_expansion"
	case StrategyDefensive:
		return "defensive"
	case StrategyAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// EnemyReport is one player's running picture of one opponent.
type EnemyReport struct {
	Enemy        PlayerID
	LastSeen     float64
	BaseLocation Vec3
	Workers      int
	Military     int
	Buildings    int
	HasHousing   bool
	Threat       ThreatLevel
	EstResources float64
	EcoFocus     bool
	Strategy     EnemyStrategy
}

// classify applies the posture rules in priority order; first match wins.
func (r *EnemyReport) classify(simTime float64) {
	switch {
	case simTime < 120 && r.Military >= 3 && r.Workers < 5:
		r.Strategy = StrategyMilitaryRush
	case r.Workers >= 8 && r.Military <= 2:
		r.Strategy = StrategyEconomyRush
	case r.HasHousing && r.Military < 5:
		r.Strategy = StrategyDefensive
	case r.Military > r.Workers && r.Military >= 3:
		r.Strategy = StrategyAggressive
	default:
		r.Strategy = StrategyUnknown
	}
}

// updateIntel rebuilds every AI player's enemy reports from the union of
// its units' vision caches. Runs on the intel cadence.
func (w *World) updateIntel() {
	now := w.clock.now
	for _, pid := range w.playerIDs {
		pl := w.players[pid]
		if pl == nil || !pl.AI {
			continue
		}

		// Union the player's visible hostiles, deduped, bucketed by owner.
		type tally struct {
			workers, military, buildings int
			hasHousing                   bool
			sum                          Vec3
			buildingSum                  Vec3
			n, bn                        int
		}
		seen := make(map[EntityID]struct{})
		byOwner := make(map[PlayerID]*tally)
		for _, id := range w.UnitsOf(pid) {
			v := w.visions[id]
			if v == nil {
				continue
			}
			for _, eid := range v.Visible {
				if _, dup := seen[eid]; dup || !w.alive[eid] {
					continue
				}
				seen[eid] = struct{}{}
				owner, ok := w.ownerOf(eid)
				if !ok {
					continue
				}
				t := byOwner[owner]
				if t == nil {
					t = &tally{}
					byOwner[owner] = t
				}
				tr := w.transforms[eid]
				if tr != nil {
					t.sum = t.sum.Add(tr.Pos)
					t.n++
				}
				if u := w.units[eid]; u != nil {
					if w.Tables.Unit(u.Type).Role.IsMilitary() {
						t.military++
					} else {
						t.workers++
					}
				} else if b := w.buildings[eid]; b != nil {
					t.buildings++
					if w.Tables.Building(b.Type).Housing > 0 {
						t.hasHousing = true
					}
					if tr != nil {
						t.buildingSum = t.buildingSum.Add(tr.Pos)
						t.bn++
					}
				}
			}
		}

		for owner, t := range byOwner {
			r := pl.Intel(owner)
			r.LastSeen = now
			r.Workers = t.workers
			r.Military = t.military
			r.Buildings = t.buildings
			r.HasHousing = r.HasHousing || t.hasHousing
			r.Threat = threatFromMilitary(t.military)
			r.EstResources = 50*float64(t.workers) + 30*float64(t.military) + 100*float64(t.buildings)
			r.EcoFocus = t.workers > t.military*2
			// Buildings anchor the base estimate; units only when no
			// building has been scouted yet.
			if t.bn > 0 {
				r.BaseLocation = t.buildingSum.Scale(1 / float64(t.bn))
			} else if t.n > 0 && r.BaseLocation == (Vec3{}) {
				r.BaseLocation = t.sum.Scale(1 / float64(t.n))
			}
			r.classify(now)
		}
	}
}
