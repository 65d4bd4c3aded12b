package game

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

// Strategy: the top AI layer. Each cadence tick it executes the head of a
// per-player goal queue through the same TrainUnit/PlaceBuilding entry
// points a human uses, then appends new goals from unmet phase targets.
// Failed goals are discarded and their kind cools down before re-insertion.

type StrategyPhase int

const (
	PhaseEarlyGame StrategyPhase = iota
	PhaseMidGame
	PhaseLateGame
)

func (p StrategyPhase) String() string {
	switch p {
	case PhaseEarlyGame:
		return "early_game"
	case PhaseMidGame:
		return "mid_game"
	case PhaseLateGame:
		return "late_game"
	default:
		return "unknown"
	}
}

type GoalKind int

const (
	GoalBuildWorker GoalKind = iota
	GoalBuildMilitary
	GoalConstructBuilding
	GoalGatherResource
	GoalExpandTerritory
	GoalAttackEnemy
)

// Goal is one queued strategic intention.
type Goal struct {
	Kind     GoalKind
	Unit     UnitType
	Building BuildingType
	Enemy    PlayerID
}

// key identifies the goal kind for cooldown and log-throttle maps.
func (g Goal) key() string {
	switch g.Kind {
	case GoalBuildWorker:
		return "worker"
	case GoalBuildMilitary:
		return "military/" + g.Unit.String()
	case GoalConstructBuilding:
		return "construct/" + g.Building.String()
	case GoalGatherResource:
		return "gather"
	case GoalExpandTerritory:
		return "expand"
	case GoalAttackEnemy:
		return "attack"
	default:
		return "unknown"
	}
}

const (
	goalCooldownSec = 30.0
	goalLogThrottle = 10.0
	goalQueueBound  = 12
)

// StrategyState is the per-player strategy record. The failure cooldowns
// and log throttles live here, keyed by goal kind, never in globals.
type StrategyState struct {
	Phase StrategyPhase
	goals []Goal

	lastFailedAt map[string]float64
	lastLoggedAt map[string]float64
}

func newStrategyState() *StrategyState {
	return &StrategyState{
		lastFailedAt: make(map[string]float64),
		lastLoggedAt: make(map[string]float64),
	}
}

// Goals exposes the queue for tests and the headless reporter.
func (s *StrategyState) Goals() []Goal { return s.goals }

func (s *StrategyState) onCooldown(key string, now float64) bool {
	at, ok := s.lastFailedAt[key]
	return ok && now-at < goalCooldownSec
}

func (s *StrategyState) queued(key string) bool {
	for _, g := range s.goals {
		if g.key() == key {
			return true
		}
	}
	return false
}

// phaseTargets returns the worker and military counts the phase wants.
func phaseTargets(p StrategyPhase) (workers, military int) {
	switch p {
	case PhaseMidGame:
		return 20, 12
	case PhaseLateGame:
		return 24, 20
	default:
		return 12, 4
	}
}

func (w *World) updateStrategy() {
	now := w.clock.now
	for _, pid := range w.playerIDs {
		pl := w.players[pid]
		if pl == nil || !pl.AI || pl.strategy == nil {
			continue
		}
		s := pl.strategy
		workers, military := w.countRoles(pid)
		total := workers + military

		prev := s.Phase
		switch {
		case (workers >= 20 && military >= 15) || total >= 50:
			s.Phase = PhaseLateGame
		case workers >= 15:
			s.Phase = PhaseMidGame
		default:
			s.Phase = PhaseEarlyGame
		}
		if s.Phase != prev {
			w.events.Add(w.tick, int64(pid), "strategy", "phase", s.Phase.String())
		}

		if len(s.goals) > 0 {
			goal := s.goals[0]
			s.goals = s.goals[1:]
			if err := w.executeGoal(pl, goal); err != nil {
				s.lastFailedAt[goal.key()] = now
				if now-s.lastLoggedAt[goal.key()] >= goalLogThrottle {
					s.lastLoggedAt[goal.key()] = now
					w.log.Info("strategy goal failed",
						zap.Int("player", int(pid)),
						zap.String("goal", goal.key()),
						zap.Error(err))
				}
				w.events.Add(w.tick, int64(pid), "strategy", "goal_failed", goal.key())
			} else {
				w.events.Add(w.tick, int64(pid), "strategy", "goal_done", goal.key())
			}
		}

		w.appendGoals(pl, s, workers, military, now)
	}
}

// countRoles tallies a player's worker and military units.
func (w *World) countRoles(p PlayerID) (workers, military int) {
	for _, id := range w.UnitsOf(p) {
		u := w.units[id]
		if w.Tables.Unit(u.Type).Role.IsMilitary() {
			military++
		} else {
			workers++
		}
	}
	return workers, military
}

func (w *World) executeGoal(pl *PlayerState, g Goal) error {
	switch g.Kind {
	case GoalBuildWorker:
		return w.TrainUnit(pl.ID, UnitWorkerAnt)
	case GoalBuildMilitary:
		return w.TrainUnit(pl.ID, g.Unit)
	case GoalConstructBuilding, GoalExpandTerritory:
		bt := g.Building
		if g.Kind == GoalExpandTerritory {
			bt = BuildingStorage
		}
		pos, ok := w.findPlacement(pl, bt)
		if !ok {
			return ErrNoPlacement
		}
		worker := w.idleBuilder(pl.ID)
		if worker == 0 {
			return errors.New("no worker available to build")
		}
		_, err := w.PlaceBuilding(pl.ID, bt, pos, worker)
		return err
	case GoalGatherResource:
		worker := w.idleBuilder(pl.ID)
		if worker == 0 {
			return errors.New("no idle worker")
		}
		tr := w.transforms[worker]
		src := w.nearestOpenSource(tr.Pos)
		if src == 0 {
			return ErrInvalidTarget
		}
		return w.OrderGather(worker, src)
	case GoalAttackEnemy:
		if pl.tactics == nil {
			return ErrInvalidTarget
		}
		pl.tactics.TargetPlayer = g.Enemy
		pl.tactics.forced = true
		return nil
	default:
		return errors.New("unknown goal kind")
	}
}

// appendGoals queues goals for unmet targets, skipping kinds that are
// already queued or cooling down after a failure.
func (w *World) appendGoals(pl *PlayerState, s *StrategyState, workers, military int, now float64) {
	targetW, targetM := phaseTargets(s.Phase)

	push := func(g Goal) {
		if len(s.goals) >= goalQueueBound {
			return
		}
		key := g.key()
		if s.queued(key) || s.onCooldown(key, now) {
			return
		}
		s.goals = append(s.goals, g)
	}

	if workers < targetW {
		push(Goal{Kind: GoalBuildWorker})
	}
	if pl.MaxPop-pl.Pop < 4 {
		push(Goal{Kind: GoalConstructBuilding, Building: BuildingBurrow})
	}
	if workers >= 8 && w.countBuildings(pl.ID, BuildingStorage) == 0 {
		push(Goal{Kind: GoalConstructBuilding, Building: BuildingStorage})
	}
	if workers >= 6 && w.countBuildings(pl.ID, BuildingBarracks) == 0 {
		push(Goal{Kind: GoalConstructBuilding, Building: BuildingBarracks})
	}
	if s.Phase >= PhaseMidGame && w.countBuildings(pl.ID, BuildingApiary) == 0 {
		push(Goal{Kind: GoalConstructBuilding, Building: BuildingApiary})
	}
	if s.Phase == PhaseLateGame && w.countBuildings(pl.ID, BuildingBeetlePen) == 0 {
		push(Goal{Kind: GoalConstructBuilding, Building: BuildingBeetlePen})
	}
	if military < targetM {
		push(Goal{Kind: GoalBuildMilitary, Unit: w.pickMilitaryType(pl.ID, s.Phase)})
	}
	if s.Phase == PhaseLateGame && military >= 15 {
		if enemies := w.EnemiesOf(pl.ID); len(enemies) > 0 {
			push(Goal{Kind: GoalAttackEnemy, Enemy: enemies[0]})
		}
	}
}

// pickMilitaryType chooses what to train from the producers the player
// actually owns, leaning heavier as the game lengthens.
func (w *World) pickMilitaryType(p PlayerID, phase StrategyPhase) UnitType {
	if phase == PhaseLateGame && w.countBuildings(p, BuildingBeetlePen) > 0 {
		return UnitStagBeetle
	}
	if phase >= PhaseMidGame && w.countBuildings(p, BuildingApiary) > 0 {
		return UnitWasp
	}
	return UnitSoldierAnt
}

// countBuildings counts the player's completed buildings of one type.
func (w *World) countBuildings(p PlayerID, bt BuildingType) int {
	n := 0
	for _, id := range w.ids {
		if b := w.buildings[id]; b != nil && b.Player == p && b.Type == bt && b.Complete {
			n++
		}
	}
	return n
}

// idleBuilder picks a worker that is neither building nor mid-delivery.
func (w *World) idleBuilder(p PlayerID) EntityID {
	var fallback EntityID
	for _, id := range w.UnitsOf(p) {
		g := w.gatherers[id]
		if g == nil || w.tasks[id] != nil {
			continue
		}
		if h := w.healths[id]; h != nil && h.Dying {
			continue
		}
		if g.Phase == GatherIdle {
			return id
		}
		if fallback == 0 && g.Carried == 0 {
			fallback = id
		}
	}
	return fallback
}

// Placement search rings.
const (
	placementResourceReach = 250.0
	crowdedSourceBuildings = 2
	crowdedSourceRadius    = 30.0
)

// findPlacement searches rings of increasing radius for a legal spot:
// around nearby resources for resource-adjacent buildings, around the base
// anchor otherwise.
func (w *World) findPlacement(pl *PlayerState, bt BuildingType) (Vec3, bool) {
	st := w.Tables.Building(bt)
	var centers []Vec3
	if st.NearResource {
		centers = w.uncrowdedSources(pl)
	}
	if len(centers) == 0 {
		centers = []Vec3{pl.BaseAnchor}
	}
	for _, center := range centers {
		for ring := 1; ring <= 5; ring++ {
			r := st.Radius*2 + float64(ring)*8
			for i := 0; i < 12; i++ {
				ang := 2 * math.Pi * float64(i) / 12
				pos := Vec3{X: center.X + math.Cos(ang)*r, Z: center.Z + math.Sin(ang)*r}
				if w.PlacementOK(bt, pos) {
					return pos, true
				}
			}
		}
	}
	return Vec3{}, false
}

// uncrowdedSources lists resource positions near the base that do not
// already have a cluster of buildings around them, nearest first.
func (w *World) uncrowdedSources(pl *PlayerState) []Vec3 {
	type cand struct {
		pos Vec3
		d   float64
	}
	var cands []cand
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pl.BaseAnchor, placementResourceReach, scratch)
	for _, e := range scratch {
		src := w.resources[e.ID]
		if src == nil || src.Depleted() {
			continue
		}
		d := pl.BaseAnchor.DistXZ(e.Pos)
		if d > placementResourceReach {
			continue
		}
		if w.buildingsNear(e.Pos, crowdedSourceRadius) >= crowdedSourceBuildings {
			continue
		}
		cands = append(cands, cand{e.Pos, d})
	}
	out := make([]Vec3, 0, len(cands))
	for len(cands) > 0 {
		best := 0
		for i := range cands {
			if cands[i].d < cands[best].d {
				best = i
			}
		}
		out = append(out, cands[best].pos)
		cands = append(cands[:best], cands[best+1:]...)
	}
	return out
}

func (w *World) buildingsNear(pos Vec3, r float64) int {
	n := 0
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pos, r, scratch)
	for _, e := range scratch {
		if w.buildings[e.ID] != nil && pos.DistXZ(e.Pos) <= r {
			n++
		}
	}
	return n
}
