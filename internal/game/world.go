package game

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

// World owns all simulation state: the entity store, the spatial grid, the
// per-player records, and the clock. One World is one match.
type World struct {
	Tables *StatTables

	log    *zap.Logger
	rng    *rand.Rand
	clock  *SimClock
	sched  *Scheduler
	events *SimLog

	terrain HeightFunc

	// Entity store (see entity.go).
	nextID EntityID
	ids    []EntityID
	alive  map[EntityID]bool

	transforms  map[EntityID]*Transform
	kinematics  map[EntityID]*Kinematic
	healths     map[EntityID]*Health
	combats     map[EntityID]*CombatState
	units       map[EntityID]*UnitInfo
	gatherers   map[EntityID]*GathererState
	visions     map[EntityID]*VisionState
	selectables map[EntityID]*Selectable
	colliders   map[EntityID]*Collider
	buildings   map[EntityID]*BuildingInfo
	queues      map[EntityID]*ProductionQueue
	resources   map[EntityID]*ResourceSource
	obstacles   map[EntityID]*ObstacleInfo
	sites       map[EntityID]*BuildingSite
	tasks       map[EntityID]*ConstructionTask

	added   [compKindCount]map[EntityID]struct{}
	changed [compKindCount]map[EntityID]struct{}

	pendingSpawn   []spawnRequest
	pendingDespawn []EntityID

	grid      *SpatialGrid
	dirtyGrid map[EntityID]struct{} // entities whose grid record is stale

	players   map[PlayerID]*PlayerState
	playerIDs []PlayerID

	// deaths posted during the combat stage, drained by the death stage
	// of the same tick.
	deaths []EntityID

	activities map[EntityID]Activity

	tick         int
	combatActive bool // any unit was in combat last combat stage
}

// WorldOption configures a new World.
type WorldOption func(*World)

// WithLogger installs a structured logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) WorldOption {
	return func(w *World) { w.log = l }
}

// WithTerrain installs the height function. Defaults to RollingTerrain.
func WithTerrain(h HeightFunc) WorldOption {
	return func(w *World) { w.terrain = h }
}

// WithRNG seeds the world's random source for deterministic runs.
func WithRNG(seed int64) WorldOption {
	return func(w *World) { w.rng = rand.New(rand.NewSource(seed)) } // #nosec G404 -- simulation only
}

// WithEventLog installs a structured event log (used by the test harness
// and the headless reporter).
func WithEventLog(sl *SimLog) WorldOption {
	return func(w *World) { w.events = sl }
}

// WithTables overrides the stat tables (tests shrink numbers with this).
func WithTables(t *StatTables) WorldOption {
	return func(w *World) { w.Tables = t }
}

// NewWorld creates an empty world.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		Tables:  Tables(),
		log:     zap.NewNop(),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- simulation only
		clock:   NewSimClock(),
		sched:   NewScheduler(),
		events:  NewSimLog(false),
		terrain: RollingTerrain,

		alive:       make(map[EntityID]bool),
		transforms:  make(map[EntityID]*Transform),
		kinematics:  make(map[EntityID]*Kinematic),
		healths:     make(map[EntityID]*Health),
		combats:     make(map[EntityID]*CombatState),
		units:       make(map[EntityID]*UnitInfo),
		gatherers:   make(map[EntityID]*GathererState),
		visions:     make(map[EntityID]*VisionState),
		selectables: make(map[EntityID]*Selectable),
		colliders:   make(map[EntityID]*Collider),
		buildings:   make(map[EntityID]*BuildingInfo),
		queues:      make(map[EntityID]*ProductionQueue),
		resources:   make(map[EntityID]*ResourceSource),
		obstacles:   make(map[EntityID]*ObstacleInfo),
		sites:       make(map[EntityID]*BuildingSite),
		tasks:       make(map[EntityID]*ConstructionTask),

		grid:      NewSpatialGrid(defaultGridCellSize),
		dirtyGrid: make(map[EntityID]struct{}),

		players:    make(map[PlayerID]*PlayerState),
		activities: make(map[EntityID]Activity),
	}
	for k := compKind(0); k < compKindCount; k++ {
		w.added[k] = make(map[EntityID]struct{})
		w.changed[k] = make(map[EntityID]struct{})
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Clock exposes the simulation clock (speed control lives outside the core).
func (w *World) Clock() *SimClock { return w.clock }

// Events returns the structured event log.
func (w *World) Events() *SimLog { return w.events }

// Tick returns the current tick number.
func (w *World) Tick() int { return w.tick }

// Grid exposes the spatial index for read-only queries.
func (w *World) Grid() *SpatialGrid { return w.grid }

// Terrain returns the height function.
func (w *World) Terrain() HeightFunc { return w.terrain }

// --- Players ---

// AddPlayer registers a player record. Base anchor defaults to the origin
// until the first Queen is placed.
func (w *World) AddPlayer(id PlayerID, ai bool) *PlayerState {
	if p, ok := w.players[id]; ok {
		return p
	}
	p := newPlayerState(id, ai, &w.Tables.Balance)
	w.players[id] = p
	w.playerIDs = append(w.playerIDs, id)
	sort.Slice(w.playerIDs, func(i, j int) bool { return w.playerIDs[i] < w.playerIDs[j] })
	return p
}

// Player returns the record for id, or nil.
func (w *World) Player(id PlayerID) *PlayerState { return w.players[id] }

// Players returns all player IDs ascending (neutral excluded).
func (w *World) Players() []PlayerID {
	out := make([]PlayerID, 0, len(w.playerIDs))
	for _, id := range w.playerIDs {
		if id != NeutralPlayer {
			out = append(out, id)
		}
	}
	return out
}

// EnemiesOf returns all other non-neutral players, ascending.
func (w *World) EnemiesOf(p PlayerID) []PlayerID {
	var out []PlayerID
	for _, id := range w.playerIDs {
		if id != p && id != NeutralPlayer {
			out = append(out, id)
		}
	}
	return out
}

func isHostile(a, b PlayerID) bool {
	return a != b && a != NeutralPlayer && b != NeutralPlayer
}

// --- Spawning ---
//
// The *Now spawn helpers create entities immediately; they are for scenario
// setup and for the flush path. Mid-tick systems go through deferred
// closures so creations land at the next flush point.

// SpawnUnit creates a complete unit of the given type.
func (w *World) SpawnUnit(p PlayerID, ut UnitType, pos Vec3) EntityID {
	st := w.Tables.Unit(ut)
	id := w.newEntity()
	pos.Y = w.terrain(pos.X, pos.Z) + terrainOffset
	w.attachTransform(id, &Transform{Pos: pos})
	w.attachKinematic(id, &Kinematic{})
	w.attachHealth(id, &Health{Current: st.MaxHealth, Max: st.MaxHealth})
	w.attachUnit(id, &UnitInfo{Player: p, Type: ut})
	w.attachVision(id, &VisionState{})
	w.attachSelectable(id, &Selectable{})
	class := CollideGround
	if st.Role == RoleFlyer {
		class = CollideAir
	}
	w.attachCollider(id, &Collider{Radius: st.Radius, Class: class})
	w.attachCombat(id, &CombatState{AutoAttack: st.Role.IsMilitary()})
	if st.Role == RoleWorker {
		w.attachGatherer(id, &GathererState{})
	}
	if pl := w.players[p]; pl != nil {
		pl.Pop += st.Pop
	}
	w.markMoved(id)
	return id
}

// SpawnBuilding creates a building, optionally already complete.
func (w *World) SpawnBuilding(p PlayerID, bt BuildingType, pos Vec3, complete bool) EntityID {
	st := w.Tables.Building(bt)
	id := w.newEntity()
	pos.Y = w.terrain(pos.X, pos.Z)
	w.attachTransform(id, &Transform{Pos: pos})
	w.attachHealth(id, &Health{Current: st.MaxHealth, Max: st.MaxHealth})
	w.attachSelectable(id, &Selectable{})
	w.attachCollider(id, &Collider{Radius: st.Radius, Class: CollideStatic})
	b := &BuildingInfo{
		Player:      p,
		Type:        bt,
		Complete:    complete,
		RallyOffset: Vec3{X: st.Radius + 2, Z: st.Radius + 2},
	}
	w.attachBuilding(id, b)
	if len(st.Produces) > 0 {
		w.attachQueue(id, &ProductionQueue{})
	}
	if complete {
		w.onBuildingComplete(id, b)
	}
	w.markMoved(id)
	return id
}

// onBuildingComplete applies completion side effects exactly once.
func (w *World) onBuildingComplete(id EntityID, b *BuildingInfo) {
	st := w.Tables.Building(b.Type)
	pl := w.players[b.Player]
	if pl == nil {
		return
	}
	if st.Housing > 0 {
		pl.MaxPop += st.Housing
	}
	// First Queen anchors the player's base.
	if b.Type == BuildingQueen && pl.BaseAnchor == (Vec3{}) {
		pl.BaseAnchor = w.transforms[id].Pos
	}
}

// SpawnResource creates a resource source.
func (w *World) SpawnResource(rt ResourceType, amount float64, maxGatherers int, pos Vec3) EntityID {
	id := w.newEntity()
	pos.Y = w.terrain(pos.X, pos.Z)
	w.attachTransform(id, &Transform{Pos: pos})
	w.attachResource(id, &ResourceSource{Type: rt, Amount: amount, MaxGatherers: maxGatherers})
	w.attachCollider(id, &Collider{Radius: 2.0, Class: CollideStatic})
	w.markMoved(id)
	return id
}

// SpawnObstacle creates a static environment obstacle.
func (w *World) SpawnObstacle(kind ObstacleKind, radius float64, pos Vec3) EntityID {
	id := w.newEntity()
	pos.Y = w.terrain(pos.X, pos.Z)
	w.attachTransform(id, &Transform{Pos: pos})
	w.attachObstacle(id, &ObstacleInfo{Kind: kind})
	w.attachCollider(id, &Collider{Radius: radius, Class: CollideStatic})
	w.markMoved(id)
	return id
}

// SpawnSite creates a building site awaiting a worker.
func (w *World) SpawnSite(p PlayerID, bt BuildingType, pos Vec3) EntityID {
	st := w.Tables.Building(bt)
	id := w.newEntity()
	pos.Y = w.terrain(pos.X, pos.Z)
	w.attachTransform(id, &Transform{Pos: pos})
	w.attachSite(id, &BuildingSite{Type: bt, Player: p})
	w.attachCollider(id, &Collider{Radius: st.Radius, Class: CollideStatic})
	w.markMoved(id)
	return id
}

// markMoved flags the entity's grid record stale.
func (w *World) markMoved(id EntityID) {
	w.dirtyGrid[id] = struct{}{}
}

// --- Tick pipeline ---

// Step advances the simulation by one tick derived from a wall-clock delta.
func (w *World) Step(wallDt float64) {
	dt := w.clock.Advance(wallDt)
	w.StepSim(dt)
}

// StepSim advances the simulation by an exact simulated delta. The test
// harness uses this for deterministic fixed-step runs.
func (w *World) StepSim(dt float64) {
	w.clock.accrue(dt)
	w.tick++
	now := w.clock.now

	// (flush) spawns/despawns issued last tick land before anything reads.
	w.Flush()

	// (a) spatial refresh.
	w.refreshSpatial()

	// vision feeds intel, targeting, and the economy.
	w.updateVision()

	// (b) AI cadences.
	unitCount := len(w.units)
	load := w.sched.loadScale(unitCount)
	fight := w.sched.combatScale(w.combatActive)
	if w.sched.Income.Due(now, 1.0) {
		w.applyPassiveIncome(w.sched.Income.Interval)
	}
	if w.sched.Intel.Due(now, load) {
		w.updateIntel()
	}
	if w.sched.Strategy.Due(now, load) {
		w.updateStrategy()
	}
	if w.sched.Tactics.Due(now, load*fight) {
		w.updateTactics()
	}
	if w.sched.Economy.Due(now, load) {
		w.rebalanceWorkers()
	}
	if w.sched.UnitMgmt.Due(now, load) {
		w.updateUnitBehavior()
	}
	if w.sched.CombatAI.Due(now, load*fight) {
		w.updateCombatDecisions()
	}

	// (c) commands, production, construction, gathering.
	w.advanceProduction(dt)
	w.advanceConstruction(dt)
	w.updateEconomy(dt)

	// (d) kinematics.
	w.updateKinematics(dt)

	// (e) combat.
	w.updateCombat(dt)

	// (f) death.
	w.processDeaths()

	// (g) activity/selection state for the render boundary.
	w.updateActivities()

	w.clearTracking()
}

// refreshSpatial updates grid records for entities that moved, spawned, or
// changed radius since the last refresh. The grid is written only here.
func (w *World) refreshSpatial() {
	if len(w.dirtyGrid) == 0 {
		return
	}
	ids := sortedIDs(w.dirtyGrid)
	for _, id := range ids {
		if !w.alive[id] {
			w.grid.Remove(id)
			continue
		}
		tr := w.transforms[id]
		col := w.colliders[id]
		if tr == nil || col == nil {
			continue
		}
		w.grid.Update(id, tr.Pos, col.Radius)
	}
	clear(w.dirtyGrid)
}

// applyPassiveIncome trickles resources to AI players. This stacks with
// their workers' gathering on purpose.
func (w *World) applyPassiveIncome(seconds float64) {
	for _, pid := range w.playerIDs {
		p := w.players[pid]
		if p == nil || !p.AI {
			continue
		}
		for rt := ResourceType(0); rt < resourceTypeCount; rt++ {
			p.Credit(rt, w.Tables.Balance.AIIncome[rt]*seconds)
		}
	}
}

// postDeath queues a death event for the death stage of this tick.
// The dying marker stops a unit being killed twice.
func (w *World) postDeath(id EntityID) {
	h := w.healths[id]
	if h == nil || h.Dying {
		return
	}
	h.Dying = true
	w.deaths = append(w.deaths, id)
}

// processDeaths despawns everything that died this tick and reconciles
// population and housing.
func (w *World) processDeaths() {
	if len(w.deaths) == 0 {
		return
	}
	deaths := w.deaths
	w.deaths = w.deaths[:0]
	for _, id := range deaths {
		if !w.alive[id] {
			continue
		}
		if u := w.units[id]; u != nil {
			if pl := w.players[u.Player]; pl != nil {
				pl.Pop -= w.Tables.Unit(u.Type).Pop
				if pl.Pop < 0 {
					w.log.Warn("population dropped below zero; repaired",
						zap.Int("player", int(u.Player)))
					pl.Pop = 0
				}
			}
			w.events.Add(w.tick, int64(id), "death", "unit", u.Type.String())
		}
		if b := w.buildings[id]; b != nil {
			if pl := w.players[b.Player]; pl != nil && b.Complete {
				st := w.Tables.Building(b.Type)
				if st.Housing > 0 {
					pl.MaxPop -= st.Housing
				}
			}
			w.events.Add(w.tick, int64(id), "death", "building", b.Type.String())
		}
		// Remove from the index immediately so no later query this tick
		// (or any query next tick) can return the corpse.
		w.grid.Remove(id)
		w.Despawn(id)
	}
}

// updateActivities refreshes the per-entity activity signal consumed by the
// render/animation boundary.
func (w *World) updateActivities() {
	clear(w.activities)
	for _, id := range w.ids {
		w.activities[id] = w.computeActivity(id)
	}
}

// ActivityOf returns the current high-level activity for an entity.
func (w *World) ActivityOf(id EntityID) Activity {
	if a, ok := w.activities[id]; ok {
		return a
	}
	return w.computeActivity(id)
}

func (w *World) computeActivity(id EntityID) Activity {
	if !w.alive[id] {
		return ActivityDead
	}
	if h := w.healths[id]; h != nil && h.Dying {
		return ActivityDying
	}
	if c := w.combats[id]; c != nil && c.Phase == CombatInCombat {
		return ActivityAttacking
	}
	if g := w.gatherers[id]; g != nil && g.Phase == GatherGathering {
		return ActivityGathering
	}
	if k := w.kinematics[id]; k != nil && (k.HasTarget || k.Vel.LenXZ() > 0.1) {
		return ActivityMoving
	}
	return ActivityIdle
}

// TeamColorKey returns the owning player for tinting, or NeutralPlayer.
func (w *World) TeamColorKey(id EntityID) PlayerID {
	if u := w.units[id]; u != nil {
		return u.Player
	}
	if b := w.buildings[id]; b != nil {
		return b.Player
	}
	if s := w.sites[id]; s != nil {
		return s.Player
	}
	return NeutralPlayer
}
