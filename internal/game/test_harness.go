package game

// TestSim is a headless simulation harness used by tests and the headless
// reporter. It wraps a World with deterministic fixed-step ticking, flat
// terrain, labeled entities, and structured event logging.
type TestSim struct {
	World *World
	Log   *SimLog

	dt     float64
	labels map[string]EntityID
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, terrain, tables, verbose — applied first
	simOptPlayer                      // register players
	simOptEntity                      // spawn labeled entities
	simOptOrder                       // initial orders — applied after the first flush
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		WithRNG(seed)(ts.World)
	}}
}

// WithVerbose enables per-event echoing to stdout.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Log = NewSimLog(v)
		WithEventLog(ts.Log)(ts.World)
	}}
}

// WithStep overrides the fixed per-tick delta (default 0.05 s).
func WithStep(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.dt = dt }}
}

// WithRolling swaps the default flat test terrain for rolling ground.
func WithRolling() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		WithTerrain(RollingTerrain)(ts.World)
	}}
}

// WithStatTables substitutes shrunken stat tables.
func WithStatTables(t *StatTables) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.World.Tables = t }}
}

// WithHumanPlayer registers a non-AI player.
func WithHumanPlayer(id PlayerID) SimOption {
	return SimOption{simOptPlayer, func(ts *TestSim) { ts.World.AddPlayer(id, false) }}
}

// WithAIPlayer registers an AI player.
func WithAIPlayer(id PlayerID) SimOption {
	return SimOption{simOptPlayer, func(ts *TestSim) { ts.World.AddPlayer(id, true) }}
}

// WithUnit spawns a unit and records it under label.
func WithUnit(label string, p PlayerID, ut UnitType, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.labels[label] = ts.World.SpawnUnit(p, ut, Vec3{X: x, Z: z})
	}}
}

// WithBuilding spawns a completed building and records it under label.
func WithBuilding(label string, p PlayerID, bt BuildingType, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.labels[label] = ts.World.SpawnBuilding(p, bt, Vec3{X: x, Z: z}, true)
	}}
}

// WithResource spawns a resource source and records it under label.
func WithResource(label string, rt ResourceType, amount float64, maxGatherers int, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.labels[label] = ts.World.SpawnResource(rt, amount, maxGatherers, Vec3{X: x, Z: z})
	}}
}

// WithObstacle spawns a static obstacle.
func WithObstacle(kind ObstacleKind, radius, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.SpawnObstacle(kind, radius, Vec3{X: x, Z: z})
	}}
}

// WithGatherOrder assigns a labeled worker to a labeled source at start.
func WithGatherOrder(worker, source string) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		_ = ts.World.OrderGather(ts.labels[worker], ts.labels[source])
	}}
}

// WithMoveOrder points a labeled unit at a destination at start.
func WithMoveOrder(label string, x, z float64) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		ts.World.SetMoveTarget(ts.labels[label], Vec3{X: x, Z: z})
	}}
}

// WithAttackOrder points one labeled unit at another at start.
func WithAttackOrder(attacker, target string) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		_ = ts.World.OrderAttack(ts.labels[attacker], ts.labels[target])
	}}
}

// NewTestSim constructs a TestSim from the given options in four ordered
// passes: infrastructure, players, entities, initial orders. The spatial
// grid is refreshed before orders run so distance-based routing works from
// tick one.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		World:  NewWorld(WithTerrain(FlatTerrain)),
		dt:     0.05,
		labels: make(map[string]EntityID),
	}
	ts.Log = ts.World.Events()
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptPlayer {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(ts)
		}
	}
	ts.World.Flush()
	ts.World.refreshSpatial()
	for _, o := range opts {
		if o.kind == simOptOrder {
			o.fn(ts)
		}
	}
	return ts
}

// ID resolves a label to its entity ID (zero if unknown).
func (ts *TestSim) ID(label string) EntityID { return ts.labels[label] }

// Dt returns the fixed per-tick simulated delta.
func (ts *TestSim) Dt() float64 { return ts.dt }

// RunTicks advances the simulation n fixed-step ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.World.StepSim(ts.dt)
	}
}

// RunSeconds advances the simulation by whole ticks covering the given
// simulated duration.
func (ts *TestSim) RunSeconds(s float64) {
	n := int(s/ts.dt + 0.5)
	ts.RunTicks(n)
}

// RunUntil advances up to maxTicks, stopping early when the predicate
// returns true. Returns the tick at which it was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.World.StepSim(ts.dt)
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

// Snapshot captures a lightweight per-player summary at a tick.
type SimSnapshot struct {
	Tick    int
	Players []PlayerSnapshot
}

// PlayerSnapshot is one player's state at a tick.
type PlayerSnapshot struct {
	Player    PlayerID
	Stock     [resourceTypeCount]float64
	Pop       int
	MaxPop    int
	Workers   int
	Military  int
	Buildings int
}

// Snapshot returns the current per-player summary.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.World.Tick()}
	for _, pid := range ts.World.Players() {
		pl := ts.World.Player(pid)
		workers, military := ts.World.countRoles(pid)
		snap.Players = append(snap.Players, PlayerSnapshot{
			Player:    pid,
			Stock:     pl.Stock,
			Pop:       pl.Pop,
			MaxPop:    pl.MaxPop,
			Workers:   workers,
			Military:  military,
			Buildings: len(ts.World.BuildingsOf(pid)),
		})
	}
	return snap
}
