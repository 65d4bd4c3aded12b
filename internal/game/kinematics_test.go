package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveArrivesAndClearsTarget(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("w", 1, UnitWorkerAnt, 0, 0),
		WithMoveOrder("w", 40, 0),
	)
	id := ts.ID("w")

	got := ts.RunUntil(func(ts *TestSim) bool {
		return !ts.World.Kinematic(id).HasTarget
	}, 400) // 20 s is ample for 40 units at speed 14
	require.NotEqual(t, -1, got, "worker never arrived")

	tr := ts.World.Transform(id)
	require.InDelta(t, 40, tr.Pos.X, 3.0)
	require.InDelta(t, 0, tr.Pos.Z, 3.0)
}

func TestRepeatedMoveOrderIsIdempotent(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("a", 1, UnitWorkerAnt, 0, 0),
		WithUnit("b", 1, UnitWorkerAnt, 0, 5),
	)
	a, b := ts.ID("a"), ts.ID("b")

	ts.World.SetMoveTarget(a, Vec3{X: 30, Z: 30})
	ts.World.SetMoveTarget(b, Vec3{X: 30, Z: 35})
	// Issue one of them twice in the same tick.
	ts.World.SetMoveTarget(a, Vec3{X: 30, Z: 30})

	ts.RunTicks(40)
	ka, kb := ts.World.Kinematic(a), ts.World.Kinematic(b)
	require.Equal(t, ka.Target.X, 30.0)
	require.True(t, ka.HasTarget == kb.HasTarget)
	// Both made comparable progress; the duplicate order changed nothing.
	da := ts.World.Transform(a).Pos.DistXZ(Vec3{X: 30, Z: 30})
	db := ts.World.Transform(b).Pos.DistXZ(Vec3{X: 30, Z: 35})
	require.InDelta(t, da, db, 2.0)
}

func TestSeparationKeepsUnitsApart(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("a", 1, UnitSoldierAnt, 0, 0),
		WithUnit("b", 1, UnitSoldierAnt, 0.5, 0),
	)
	ts.RunTicks(60)

	a := ts.World.Transform(ts.ID("a")).Pos
	b := ts.World.Transform(ts.ID("b")).Pos
	minDist := 2 * ts.World.Tables.Unit(UnitSoldierAnt).Radius
	require.GreaterOrEqual(t, a.DistXZ(b), minDist*0.9,
		"overlapping units must be pushed apart")
}

func TestSeparationForceIsBounded(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("a", 1, UnitSoldierAnt, 0, 0),
		WithUnit("b", 1, UnitSoldierAnt, 0, 0),
	)
	ts.RunTicks(1)

	// Even perfectly stacked units get at most separation_force_strength
	// worth of velocity change per second, not an instant snap.
	k := ts.World.Kinematic(ts.ID("a"))
	v := k.Vel.LenXZ()
	maxPush := ts.World.Tables.Balance.SeparationForce * ts.Dt()
	require.Greater(t, v, 0.0, "stacked units must start pushing apart")
	require.LessOrEqual(t, v, maxPush+1e-9)
}

func TestSeparationIgnoresOtherCollisionClasses(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("ground", 1, UnitSoldierAnt, 0, 0),
		WithUnit("flyer", 1, UnitWasp, 0.2, 0),
	)
	ts.RunTicks(60)

	// A flyer hovering over a soldier displaces neither of them.
	a := ts.World.Transform(ts.ID("ground")).Pos
	b := ts.World.Transform(ts.ID("flyer")).Pos
	require.Less(t, a.DistXZ(b), 0.5)
}

func TestTargetsClampToWorldBound(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("w", 1, UnitWorkerAnt, 0, 0),
	)
	ts.World.SetMoveTarget(ts.ID("w"), Vec3{X: worldBound * 2, Z: -worldBound * 3})
	k := ts.World.Kinematic(ts.ID("w"))
	require.Equal(t, worldBound, k.Target.X)
	require.Equal(t, -worldBound, k.Target.Z)
}

func TestStaticObstacleBlocksAndSlides(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithUnit("w", 1, UnitWorkerAnt, 0, 0),
		WithObstacle(ObstacleRock, 5, 10, 0),
	)
	ts.World.SetMoveTarget(ts.ID("w"), Vec3{X: 10, Z: 0})
	ts.RunTicks(100)

	// The worker can never stand inside the rock.
	pos := ts.World.Transform(ts.ID("w")).Pos
	dist := pos.DistXZ(Vec3{X: 10, Z: 0})
	minDist := 5 + ts.World.Tables.Unit(UnitWorkerAnt).Radius
	require.GreaterOrEqual(t, dist, minDist-0.1)
}

// stallKinematic fakes a unit that has made no progress for a full sampling
// window, so recovery escalation can be exercised without simulating a trap.
func stallKinematic(w *World, id EntityID) {
	k := w.Kinematic(id)
	tr := w.Transform(id)
	for i := range k.history {
		k.history[i] = tr.Pos
	}
	k.historyLen = stuckHistoryLen
	k.stuckSince = 0.001
	k.lastAttempt = -recoveryRetrySec
	w.clock.now = stuckWindowSec + 1
}

func TestTeleportEscalationDropsTarget(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, -60, -60),
		WithUnit("w", 1, UnitWorkerAnt, 0, 0),
	)
	w := ts.World
	id := ts.ID("w")
	w.SetMoveTarget(id, Vec3{Z: 40})

	stallKinematic(w, id)
	k := w.Kinematic(id)
	k.attempts = maxRecoveryAttempts
	tr := w.Transform(id)
	w.detectStuck(id, tr, k, w.Collider(id), w.Unit(id))

	// Home with the order dropped, or the unit would walk straight back
	// into the same dead end.
	require.Equal(t, 1, ts.Log.Count("kinematics", "teleport_home"))
	require.False(t, k.HasTarget, "teleporting home must drop the move target")
	require.InDelta(t, -60, tr.Pos.X, 0.01)
	require.InDelta(t, -60, tr.Pos.Z, 0.01)
	require.Equal(t, 0, k.attempts)
}

func TestBackStepRetreatsAlongTargetLine(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithUnit("w", 1, UnitWorkerAnt, 0, 0),
	}
	// A full rock ring blocks every probe direction.
	for i := 0; i < 8; i++ {
		off := ringOffset(i, 6.5)
		opts = append(opts, WithObstacle(ObstacleRock, 4, off.X, off.Z))
	}
	ts := NewTestSim(opts...)
	w := ts.World
	id := ts.ID("w")
	w.SetMoveTarget(id, Vec3{Z: 40})

	stallKinematic(w, id)
	tr := w.Transform(id)
	tr.Heading = 0 // facing east, perpendicular to the target line
	before := tr.Pos
	w.detectStuck(id, tr, w.Kinematic(id), w.Collider(id), w.Unit(id))

	// The retreat runs away from the target, not along the stale heading.
	require.Equal(t, 1, ts.Log.Count("kinematics", "back_step"))
	require.InDelta(t, before.X, tr.Pos.X, 1e-9)
	back := w.Collider(id).Radius * recoveryBackStep
	require.InDelta(t, before.Z-back, tr.Pos.Z, 1e-9)
}

func TestTurnTowardTakesShortWay(t *testing.T) {
	// Crossing the ±pi seam must not spin the long way around.
	h := TurnToward(math.Pi-0.1, -math.Pi+0.1, 0.5)
	require.InDelta(t, math.Pi+0.1, h, 1e-9)

	// Steps are clamped.
	h = TurnToward(0, math.Pi/2, 0.1)
	require.InDelta(t, 0.1, h, 1e-9)
}
