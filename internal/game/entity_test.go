package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeferredSpawnAndDespawn(t *testing.T) {
	w := NewWorld(WithTerrain(FlatTerrain))
	w.AddPlayer(1, false)

	id := w.SpawnUnit(1, UnitWorkerAnt, Vec3{})
	require.True(t, w.Alive(id))

	w.Despawn(id)
	// Removal is deferred until the flush point.
	require.True(t, w.Alive(id))
	w.Flush()
	require.False(t, w.Alive(id))
	require.Nil(t, w.Transform(id))
	require.Equal(t, 0, w.EntityCount())

	// A deferred spawn lands at the next flush.
	var spawned EntityID
	w.deferSpawn(func(wd *World) {
		spawned = wd.SpawnUnit(1, UnitSoldierAnt, Vec3{X: 5})
	})
	require.Equal(t, EntityID(0), spawned)
	w.Flush()
	require.True(t, w.Alive(spawned))
}

func TestChangeTrackingClearsEachTick(t *testing.T) {
	w := NewWorld(WithTerrain(FlatTerrain))
	w.AddPlayer(1, false)

	id := w.SpawnUnit(1, UnitWorkerAnt, Vec3{})
	require.Contains(t, w.JustAdded(kindUnit), id)
	require.Contains(t, w.ChangedThisTick(kindTransform), id)

	w.StepSim(0.05)
	require.Empty(t, w.JustAdded(kindUnit))

	w.SetMoveTarget(id, Vec3{X: 10})
	require.Contains(t, w.ChangedThisTick(kindKinematic), id)
}

func TestDespawnReleasesGathererSlot(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w", 1, UnitWorkerAnt, 20, 20),
		WithResource("nectar", Nectar, 100, 1, 25, 25),
		WithGatherOrder("w", "nectar"),
	)
	src := ts.World.Resource(ts.ID("nectar"))

	// Run until the worker holds the only slot.
	got := ts.RunUntil(func(ts *TestSim) bool { return src.Gatherers == 1 }, 400)
	require.NotEqual(t, -1, got)

	ts.World.Despawn(ts.ID("w"))
	ts.RunTicks(1) // flush happens at tick start
	require.Equal(t, 0, src.Gatherers, "slot must be returned when the holder dies")
}

func TestIterationIsAscending(t *testing.T) {
	w := NewWorld(WithTerrain(FlatTerrain))
	w.AddPlayer(1, false)
	a := w.SpawnUnit(1, UnitWorkerAnt, Vec3{})
	b := w.SpawnUnit(1, UnitWorkerAnt, Vec3{X: 2})
	c := w.SpawnUnit(1, UnitWorkerAnt, Vec3{X: 4})

	require.Equal(t, []EntityID{a, b, c}, w.UnitsOf(1))

	w.Despawn(b)
	w.Flush()
	require.Equal(t, []EntityID{a, c}, w.UnitsOf(1))
}

func TestPopulationAccounting(t *testing.T) {
	w := NewWorld(WithTerrain(FlatTerrain))
	pl := w.AddPlayer(1, false)
	require.Equal(t, 0, pl.Pop)
	require.Equal(t, w.Tables.Balance.StartingMaxPop, pl.MaxPop)

	w.SpawnUnit(1, UnitWorkerAnt, Vec3{})  // pop 1
	w.SpawnUnit(1, UnitStagBeetle, Vec3{X: 10}) // pop 4
	require.Equal(t, 5, pl.Pop)

	// Completed housing raises the cap.
	w.SpawnBuilding(1, BuildingBurrow, Vec3{X: 30}, true)
	require.Equal(t, w.Tables.Balance.StartingMaxPop+8, pl.MaxPop)
}
