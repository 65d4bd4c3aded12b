package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullConstructionCycle(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w", 1, UnitWorkerAnt, 15, 0),
	)
	w := ts.World
	pl := w.Player(1)
	cost := w.Tables.Building(BuildingBurrow).Cost
	before := pl.Stock

	site, err := w.PlaceBuilding(1, BuildingBurrow, Vec3{X: 40, Z: 0}, ts.ID("w"))
	require.NoError(t, err)
	require.True(t, w.Alive(site))
	require.NotNil(t, w.Construction(ts.ID("w")))
	for _, e := range cost {
		require.Equal(t, before[e.Resource]-e.Amount, pl.Stock[e.Resource])
	}

	buildTime := w.Tables.Building(BuildingBurrow).BuildTime
	maxTicks := int((buildTime+30)/ts.Dt())
	got := ts.RunUntil(func(ts *TestSim) bool {
		return w.countBuildings(1, BuildingBurrow) == 1
	}, maxTicks)
	require.NotEqual(t, -1, got, "burrow never completed")

	require.False(t, w.Alive(site), "site must be replaced by the building")
	require.Nil(t, w.Construction(ts.ID("w")), "worker task must be removed")
	require.Equal(t, w.Tables.Balance.StartingMaxPop+10+8, pl.MaxPop,
		"queen and burrow housing both count")
}

func TestPlacementRejectsOverlap(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w", 1, UnitWorkerAnt, 15, 0),
	)
	w := ts.World
	before := w.Player(1).Stock

	// On top of the queen: denied, nothing charged.
	_, err := w.PlaceBuilding(1, BuildingBurrow, Vec3{X: 2, Z: 0}, ts.ID("w"))
	require.ErrorIs(t, err, ErrNoPlacement)
	require.Equal(t, before, w.Player(1).Stock)
}

func TestPlacementRejectsOutOfBounds(t *testing.T) {
	require.False(t, NewWorld(WithTerrain(FlatTerrain)).PlacementOK(
		BuildingBurrow, Vec3{X: worldBound + 1}))
}

func TestStorageRequiresNearbyResource(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithResource("nectar", Nectar, 100, 2, 100, 100),
	)
	w := ts.World
	require.False(t, w.PlacementOK(BuildingStorage, Vec3{X: 0, Z: 0}),
		"storage far from any source must be rejected")
	require.True(t, w.PlacementOK(BuildingStorage, Vec3{X: 115, Z: 100}),
		"storage beside a source must be accepted")
}

func TestSiteDestructionDetachesWorker(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w", 1, UnitWorkerAnt, 15, 0),
	)
	w := ts.World
	site, err := w.PlaceBuilding(1, BuildingBurrow, Vec3{X: 40, Z: 0}, ts.ID("w"))
	require.NoError(t, err)

	w.Despawn(site)
	ts.RunTicks(2)
	require.Nil(t, w.Construction(ts.ID("w")),
		"task must clear when the site disappears")
}

func TestBuilderDeathReleasesSiteForReassignment(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w1", 1, UnitWorkerAnt, 15, 0),
		WithUnit("w2", 1, UnitWorkerAnt, 18, 0),
	)
	w := ts.World
	site, err := w.PlaceBuilding(1, BuildingBurrow, Vec3{X: 40, Z: 0}, ts.ID("w1"))
	require.NoError(t, err)
	require.True(t, w.Site(site).Reserved)

	w.Despawn(ts.ID("w1"))
	ts.RunTicks(2)

	s := w.Site(site)
	require.True(t, w.Alive(site), "the site outlives its builder")
	require.False(t, s.Reserved, "a dead builder's reservation must be released")
	require.Equal(t, EntityID(0), s.Worker)
	require.Equal(t, 1, ts.Log.Count("construction", "builder_lost"))

	// A fresh worker can pick the site up and finish it.
	require.NoError(t, w.AssignBuilder(site, ts.ID("w2")))
	buildTime := w.Tables.Building(BuildingBurrow).BuildTime
	got := ts.RunUntil(func(ts *TestSim) bool {
		return w.countBuildings(1, BuildingBurrow) == 1
	}, int((buildTime+30)/ts.Dt()))
	require.NotEqual(t, -1, got, "reassigned burrow never completed")
}

func TestCancelConstructionReleasesReservation(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
		WithUnit("w", 1, UnitWorkerAnt, 15, 0),
	)
	w := ts.World
	site, err := w.PlaceBuilding(1, BuildingBurrow, Vec3{X: 40, Z: 0}, ts.ID("w"))
	require.NoError(t, err)

	got := ts.RunUntil(func(ts *TestSim) bool {
		return w.Site(site).Progress > 1
	}, 1200)
	require.NotEqual(t, -1, got, "construction never started")

	w.CancelConstruction(ts.ID("w"))
	s := w.Site(site)
	require.Nil(t, w.Construction(ts.ID("w")))
	require.False(t, s.Reserved)
	require.Equal(t, EntityID(0), s.Worker)
	require.Greater(t, s.Progress, 1.0, "cancelling keeps accrued progress")

	// The same worker can resume where it left off.
	require.NoError(t, w.AssignBuilder(site, ts.ID("w")))
	buildTime := w.Tables.Building(BuildingBurrow).BuildTime
	got = ts.RunUntil(func(ts *TestSim) bool {
		return w.countBuildings(1, BuildingBurrow) == 1
	}, int((buildTime+30)/ts.Dt()))
	require.NotEqual(t, -1, got, "resumed burrow never completed")
}
