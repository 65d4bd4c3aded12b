package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Structural invariants checked over a live skirmish. The world is the
// stock two-player map with both sides under AI control, which exercises
// the full pipeline: economy, production, construction, combat, deaths.

func checkInvariants(t *testing.T, w *World) {
	t.Helper()

	for _, pid := range w.Players() {
		pl := w.Player(pid)
		for rt := ResourceType(0); rt < resourceTypeCount; rt++ {
			require.GreaterOrEqual(t, pl.Stock[rt], 0.0,
				"tick %d: player %d has negative %s", w.Tick(), pid, rt)
		}
		require.GreaterOrEqual(t, pl.Pop, 0, "tick %d: negative population", w.Tick())
		require.LessOrEqual(t, pl.Pop, pl.MaxPop,
			"tick %d: player %d over the population cap", w.Tick(), pid)

		// Pop must match the live roster exactly. Units that died this
		// tick have already been deducted, so they are skipped.
		sum := 0
		for _, id := range w.UnitsOf(pid) {
			if h := w.Health(id); h != nil && h.Dying {
				continue
			}
			sum += w.Tables.Unit(w.Unit(id).Type).Pop
		}
		require.Equal(t, sum, pl.Pop,
			"tick %d: player %d population accounting drifted", w.Tick(), pid)
	}

	// Every grid record points at a live entity and its cached position
	// is at most one refresh behind the true transform. Entities that died
	// this tick leave the grid immediately but despawn at the next flush,
	// so the reverse check skips them.
	w.EachEntity(func(id EntityID) {
		tr := w.Transform(id)
		if tr == nil {
			require.False(t, w.Grid().Contains(id))
			return
		}
		if h := w.Health(id); h != nil && h.Dying {
			return
		}
		e, ok := w.Grid().EntryFor(id)
		require.True(t, ok, "tick %d: live entity %d missing from grid", w.Tick(), id)
		require.Less(t, e.Pos.DistXZ(tr.Pos), defaultGridCellSize,
			"tick %d: grid record for %d is stale", w.Tick(), id)
	})
	for id := range w.grid.where {
		require.True(t, w.Alive(id),
			"tick %d: grid holds a record for dead entity %d", w.Tick(), id)
	}
	require.Zero(t, w.Grid().RepairedInserts(),
		"tick %d: the spatial refresh double-inserted", w.Tick())

	// Production queues never exceed their bound, and every queue belongs
	// to a completed building.
	w.EachBuilding(func(id EntityID, b *BuildingInfo) {
		require.LessOrEqual(t, w.QueueLen(id), productionQueueBound)
	})

	// Sources never go negative or over their slot cap.
	w.EachResource(func(id EntityID, src *ResourceSource) {
		require.GreaterOrEqual(t, src.Amount, 0.0)
		require.LessOrEqual(t, src.Gatherers, src.MaxGatherers)
	})
}

func TestSkirmishHoldsInvariants(t *testing.T) {
	w := NewSkirmishWorld(11, nil)
	// Both sides on automation so orders flow every cadence.
	for _, pid := range w.Players() {
		pl := w.Player(pid)
		if !pl.AI {
			pl.AI = true
			pl.strategy = newStrategyState()
			pl.tactics = newTacticsState()
		}
	}

	const dt = 0.05
	for tick := 0; tick < 1200; tick++ { // one sim minute
		w.StepSim(dt)
		if tick%40 == 0 {
			checkInvariants(t, w)
		}
	}
	checkInvariants(t, w)
}

func TestDeterministicWorldsStayInLockstep(t *testing.T) {
	a := NewSkirmishWorld(7, nil)
	b := NewSkirmishWorld(7, nil)

	for tick := 0; tick < 400; tick++ {
		a.StepSim(0.05)
		b.StepSim(0.05)
	}
	require.Equal(t, a.EntityCount(), b.EntityCount())
	for _, pid := range a.Players() {
		require.Equal(t, a.Player(pid).Stock, b.Player(pid).Stock)
		require.Equal(t, a.Player(pid).Pop, b.Player(pid).Pop)
	}
}
