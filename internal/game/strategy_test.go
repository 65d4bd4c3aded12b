package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailedGoalCoolsDown(t *testing.T) {
	// No producers at all: every train goal must fail once, then stay
	// off the queue until its cooldown expires.
	ts := NewTestSim(WithAIPlayer(1))
	pl := ts.World.Player(1)
	s := pl.strategy

	// Three strategy ticks: queue fills, then both goals fail in turn.
	ts.RunSeconds(6.3)
	require.Equal(t, 2, ts.Log.Count("strategy", "goal_failed"))
	require.Empty(t, s.Goals())

	// Well inside the 30 s cooldown nothing is retried.
	ts.RunSeconds(6)
	require.Equal(t, 2, ts.Log.Count("strategy", "goal_failed"))
	require.Empty(t, s.Goals())

	// Past it the worker goal comes back.
	ts.RunSeconds(25)
	require.Greater(t, ts.Log.Count("strategy", "goal_failed"), 2)
}

func TestStrategyTrainsThroughPublicSurface(t *testing.T) {
	ts := NewTestSim(
		WithAIPlayer(1),
		WithBuilding("queen", 1, BuildingQueen, 0, 0),
	)
	w := ts.World

	// Two strategy ticks: the first queues goals, the second trains.
	got := ts.RunUntil(func(ts *TestSim) bool {
		return ts.Log.Count("strategy", "goal_done") > 0
	}, int(5/ts.Dt()))
	require.NotEqual(t, -1, got, "no goal ever succeeded")
	require.Greater(t, w.QueueLen(ts.ID("queen")), 0)
}

func TestPhaseFollowsArmySize(t *testing.T) {
	opts := []SimOption{WithAIPlayer(1)}
	for i := 0; i < 15; i++ {
		opts = append(opts, WithUnit(workerLabel(i), 1, UnitWorkerAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	pl := ts.World.Player(1)
	pl.MaxPop = 60

	ts.RunSeconds(2.1)
	require.Equal(t, PhaseMidGame, pl.strategy.Phase)
	require.Equal(t, 1, ts.Log.Count("strategy", "phase"))
}

func TestLateGameNeedsArmyAndEconomy(t *testing.T) {
	opts := []SimOption{WithAIPlayer(1), WithHumanPlayer(2)}
	for i := 0; i < 20; i++ {
		opts = append(opts, WithUnit(workerLabel(i), 1, UnitWorkerAnt, float64(i*3), 0))
	}
	for i := 0; i < 15; i++ {
		opts = append(opts, WithUnit("m"+string(rune('a'+i)), 1, UnitSoldierAnt, float64(i*3), 20))
	}
	ts := NewTestSim(opts...)
	pl := ts.World.Player(1)
	pl.MaxPop = 60

	ts.RunSeconds(2.1)
	require.Equal(t, PhaseLateGame, pl.strategy.Phase)

	// Late game with 15 military queues the attack goal.
	require.True(t, pl.strategy.queued("attack"))
}

func workerLabel(i int) string {
	return "w" + string(rune('a'+i))
}

func TestAppendGoalsOrdersNeeds(t *testing.T) {
	ts := NewTestSim(WithAIPlayer(1))
	w := ts.World
	pl := w.Player(1)
	s := pl.strategy
	pl.Pop = 8
	pl.MaxPop = 10

	// 8 workers / 4 military, early game, nothing built.
	w.appendGoals(pl, s, 8, 4, 0)

	var keys []string
	for _, g := range s.Goals() {
		keys = append(keys, g.key())
	}
	require.Equal(t, []string{
		"worker",
		"construct/burrow",
		"construct/storage",
		"construct/barracks",
	}, keys)
}

func TestGoalQueueIsBounded(t *testing.T) {
	ts := NewTestSim(WithAIPlayer(1))
	pl := ts.World.Player(1)
	s := pl.strategy
	for i := 0; i < goalQueueBound; i++ {
		s.goals = append(s.goals, Goal{Kind: GoalAttackEnemy, Enemy: PlayerID(i + 10)})
	}

	ts.World.appendGoals(pl, s, 0, 0, 0)
	require.Len(t, s.Goals(), goalQueueBound)
}

func TestFindPlacementHugsResources(t *testing.T) {
	ts := NewTestSim(
		WithAIPlayer(1),
		WithResource("nectar", Nectar, 400, 4, 60, 0),
	)
	w := ts.World
	pl := w.Player(1)
	pl.BaseAnchor = Vec3{}

	pos, ok := w.findPlacement(pl, BuildingStorage)
	require.True(t, ok)
	srcPos := w.Transform(ts.ID("nectar")).Pos
	require.LessOrEqual(t, pos.DistXZ(srcPos), nearResourceDist,
		"resource-adjacent buildings must land beside a source")
	require.True(t, w.PlacementOK(BuildingStorage, pos))
}

func TestPickMilitaryTypeFollowsTech(t *testing.T) {
	ts := NewTestSim(
		WithAIPlayer(1),
		WithBuilding("pen", 1, BuildingBeetlePen, 0, 0),
		WithBuilding("apiary", 1, BuildingApiary, 40, 0),
	)
	w := ts.World

	require.Equal(t, UnitSoldierAnt, w.pickMilitaryType(1, PhaseEarlyGame))
	require.Equal(t, UnitWasp, w.pickMilitaryType(1, PhaseMidGame))
	require.Equal(t, UnitStagBeetle, w.pickMilitaryType(1, PhaseLateGame))
}
