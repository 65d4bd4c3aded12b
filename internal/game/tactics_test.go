package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// presetIntel hand-writes an enemy report the way the intel layer would
// after scouting, so stance rules can be driven without a long sim warmup.
func presetIntel(pl *PlayerState, enemy PlayerID, military, workers int, base Vec3) *EnemyReport {
	r := pl.Intel(enemy)
	r.Military = military
	r.Workers = workers
	r.BaseLocation = base
	r.Threat = threatFromMilitary(military)
	r.LastSeen = 0.1
	return r
}

func TestAggressionTransitionMarchesOnEnemyBase(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithAIPlayer(2),
		// Presence anchor for target selection, far out of sight.
		WithBuilding("enemyQueen", 1, BuildingQueen, 100, 100),
	}
	for i := 0; i < 7; i++ {
		opts = append(opts, WithUnit(soldierLabel(i), 2, UnitSoldierAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	w := ts.World
	pl := w.Player(2)

	base := Vec3{X: 100, Z: 100}
	presetIntel(pl, 1, 4, 0, base)
	// Last attack long enough ago that the cooldown is clear.
	pl.tactics.LastAttackAt = -100

	// One tactics cadence: 7 own vs 4 enemy crosses the 1.5x bar.
	ts.RunSeconds(0.6)

	require.Equal(t, StanceAggressive, pl.tactics.Stance)
	require.True(t, pl.tactics.Attacking)
	require.Equal(t, 1, ts.Log.Count("tactics", "attack_launched"))
	for i := 0; i < 7; i++ {
		k := w.Kinematic(ts.ID(soldierLabel(i)))
		require.True(t, k.HasTarget, "every soldier must be ordered out")
		require.Equal(t, base.X, k.Target.X)
		require.Equal(t, base.Z, k.Target.Z)
	}
}

func soldierLabel(i int) string {
	return "s" + string(rune('a'+i))
}

func TestHighThreatOverridesAggression(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithAIPlayer(2),
		WithBuilding("enemyQueen", 1, BuildingQueen, 100, 100),
	}
	for i := 0; i < 7; i++ {
		opts = append(opts, WithUnit(soldierLabel(i), 2, UnitSoldierAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	pl := ts.World.Player(2)

	r := presetIntel(pl, 1, 4, 0, Vec3{X: 100, Z: 100})
	r.Threat = ThreatHigh
	pl.tactics.LastAttackAt = -100

	ts.RunSeconds(0.6)
	// Threat is checked before the aggression ratio.
	require.Equal(t, StanceDefensive, pl.tactics.Stance)
	require.False(t, pl.tactics.Attacking)
}

func TestHarassSplitsSquadAroundEnemyBase(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithAIPlayer(2),
		WithBuilding("enemyQueen", 1, BuildingQueen, 100, 100),
	}
	for i := 0; i < 5; i++ {
		opts = append(opts, WithUnit(soldierLabel(i), 2, UnitSoldierAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	w := ts.World
	pl := w.Player(2)

	base := Vec3{X: 100, Z: 100}
	r := presetIntel(pl, 1, 1, 10, base)
	r.EcoFocus = true
	// Army of 5 is below the aggression floor, so harass wins.

	ts.RunSeconds(0.6)
	require.Equal(t, StanceHarass, pl.tactics.Stance)
	require.Len(t, pl.tactics.Groups, 2)
	require.Equal(t, RoleHarassers, pl.tactics.Groups[0].Role)
	require.Len(t, pl.tactics.Groups[0].Units, harassSquadSize)
	require.Equal(t, RoleDefenders, pl.tactics.Groups[1].Role)
	require.Len(t, pl.tactics.Groups[1].Units, 2)

	// Harassers aim at the periphery, not the base itself.
	for _, id := range pl.tactics.Groups[0].Units {
		k := w.Kinematic(id)
		require.True(t, k.HasTarget)
		require.InDelta(t, harassRingRadius, k.Target.DistXZ(base), 0.01)
	}
}

func TestOutnumberedArmyRetreats(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithAIPlayer(2),
		WithBuilding("enemyQueen", 1, BuildingQueen, 100, 100),
	}
	for i := 0; i < 6; i++ {
		opts = append(opts, WithUnit(soldierLabel(i), 2, UnitSoldierAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	pl := ts.World.Player(2)

	// 13 enemies vs 6 own, but only medium perceived threat so the
	// retreat rule is what fires.
	r := presetIntel(pl, 1, 13, 0, Vec3{X: 100, Z: 100})
	r.Threat = ThreatMedium
	pl.tactics.LastAttackAt = 0 // cooldown blocks aggression too

	ts.RunSeconds(0.6)
	require.Equal(t, StanceRetreat, pl.tactics.Stance)
}

func TestStancePersistsWhenNoRuleFires(t *testing.T) {
	opts := []SimOption{
		WithHumanPlayer(1),
		WithAIPlayer(2),
		WithBuilding("enemyQueen", 1, BuildingQueen, 100, 100),
	}
	for i := 0; i < 5; i++ {
		opts = append(opts, WithUnit(soldierLabel(i), 2, UnitSoldierAnt, float64(i*3), 0))
	}
	ts := NewTestSim(opts...)
	pl := ts.World.Player(2)

	// 5 own vs 4 enemy, medium threat, no eco focus: nothing matches,
	// so whatever stance was in force stays in force.
	presetIntel(pl, 1, 4, 2, Vec3{X: 100, Z: 100})
	pl.tactics.Stance = StanceHarass
	pl.tactics.LastAttackAt = 0

	ts.RunSeconds(0.6)
	require.Equal(t, StanceHarass, pl.tactics.Stance)
}

func TestTargetSticksWhileEnemyHasPresence(t *testing.T) {
	ts := NewTestSim(
		WithHumanPlayer(1),
		WithHumanPlayer(2),
		WithAIPlayer(3),
		WithBuilding("q1", 1, BuildingQueen, 100, 100),
		WithBuilding("q2", 2, BuildingQueen, -100, -100),
		WithUnit("s", 3, UnitSoldierAnt, 0, 0),
	)
	w := ts.World
	pl := w.Player(3)
	pl.tactics.TargetPlayer = 2

	require.Equal(t, PlayerID(2), w.chooseTargetPlayer(3, pl.tactics))

	// Target eliminated: fall over to the lowest-ID survivor.
	w.Despawn(ts.ID("q2"))
	ts.RunTicks(2)
	require.Equal(t, PlayerID(1), w.chooseTargetPlayer(3, pl.tactics))
}
