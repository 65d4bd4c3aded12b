package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedTablesLoad(t *testing.T) {
	tb := Tables()

	worker := tb.Unit(UnitWorkerAnt)
	require.Equal(t, RoleWorker, worker.Role)
	require.Equal(t, 60.0, worker.MaxHealth)
	require.Equal(t, 14.0, worker.MaxSpeed)
	require.Equal(t, 1, worker.Pop)

	mantis := tb.Unit(UnitMantis)
	require.Equal(t, RoleElite, mantis.Role)
	// The elite costs all four resources, pheromones included.
	require.Len(t, mantis.Cost, 4)

	queen := tb.Building(BuildingQueen)
	require.Equal(t, 10, queen.Housing)
	require.True(t, queen.DropOff)

	storage := tb.Building(BuildingStorage)
	require.True(t, storage.NearResource)
}

func TestProducerMapping(t *testing.T) {
	tb := Tables()

	require.Equal(t, []BuildingType{BuildingQueen, BuildingNursery}, tb.ProducersOf(UnitWorkerAnt))
	require.Equal(t, []BuildingType{BuildingBarracks}, tb.ProducersOf(UnitSoldierAnt))
	require.Equal(t, []BuildingType{BuildingApiary}, tb.ProducersOf(UnitWasp))
	require.Equal(t, []BuildingType{BuildingBeetlePen}, tb.ProducersOf(UnitStagBeetle))

	require.True(t, tb.IsDropOff(BuildingQueen))
	require.True(t, tb.IsDropOff(BuildingStorage))
	require.False(t, tb.IsDropOff(BuildingBarracks))
}

func TestDamageModifierTable(t *testing.T) {
	// Siege shreds structures and armor, underperforms against light.
	require.Equal(t, 1.5, DamageModifier(DamageSiege, ArmorStructure))
	require.Equal(t, 1.0, DamageModifier(DamageSiege, ArmorHeavy))
	require.Equal(t, 0.7, DamageModifier(DamageSiege, ArmorLight))

	// Pierce struggles against heavy plate.
	require.Equal(t, 0.6, DamageModifier(DamagePierce, ArmorHeavy))
	require.Equal(t, 1.0, DamageModifier(DamageMelee, ArmorLight))
}

func TestLoadTablesRejectsUnknownNames(t *testing.T) {
	_, err := LoadTables([]byte("units:\n  gremlin:\n    role: worker\n"))
	require.Error(t, err)
}

func TestCostsAreDeterministic(t *testing.T) {
	a := Tables().Unit(UnitMantis).Cost
	b := Tables().Unit(UnitMantis).Cost
	require.Equal(t, a, b)
	for i := 1; i < len(a); i++ {
		require.Less(t, int(a[i-1].Resource), int(a[i].Resource))
	}
}
