package game

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed stats.yaml
var statsYAML []byte

// UnitStats is the immutable stat block for one unit type.
type UnitStats struct {
	Type        UnitType
	Role        UnitRole
	MaxHealth   float64
	Armor       float64
	Regen       float64 // health per second when out of combat
	MaxSpeed    float64
	Accel       float64
	TurnRate    float64 // radians per second
	Damage      float64
	Range       float64
	AttackSpeed float64 // attacks per second
	DamageType  DamageType
	ArmorClass  ArmorClass
	Sight       float64
	Radius      float64
	Pop         int
	BuildTime   float64
	Cost        Cost
}

// BuildingStats is the immutable stat block for one building type.
type BuildingStats struct {
	Type         BuildingType
	MaxHealth    float64
	Radius       float64
	BuildTime    float64
	Cost         Cost
	Produces     []UnitType
	DropOff      bool
	Housing      int
	NearResource bool // placement searches near resource clusters
	MinSpacing   float64
}

// BalanceStats holds cross-cutting balance numbers.
type BalanceStats struct {
	GatherRate           float64
	CarryCapacity        float64
	BuildRate            float64
	SeparationMultiplier float64
	SeparationForce      float64
	AIIncome             [resourceTypeCount]float64
	StartingStock        [resourceTypeCount]float64
	StartingMaxPop       int
}

// StatTables bundles all static tables. Built once at startup.
type StatTables struct {
	units     [unitTypeCount]UnitStats
	buildings [buildingTypeCount]BuildingStats
	Balance   BalanceStats

	// producers[ut] lists the building types able to train ut,
	// in ascending BuildingType order.
	producers [unitTypeCount][]BuildingType
}

// Unit returns the stat block for a unit type.
func (t *StatTables) Unit(ut UnitType) *UnitStats {
	return &t.units[ut]
}

// Building returns the stat block for a building type.
func (t *StatTables) Building(bt BuildingType) *BuildingStats {
	return &t.buildings[bt]
}

// ProducersOf returns the building types that can train ut.
func (t *StatTables) ProducersOf(ut UnitType) []BuildingType {
	return t.producers[ut]
}

// IsDropOff reports whether a building type accepts resource deliveries.
func (t *StatTables) IsDropOff(bt BuildingType) bool {
	return t.buildings[bt].DropOff
}

// --- YAML wire format ---

type rawUnit struct {
	Role        string             `yaml:"role"`
	Health      float64            `yaml:"health"`
	Armor       float64            `yaml:"armor"`
	Regen       float64            `yaml:"regen"`
	Speed       float64            `yaml:"speed"`
	Accel       float64            `yaml:"accel"`
	TurnRate    float64            `yaml:"turn_rate"`
	Damage      float64            `yaml:"damage"`
	Range       float64            `yaml:"range"`
	AttackSpeed float64            `yaml:"attack_speed"`
	DamageType  string             `yaml:"damage_type"`
	ArmorClass  string             `yaml:"armor_class"`
	Sight       float64            `yaml:"sight"`
	Radius      float64            `yaml:"radius"`
	Pop         int                `yaml:"pop"`
	BuildTime   float64            `yaml:"build_time"`
	Cost        map[string]float64 `yaml:"cost"`
}

type rawBuilding struct {
	Health       float64            `yaml:"health"`
	Radius       float64            `yaml:"radius"`
	BuildTime    float64            `yaml:"build_time"`
	Cost         map[string]float64 `yaml:"cost"`
	Produces     []string           `yaml:"produces"`
	DropOff      bool               `yaml:"drop_off"`
	Housing      int                `yaml:"housing"`
	NearResource bool               `yaml:"near_resource"`
	MinSpacing   float64            `yaml:"min_spacing"`
}

type rawBalance struct {
	GatherRate           float64            `yaml:"gather_rate"`
	CarryCapacity        float64            `yaml:"carry_capacity"`
	BuildRate            float64            `yaml:"build_rate"`
	SeparationMultiplier float64            `yaml:"separation_multiplier"`
	SeparationForce      float64            `yaml:"separation_force_strength"`
	AIIncome             map[string]float64 `yaml:"ai_income"`
	StartingStock        map[string]float64 `yaml:"starting_stock"`
	StartingMaxPop       int                `yaml:"starting_max_pop"`
}

type rawTables struct {
	Units     map[string]rawUnit     `yaml:"units"`
	Buildings map[string]rawBuilding `yaml:"buildings"`
	Balance   rawBalance             `yaml:"balance"`
}

var unitTypesByName = map[string]UnitType{
	"worker_ant":  UnitWorkerAnt,
	"soldier_ant": UnitSoldierAnt,
	"stinkbug":    UnitStinkbug,
	"wasp":        UnitWasp,
	"stag_beetle": UnitStagBeetle,
	"dragonfly":   UnitDragonfly,
	"mantis":      UnitMantis,
}

var buildingTypesByName = map[string]BuildingType{
	"queen":      BuildingQueen,
	"nursery":    BuildingNursery,
	"storage":    BuildingStorage,
	"barracks":   BuildingBarracks,
	"apiary":     BuildingApiary,
	"beetle_pen": BuildingBeetlePen,
	"burrow":     BuildingBurrow,
}

var rolesByName = map[string]UnitRole{
	"worker": RoleWorker,
	"melee":  RoleMelee,
	"ranged": RoleRanged,
	"flyer":  RoleFlyer,
	"siege":  RoleSiege,
	"scout":  RoleScout,
	"elite":  RoleElite,
}

var damageTypesByName = map[string]DamageType{
	"melee":  DamageMelee,
	"pierce": DamagePierce,
	"siege":  DamageSiege,
}

var armorClassesByName = map[string]ArmorClass{
	"light":     ArmorLight,
	"heavy":     ArmorHeavy,
	"structure": ArmorStructure,
}

var resourceTypesByName = map[string]ResourceType{
	"nectar":     Nectar,
	"chitin":     Chitin,
	"minerals":   Minerals,
	"pheromones": Pheromones,
}

func parseCost(m map[string]float64) (Cost, error) {
	// Stable order: by resource enum, so identical tables always compare equal.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return resourceTypesByName[keys[i]] < resourceTypesByName[keys[j]]
	})
	var c Cost
	for _, k := range keys {
		rt, ok := resourceTypesByName[k]
		if !ok {
			return nil, fmt.Errorf("unknown resource %q in cost", k)
		}
		c = append(c, CostEntry{Resource: rt, Amount: m[k]})
	}
	return c, nil
}

func parseResourceVector(m map[string]float64) ([resourceTypeCount]float64, error) {
	var out [resourceTypeCount]float64
	for k, v := range m {
		rt, ok := resourceTypesByName[k]
		if !ok {
			return out, fmt.Errorf("unknown resource %q", k)
		}
		out[rt] = v
	}
	return out, nil
}

// LoadTables parses a stat table document. Missing unit or building entries
// are an error: the catalog is closed and every type must be specified.
func LoadTables(doc []byte) (*StatTables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("stat tables: %w", err)
	}

	t := &StatTables{}
	seen := [unitTypeCount]bool{}
	for name, ru := range raw.Units {
		ut, ok := unitTypesByName[name]
		if !ok {
			return nil, fmt.Errorf("stat tables: unknown unit type %q", name)
		}
		role, ok := rolesByName[ru.Role]
		if !ok {
			return nil, fmt.Errorf("stat tables: unit %q has unknown role %q", name, ru.Role)
		}
		dt, ok := damageTypesByName[ru.DamageType]
		if !ok {
			return nil, fmt.Errorf("stat tables: unit %q has unknown damage type %q", name, ru.DamageType)
		}
		ac, ok := armorClassesByName[ru.ArmorClass]
		if !ok {
			return nil, fmt.Errorf("stat tables: unit %q has unknown armor class %q", name, ru.ArmorClass)
		}
		cost, err := parseCost(ru.Cost)
		if err != nil {
			return nil, fmt.Errorf("stat tables: unit %q: %w", name, err)
		}
		t.units[ut] = UnitStats{
			Type:        ut,
			Role:        role,
			MaxHealth:   ru.Health,
			Armor:       ru.Armor,
			Regen:       ru.Regen,
			MaxSpeed:    ru.Speed,
			Accel:       ru.Accel,
			TurnRate:    ru.TurnRate,
			Damage:      ru.Damage,
			Range:       ru.Range,
			AttackSpeed: ru.AttackSpeed,
			DamageType:  dt,
			ArmorClass:  ac,
			Sight:       ru.Sight,
			Radius:      ru.Radius,
			Pop:         ru.Pop,
			BuildTime:   ru.BuildTime,
			Cost:        cost,
		}
		seen[ut] = true
	}
	for ut := UnitType(0); ut < unitTypeCount; ut++ {
		if !seen[ut] {
			return nil, fmt.Errorf("stat tables: missing unit %q", ut)
		}
	}

	seenB := [buildingTypeCount]bool{}
	for name, rb := range raw.Buildings {
		bt, ok := buildingTypesByName[name]
		if !ok {
			return nil, fmt.Errorf("stat tables: unknown building type %q", name)
		}
		cost, err := parseCost(rb.Cost)
		if err != nil {
			return nil, fmt.Errorf("stat tables: building %q: %w", name, err)
		}
		var produces []UnitType
		for _, un := range rb.Produces {
			put, ok := unitTypesByName[un]
			if !ok {
				return nil, fmt.Errorf("stat tables: building %q produces unknown unit %q", name, un)
			}
			produces = append(produces, put)
		}
		t.buildings[bt] = BuildingStats{
			Type:         bt,
			MaxHealth:    rb.Health,
			Radius:       rb.Radius,
			BuildTime:    rb.BuildTime,
			Cost:         cost,
			Produces:     produces,
			DropOff:      rb.DropOff,
			Housing:      rb.Housing,
			NearResource: rb.NearResource,
			MinSpacing:   rb.MinSpacing,
		}
		seenB[bt] = true
	}
	for bt := BuildingType(0); bt < buildingTypeCount; bt++ {
		if !seenB[bt] {
			return nil, fmt.Errorf("stat tables: missing building %q", bt)
		}
	}

	income, err := parseResourceVector(raw.Balance.AIIncome)
	if err != nil {
		return nil, fmt.Errorf("stat tables: ai_income: %w", err)
	}
	stock, err := parseResourceVector(raw.Balance.StartingStock)
	if err != nil {
		return nil, fmt.Errorf("stat tables: starting_stock: %w", err)
	}
	t.Balance = BalanceStats{
		GatherRate:           raw.Balance.GatherRate,
		CarryCapacity:        raw.Balance.CarryCapacity,
		BuildRate:            raw.Balance.BuildRate,
		SeparationMultiplier: raw.Balance.SeparationMultiplier,
		SeparationForce:      raw.Balance.SeparationForce,
		AIIncome:             income,
		StartingStock:        stock,
		StartingMaxPop:       raw.Balance.StartingMaxPop,
	}

	// Producer mapping in ascending building-type order so dispatch ties
	// break the same way everywhere.
	for bt := BuildingType(0); bt < buildingTypeCount; bt++ {
		for _, ut := range t.buildings[bt].Produces {
			t.producers[ut] = append(t.producers[ut], bt)
		}
	}

	return t, nil
}

var (
	defaultTables     *StatTables
	defaultTablesOnce sync.Once
)

// Tables returns the embedded default stat tables, loading them once.
// The embedded document ships with the binary; a parse failure is a bug.
func Tables() *StatTables {
	defaultTablesOnce.Do(func() {
		t, err := LoadTables(statsYAML)
		if err != nil {
			panic(err)
		}
		defaultTables = t
	})
	return defaultTables
}
