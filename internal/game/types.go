package game

// EntityID is an opaque identity for anything living in the world store.
// Zero is never a valid entity.
type EntityID uint64

// PlayerID identifies a player record. Player 0 is reserved for the
// neutral/environment owner (resource sources, obstacles).
type PlayerID int

const NeutralPlayer PlayerID = 0

// --- Resources ---

// ResourceType enumerates the four gatherable resources.
type ResourceType int

const (
	Nectar ResourceType = iota
	Chitin
	Minerals
	Pheromones
	resourceTypeCount
)

func (rt ResourceType) String() string {
	switch rt {
	case Nectar:
		return "nectar"
	case Chitin:
		return "chitin"
	case Minerals:
		return "minerals"
	case Pheromones:
		return "pheromones"
	default:
		return "unknown"
	}
}

// CostEntry is one line of a purchase cost.
type CostEntry struct {
	Resource ResourceType
	Amount   float64
}

// Cost is a vector of resource amounts required for a purchase.
type Cost []CostEntry

// --- Unit types ---

// UnitType enumerates the unit catalog. Stats live in the static table;
// the enum itself carries no behaviour.
type UnitType int

const (
	UnitWorkerAnt UnitType = iota
	UnitSoldierAnt
	UnitStinkbug
	UnitWasp
	UnitStagBeetle
	UnitDragonfly
	UnitMantis
	unitTypeCount
)

func (ut UnitType) String() string {
	switch ut {
	case UnitWorkerAnt:
		return "worker_ant"
	case UnitSoldierAnt:
		return "soldier_ant"
	case UnitStinkbug:
		return "stinkbug"
	case UnitWasp:
		return "wasp"
	case UnitStagBeetle:
		return "stag_beetle"
	case UnitDragonfly:
		return "dragonfly"
	case UnitMantis:
		return "mantis"
	default:
		return "unknown"
	}
}

// UnitRole partitions the catalog for capability checks.
type UnitRole int

const (
	RoleWorker UnitRole = iota
	RoleMelee
	RoleRanged
	RoleFlyer
	RoleSiege
	RoleScout
	RoleElite
)

func (r UnitRole) String() string {
	switch r {
	case RoleWorker:
		return "worker"
	case RoleMelee:
		return "melee"
	case RoleRanged:
		return "ranged"
	case RoleFlyer:
		return "flyer"
	case RoleSiege:
		return "siege"
	case RoleScout:
		return "scout"
	case RoleElite:
		return "elite"
	default:
		return "unknown"
	}
}

// IsMilitary reports whether the role fights by default.
func (r UnitRole) IsMilitary() bool {
	return r != RoleWorker
}

// --- Building types ---

// BuildingType enumerates the building catalog.
type BuildingType int

const (
	BuildingQueen BuildingType = iota
	BuildingNursery
	BuildingStorage
	BuildingBarracks
	BuildingApiary
	BuildingBeetlePen
	BuildingBurrow
	buildingTypeCount
)

func (bt BuildingType) String() string {
	switch bt {
	case BuildingQueen:
		return "queen"
	case BuildingNursery:
		return "nursery"
	case BuildingStorage:
		return "storage"
	case BuildingBarracks:
		return "barracks"
	case BuildingApiary:
		return "apiary"
	case BuildingBeetlePen:
		return "beetle_pen"
	case BuildingBurrow:
		return "burrow"
	default:
		return "unknown"
	}
}

// --- Damage model ---

// DamageType selects a row of the damage modifier table.
type DamageType int

const (
	DamageMelee DamageType = iota
	DamagePierce
	DamageSiege
	damageTypeCount
)

func (dt DamageType) String() string {
	switch dt {
	case DamageMelee:
		return "melee"
	case DamagePierce:
		return "pierce"
	case DamageSiege:
		return "siege"
	default:
		return "unknown"
	}
}

// ArmorClass selects a column of the damage modifier table.
type ArmorClass int

const (
	ArmorLight ArmorClass = iota
	ArmorHeavy
	ArmorStructure
	armorClassCount
)

func (ac ArmorClass) String() string {
	switch ac {
	case ArmorLight:
		return "light"
	case ArmorHeavy:
		return "heavy"
	case ArmorStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// damageModifiers[damage type][armor class]. Siege shreds structures,
// pierce is weak into heavy armor.
var damageModifiers = [damageTypeCount][armorClassCount]float64{
	DamageMelee:  {1.0, 0.85, 0.6},
	DamagePierce: {1.0, 0.6, 0.5},
	DamageSiege:  {0.7, 1.0, 1.5},
}

// DamageModifier returns the multiplier applied after armor subtraction.
func DamageModifier(dt DamageType, ac ArmorClass) float64 {
	if dt < 0 || dt >= damageTypeCount || ac < 0 || ac >= armorClassCount {
		return 1.0
	}
	return damageModifiers[dt][ac]
}

// --- Collision classes ---

// CollisionClass determines which entities repel each other during
// separation. Flyers only separate from flyers.
type CollisionClass int

const (
	CollideGround CollisionClass = iota
	CollideAir
	CollideStatic // buildings, sites, obstacles, resource nodes
)

// --- Activity signal (render/animation boundary) ---

// Activity is the high-level per-entity state exposed to the animation
// controller.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityMoving
	ActivityAttacking
	ActivityGathering
	ActivityDying
	ActivityDead
)

func (a Activity) String() string {
	switch a {
	case ActivityIdle:
		return "idle"
	case ActivityMoving:
		return "moving"
	case ActivityAttacking:
		return "attacking"
	case ActivityGathering:
		return "gathering"
	case ActivityDying:
		return "dying"
	case ActivityDead:
		return "dead"
	default:
		return "unknown"
	}
}

// --- Obstacles ---

// ObstacleKind distinguishes environment obstacle classes. Placement keeps
// a wider berth around organic obstacles than around rocks.
type ObstacleKind int

const (
	ObstacleRock ObstacleKind = iota
	ObstacleMushroom
	ObstacleTree
)

func (ok ObstacleKind) String() string {
	switch ok {
	case ObstacleRock:
		return "rock"
	case ObstacleMushroom:
		return "mushroom"
	case ObstacleTree:
		return "tree"
	default:
		return "unknown"
	}
}
