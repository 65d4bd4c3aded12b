package game

// Component records. The store owns every record exclusively; systems hold
// entity IDs, never pointers, across ticks.

// compKind indexes the per-type change-tracking sets.
type compKind int

const (
	kindTransform compKind = iota
	kindKinematic
	kindHealth
	kindCombat
	kindUnit
	kindGatherer
	kindVision
	kindSelectable
	kindCollider
	kindBuilding
	kindProduction
	kindResource
	kindObstacle
	kindSite
	kindConstruction
	compKindCount
)

// Transform is world position plus planar heading.
type Transform struct {
	Pos     Vec3
	Heading float64
}

// Kinematic is per-unit movement state. Stat limits (speed, accel, turn)
// come from the unit's stat block, not from here.
type Kinematic struct {
	Vel       Vec3
	Target    Vec3
	HasTarget bool

	// Stuck detection: ring of recent positions sampled once per tick,
	// plus escalation bookkeeping.
	history     [stuckHistoryLen]Vec3
	historyLen  int
	historyHead int
	stuckSince  float64 // sim time when low displacement was first seen; 0 = not stuck
	lastAttempt float64 // sim time of the last recovery attempt
	attempts    int
}

// Health tracks damage state. Dying marks the one tick between the death
// stage and the despawn flush.
type Health struct {
	Current      float64
	Max          float64
	LastDamageAt float64
	Dying        bool
}

// CombatPhase is the per-unit combat state machine.
type CombatPhase int

const (
	CombatIdle CombatPhase = iota
	CombatMovingToCombat
	CombatMovingToAttack
	CombatInCombat
	CombatMoving // target drifted out of range but within 2x range
)

func (cp CombatPhase) String() string {
	switch cp {
	case CombatIdle:
		return "idle"
	case CombatMovingToCombat:
		return "moving_to_combat"
	case CombatMovingToAttack:
		return "moving_to_attack"
	case CombatInCombat:
		return "in_combat"
	case CombatMoving:
		return "combat_moving"
	default:
		return "unknown"
	}
}

// CombatState is attached to every unit able to fight.
type CombatState struct {
	Phase        CombatPhase
	Target       EntityID // weak reference; validated every use
	LastAttackAt float64
	AutoAttack   bool
}

// UnitInfo identifies a unit entity.
type UnitInfo struct {
	Player PlayerID
	Type   UnitType
}

// GatherPhase is the worker resource-cycle state machine.
type GatherPhase int

const (
	GatherIdle GatherPhase = iota
	GatherMovingToResource
	GatherGathering
	GatherReturningToBase
	GatherDelivering
)

func (gp GatherPhase) String() string {
	switch gp {
	case GatherIdle:
		return "idle"
	case GatherMovingToResource:
		return "moving_to_resource"
	case GatherGathering:
		return "gathering"
	case GatherReturningToBase:
		return "returning_to_base"
	case GatherDelivering:
		return "delivering"
	default:
		return "unknown"
	}
}

// GathererState is attached to workers. Source and DropOff are weak
// references validated before every use.
type GathererState struct {
	Phase       GatherPhase
	Source      EntityID
	SourceType  ResourceType // type of the last assigned source; reroutes prefer it
	DropOff     EntityID
	Carried     float64
	CarriedType ResourceType
	reserved    bool // currently counted in the source's gatherer slots
}

// VisionState caches the enemy entities seen this tick.
type VisionState struct {
	Visible []EntityID
}

// Selectable marks an entity the player can select.
type Selectable struct {
	Selected bool
}

// Collider participates in separation, obstacle rejection, and placement.
type Collider struct {
	Radius float64
	Class  CollisionClass
}

// BuildingInfo identifies a completed (or completing) building entity.
type BuildingInfo struct {
	Player      PlayerID
	Type        BuildingType
	Complete    bool
	RallyOffset Vec3 // spawn/rally point relative to the building
}

// ProductionQueue is attached to producer buildings.
type ProductionQueue struct {
	Items    []UnitType // FIFO, bounded by productionQueueBound
	Progress float64    // seconds accumulated toward Items[0]
}

// ResourceSource is a gatherable node.
type ResourceSource struct {
	Type         ResourceType
	Amount       float64
	MaxGatherers int
	Gatherers    int
}

// Depleted reports whether the source can no longer be gathered.
func (rs *ResourceSource) Depleted() bool {
	return rs.Amount <= 0
}

// ObstacleInfo marks a static environment obstacle.
type ObstacleInfo struct {
	Kind ObstacleKind
}

// BuildingSite is a planned building awaiting construction.
type BuildingSite struct {
	Type     BuildingType
	Player   PlayerID
	Worker   EntityID // weak reference to the assigned worker
	Reserved bool
	Started  bool
	Progress float64 // seconds of construction applied
}

// ConstructionTask is attached to the worker assigned to a site.
type ConstructionTask struct {
	Site         EntityID // weak reference
	Building     BuildingType
	TargetPos    Vec3
	MovingToSite bool
	TotalTime    float64
}
