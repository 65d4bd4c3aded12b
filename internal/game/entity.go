package game

import "sort"

// The entity store. All component records live in typed maps keyed by
// EntityID; iteration helpers walk IDs in ascending order so every system
// sees the same stable ordering.
//
// Spawns and despawns requested while a tick is running are buffered and
// applied at the flush point at the start of the next tick, before the
// spatial refresh reads the store.

type spawnRequest func(*World)

// newEntity allocates an ID and registers it live. Callers attach
// components immediately after; only the flush path and scenario setup
// may call this.
func (w *World) newEntity() EntityID {
	w.nextID++
	id := w.nextID
	w.ids = append(w.ids, id) // IDs ascend, so append keeps the slice sorted
	w.alive[id] = true
	return id
}

// Alive reports whether the entity currently exists in the store.
func (w *World) Alive(id EntityID) bool {
	return w.alive[id]
}

// Despawn schedules the entity for removal at the next flush point.
func (w *World) Despawn(id EntityID) {
	if !w.alive[id] {
		return
	}
	w.pendingDespawn = append(w.pendingDespawn, id)
}

// deferSpawn buffers a spawn to run at the next flush point.
func (w *World) deferSpawn(fn spawnRequest) {
	w.pendingSpawn = append(w.pendingSpawn, fn)
}

// Flush applies buffered spawns and despawns. Runs at the start of every
// tick; scenario setup calls it once after building the world.
func (w *World) Flush() {
	despawns := w.pendingDespawn
	w.pendingDespawn = nil
	for _, id := range despawns {
		w.removeEntity(id)
	}
	spawns := w.pendingSpawn
	w.pendingSpawn = nil
	for _, fn := range spawns {
		fn(w)
	}
}

func (w *World) removeEntity(id EntityID) {
	if !w.alive[id] {
		return
	}

	// A gatherer holding a source slot must give it back, or the slot
	// leaks and caps the source forever.
	if g := w.gatherers[id]; g != nil && g.reserved {
		if src := w.resources[g.Source]; src != nil {
			src.Gatherers--
		}
	}

	delete(w.transforms, id)
	delete(w.kinematics, id)
	delete(w.healths, id)
	delete(w.combats, id)
	delete(w.units, id)
	delete(w.gatherers, id)
	delete(w.visions, id)
	delete(w.selectables, id)
	delete(w.colliders, id)
	delete(w.buildings, id)
	delete(w.queues, id)
	delete(w.resources, id)
	delete(w.obstacles, id)
	delete(w.sites, id)
	delete(w.tasks, id)
	delete(w.alive, id)

	w.grid.Remove(id)

	i := sort.Search(len(w.ids), func(i int) bool { return w.ids[i] >= id })
	if i < len(w.ids) && w.ids[i] == id {
		w.ids = append(w.ids[:i], w.ids[i+1:]...)
	}

	for k := compKind(0); k < compKindCount; k++ {
		delete(w.added[k], id)
		delete(w.changed[k], id)
	}
}

// --- Change tracking ---

// markAdded records a just-attached component for this tick's filters.
func (w *World) markAdded(k compKind, id EntityID) {
	w.added[k][id] = struct{}{}
	w.changed[k][id] = struct{}{}
}

// MarkChanged records a component mutation for this tick's filters.
// Systems that write a component they looked up by pointer must call this.
func (w *World) MarkChanged(k compKind, id EntityID) {
	w.changed[k][id] = struct{}{}
}

// JustAdded returns entities whose k-component was attached this tick,
// ascending.
func (w *World) JustAdded(k compKind) []EntityID {
	return sortedIDs(w.added[k])
}

// ChangedThisTick returns entities whose k-component was written this tick,
// ascending.
func (w *World) ChangedThisTick(k compKind) []EntityID {
	return sortedIDs(w.changed[k])
}

func (w *World) clearTracking() {
	for k := compKind(0); k < compKindCount; k++ {
		clear(w.added[k])
		clear(w.changed[k])
	}
}

func sortedIDs(set map[EntityID]struct{}) []EntityID {
	out := make([]EntityID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// --- Component accessors ---
//
// Lookups return nil when the component is absent; callers treat nil as
// "entity is not of this kind".

func (w *World) Transform(id EntityID) *Transform          { return w.transforms[id] }
func (w *World) Kinematic(id EntityID) *Kinematic          { return w.kinematics[id] }
func (w *World) Health(id EntityID) *Health                { return w.healths[id] }
func (w *World) Combat(id EntityID) *CombatState           { return w.combats[id] }
func (w *World) Unit(id EntityID) *UnitInfo                { return w.units[id] }
func (w *World) Gatherer(id EntityID) *GathererState       { return w.gatherers[id] }
func (w *World) Vision(id EntityID) *VisionState           { return w.visions[id] }
func (w *World) Selectable(id EntityID) *Selectable        { return w.selectables[id] }
func (w *World) Collider(id EntityID) *Collider            { return w.colliders[id] }
func (w *World) Building(id EntityID) *BuildingInfo        { return w.buildings[id] }
func (w *World) Queue(id EntityID) *ProductionQueue        { return w.queues[id] }
func (w *World) Resource(id EntityID) *ResourceSource      { return w.resources[id] }
func (w *World) Obstacle(id EntityID) *ObstacleInfo        { return w.obstacles[id] }
func (w *World) Site(id EntityID) *BuildingSite            { return w.sites[id] }
func (w *World) Construction(id EntityID) *ConstructionTask { return w.tasks[id] }

func (w *World) attachTransform(id EntityID, c *Transform) {
	w.transforms[id] = c
	w.markAdded(kindTransform, id)
}

func (w *World) attachKinematic(id EntityID, c *Kinematic) {
	w.kinematics[id] = c
	w.markAdded(kindKinematic, id)
}

func (w *World) attachHealth(id EntityID, c *Health) {
	w.healths[id] = c
	w.markAdded(kindHealth, id)
}

func (w *World) attachCombat(id EntityID, c *CombatState) {
	w.combats[id] = c
	w.markAdded(kindCombat, id)
}

func (w *World) attachUnit(id EntityID, c *UnitInfo) {
	w.units[id] = c
	w.markAdded(kindUnit, id)
}

func (w *World) attachGatherer(id EntityID, c *GathererState) {
	w.gatherers[id] = c
	w.markAdded(kindGatherer, id)
}

func (w *World) attachVision(id EntityID, c *VisionState) {
	w.visions[id] = c
	w.markAdded(kindVision, id)
}

func (w *World) attachSelectable(id EntityID, c *Selectable) {
	w.selectables[id] = c
	w.markAdded(kindSelectable, id)
}

func (w *World) attachCollider(id EntityID, c *Collider) {
	w.colliders[id] = c
	w.markAdded(kindCollider, id)
}

func (w *World) attachBuilding(id EntityID, c *BuildingInfo) {
	w.buildings[id] = c
	w.markAdded(kindBuilding, id)
}

func (w *World) attachQueue(id EntityID, c *ProductionQueue) {
	w.queues[id] = c
	w.markAdded(kindProduction, id)
}

func (w *World) attachResource(id EntityID, c *ResourceSource) {
	w.resources[id] = c
	w.markAdded(kindResource, id)
}

func (w *World) attachObstacle(id EntityID, c *ObstacleInfo) {
	w.obstacles[id] = c
	w.markAdded(kindObstacle, id)
}

func (w *World) attachSite(id EntityID, c *BuildingSite) {
	w.sites[id] = c
	w.markAdded(kindSite, id)
}

func (w *World) attachConstruction(id EntityID, c *ConstructionTask) {
	w.tasks[id] = c
	w.markAdded(kindConstruction, id)
}

// detachConstruction removes a worker's construction task.
func (w *World) detachConstruction(id EntityID) {
	delete(w.tasks, id)
}

// detachGatherer removes a worker's gatherer state, releasing any held slot.
func (w *World) detachGatherer(id EntityID) {
	if g := w.gatherers[id]; g != nil && g.reserved {
		if src := w.resources[g.Source]; src != nil {
			src.Gatherers--
		}
	}
	delete(w.gatherers, id)
}

// --- Iteration ---

// EachEntity walks all live entities ascending.
func (w *World) EachEntity(fn func(EntityID)) {
	for _, id := range w.ids {
		fn(id)
	}
}

// EachUnit walks all units ascending.
func (w *World) EachUnit(fn func(EntityID, *UnitInfo)) {
	for _, id := range w.ids {
		if u := w.units[id]; u != nil {
			fn(id, u)
		}
	}
}

// EachBuilding walks all buildings ascending.
func (w *World) EachBuilding(fn func(EntityID, *BuildingInfo)) {
	for _, id := range w.ids {
		if b := w.buildings[id]; b != nil {
			fn(id, b)
		}
	}
}

// EachResource walks all resource sources ascending.
func (w *World) EachResource(fn func(EntityID, *ResourceSource)) {
	for _, id := range w.ids {
		if r := w.resources[id]; r != nil {
			fn(id, r)
		}
	}
}

// EachSite walks all building sites ascending.
func (w *World) EachSite(fn func(EntityID, *BuildingSite)) {
	for _, id := range w.ids {
		if s := w.sites[id]; s != nil {
			fn(id, s)
		}
	}
}

// UnitsOf returns the unit IDs owned by a player, ascending.
func (w *World) UnitsOf(p PlayerID) []EntityID {
	var out []EntityID
	for _, id := range w.ids {
		if u := w.units[id]; u != nil && u.Player == p {
			out = append(out, id)
		}
	}
	return out
}

// BuildingsOf returns the building IDs owned by a player, ascending.
func (w *World) BuildingsOf(p PlayerID) []EntityID {
	var out []EntityID
	for _, id := range w.ids {
		if b := w.buildings[id]; b != nil && b.Player == p {
			out = append(out, id)
		}
	}
	return out
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.ids)
}
