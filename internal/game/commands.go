package game

import (
	"math"
	"sort"
)

// Player-facing command surface: selection and group orders. The AI layers
// drive the same order entry points the UI does.

// Formation shapes for group move orders.
type Formation int

const (
	FormationSpread Formation = iota
	FormationCircle
	FormationBox
	FormationLine
	FormationWedge
)

func (f Formation) String() string {
	switch f {
	case FormationSpread:
		return "spread"
	case FormationCircle:
		return "circle"
	case FormationBox:
		return "box"
	case FormationLine:
		return "line"
	case FormationWedge:
		return "wedge"
	default:
		return "unknown"
	}
}

// --- Selection ---

// SelectAt picks the closest selectable entity within pick range of a
// ground point, replacing the selection. Additive keeps the current set.
func (w *World) SelectAt(pos Vec3, pickRange float64, additive bool) EntityID {
	if !additive {
		w.ClearSelection()
	}
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(pos, pickRange, scratch)
	var best EntityID
	bestD := pickRange
	for _, e := range scratch {
		s := w.selectables[e.ID]
		if s == nil || !w.alive[e.ID] {
			continue
		}
		d := pos.DistXZ(e.Pos) - e.Radius
		if d <= pickRange && (best == 0 || d < bestD) {
			bestD = d
			best = e.ID
		}
	}
	if best != 0 {
		w.toggleOrSelect(best, additive)
	}
	return best
}

// SelectInRect selects every selectable unit inside a ground-plane
// rectangle. Additive unions with the current selection.
func (w *World) SelectInRect(minX, minZ, maxX, maxZ float64, additive bool) []EntityID {
	if !additive {
		w.ClearSelection()
	}
	var picked []EntityID
	for _, id := range w.ids {
		s := w.selectables[id]
		tr := w.transforms[id]
		if s == nil || tr == nil || w.units[id] == nil {
			continue
		}
		if tr.Pos.X < minX || tr.Pos.X > maxX || tr.Pos.Z < minZ || tr.Pos.Z > maxZ {
			continue
		}
		s.Selected = true
		w.MarkChanged(kindSelectable, id)
		picked = append(picked, id)
	}
	return picked
}

func (w *World) toggleOrSelect(id EntityID, additive bool) {
	s := w.selectables[id]
	if s == nil {
		return
	}
	if additive {
		s.Selected = !s.Selected // shift-click toggles membership
	} else {
		s.Selected = true
	}
	w.MarkChanged(kindSelectable, id)
}

// ClearSelection deselects everything.
func (w *World) ClearSelection() {
	for _, id := range w.ids {
		if s := w.selectables[id]; s != nil && s.Selected {
			s.Selected = false
			w.MarkChanged(kindSelectable, id)
		}
	}
}

// Selected returns the selected entity IDs ascending.
func (w *World) Selected() []EntityID {
	var out []EntityID
	for _, id := range w.ids {
		if s := w.selectables[id]; s != nil && s.Selected {
			out = append(out, id)
		}
	}
	return out
}

// --- Group orders ---

// CommandMove moves a group to a destination in formation. A move order
// cancels combat and gathering and turns auto-attack off; issuing the
// identical order again is a no-op in effect.
func (w *World) CommandMove(ids []EntityID, target Vec3, f Formation) {
	units := w.orderable(ids)
	offsets := formationOffsets(f, len(units), w.groupSpacing(units))
	for i, id := range units {
		if c := w.combats[id]; c != nil {
			c.Target = 0
			c.Phase = CombatMoving
			c.AutoAttack = false
			w.MarkChanged(kindCombat, id)
		}
		w.StopGathering(id)
		w.SetMoveTarget(id, target.Add(offsets[i]))
	}
}

// CommandAttack points a group at one hostile entity.
func (w *World) CommandAttack(ids []EntityID, target EntityID) error {
	units := w.orderable(ids)
	var firstErr error
	issued := false
	for _, id := range units {
		if err := w.OrderAttack(id, target); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		w.StopGathering(id)
		issued = true
	}
	if issued {
		return nil
	}
	if firstErr == nil {
		firstErr = ErrInvalidTarget
	}
	return firstErr
}

// CommandGather distributes workers across the clicked source and, when its
// slots run out, the nearest open sources of the same type.
func (w *World) CommandGather(ids []EntityID, source EntityID) error {
	src := w.resources[source]
	if src == nil || src.Depleted() {
		return ErrInvalidTarget
	}
	workers := make([]EntityID, 0, len(ids))
	for _, id := range w.orderable(ids) {
		if w.gatherers[id] != nil {
			workers = append(workers, id)
		}
	}
	if len(workers) == 0 {
		return ErrInvalidTarget
	}

	targets := w.gatherTargets(source, src.Type, len(workers))
	for i, id := range workers {
		_ = w.OrderGather(id, targets[i%len(targets)])
	}
	return nil
}

// gatherTargets returns the clicked source followed by nearby same-type
// sources, enough to spread n workers without oversubscribing badly.
func (w *World) gatherTargets(source EntityID, rt ResourceType, n int) []EntityID {
	targets := []EntityID{source}
	src := w.resources[source]
	capacity := src.MaxGatherers - src.Gatherers
	if capacity >= n {
		return targets
	}
	tr := w.transforms[source]
	if tr == nil {
		return targets
	}
	type cand struct {
		id EntityID
		d  float64
	}
	var cands []cand
	var scratch []GridEntry
	scratch = w.grid.QueryRadius(tr.Pos, sourceSearchRadius, scratch)
	for _, e := range scratch {
		if e.ID == source {
			continue
		}
		s := w.resources[e.ID]
		if s == nil || s.Type != rt || s.Depleted() || s.Gatherers >= s.MaxGatherers {
			continue
		}
		cands = append(cands, cand{e.ID, tr.Pos.DistXZ(e.Pos)})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].d != cands[j].d {
			return cands[i].d < cands[j].d
		}
		return cands[i].id < cands[j].id
	})
	for _, c := range cands {
		if capacity >= n {
			break
		}
		targets = append(targets, c.id)
		capacity += w.resources[c.id].MaxGatherers - w.resources[c.id].Gatherers
	}
	return targets
}

// CommandBuild sends the first worker in the group to construct at pos.
func (w *World) CommandBuild(ids []EntityID, bt BuildingType, pos Vec3) (EntityID, error) {
	for _, id := range w.orderable(ids) {
		if w.gatherers[id] == nil || w.tasks[id] != nil {
			continue
		}
		u := w.units[id]
		return w.PlaceBuilding(u.Player, bt, pos, id)
	}
	return 0, ErrInvalidTarget
}

// orderable filters a command's subjects down to live, non-dying units.
func (w *World) orderable(ids []EntityID) []EntityID {
	out := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		if !w.alive[id] || w.units[id] == nil {
			continue
		}
		if h := w.healths[id]; h != nil && h.Dying {
			continue
		}
		out = append(out, id)
	}
	return out
}

// groupSpacing derives formation spacing from the widest unit in the group.
func (w *World) groupSpacing(ids []EntityID) float64 {
	spacing := 1.0
	for _, id := range ids {
		if c := w.colliders[id]; c != nil && c.Radius*2.5 > spacing {
			spacing = c.Radius * 2.5
		}
	}
	return spacing
}

// formationOffsets computes n destination offsets for the given shape.
func formationOffsets(f Formation, n int, spacing float64) []Vec3 {
	out := make([]Vec3, n)
	if n <= 1 {
		return out
	}
	switch f {
	case FormationCircle:
		r := spacing * float64(n) / (2 * math.Pi)
		if r < spacing {
			r = spacing
		}
		for i := 0; i < n; i++ {
			ang := 2 * math.Pi * float64(i) / float64(n)
			out[i] = Vec3{X: math.Cos(ang) * r, Z: math.Sin(ang) * r}
		}
	case FormationBox:
		side := int(math.Ceil(math.Sqrt(float64(n))))
		half := float64(side-1) * spacing / 2
		for i := 0; i < n; i++ {
			out[i] = Vec3{
				X: float64(i%side)*spacing - half,
				Z: float64(i/side)*spacing - half,
			}
		}
	case FormationLine:
		half := float64(n-1) * spacing / 2
		for i := 0; i < n; i++ {
			out[i] = Vec3{X: float64(i)*spacing - half}
		}
	case FormationWedge:
		for i := 0; i < n; i++ {
			row := int((math.Sqrt(8*float64(i)+1) - 1) / 2)
			col := i - row*(row+1)/2
			out[i] = Vec3{
				X: (float64(col) - float64(row)/2) * spacing,
				Z: -float64(row) * spacing,
			}
		}
	default: // FormationSpread: loose ring pairs, cheap and collision-friendly
		for i := 0; i < n; i++ {
			ring := 1 + i/8
			out[i] = ringOffset(i%8, spacing*float64(ring))
		}
	}
	return out
}
