package game

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input handling. Right-click is the universal order verb: enemy → attack,
// resource → gather, terrain → move. Left-click selects, drag selects a
// rectangle, Shift toggles inclusion.

const (
	panSpeed     = 300.0 // world units per second at zoom 1
	pickRange    = 4.0
	dragDeadZone = 4.0
	minZoom      = 1.5
	maxZoom      = 20.0
)

func (g *Game) handleInput() {
	g.handleCamera()
	g.handleHotkeys()
	g.handleSelection()
	g.handleOrders()
}

func (g *Game) handleCamera() {
	pan := panSpeed * frameDt / g.cam.Zoom * 6
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Z -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Z += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.X -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.X += pan
	}
	_, wheelY := ebiten.Wheel()
	if wheelY != 0 {
		g.cam.Zoom *= math.Pow(1.1, wheelY)
		g.cam.Zoom = clampF(g.cam.Zoom, minZoom, maxZoom)
	}
}

func (g *Game) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.setStatus(fmt.Sprintf("speed %gx", g.world.Clock().SpeedUp()))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.setStatus(fmt.Sprintf("speed %gx", g.world.Clock().SlowDown()))
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.formation = (g.formation + 1) % 5
		g.setStatus("formation: " + g.formation.String())
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.world.ClearSelection()
	}
}

func (g *Game) handleSelection() {
	mx, my := ebiten.CursorPosition()
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.dragStartX, g.dragStartY = float64(mx), float64(my)
	}
	if !g.dragging || !inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		return
	}
	g.dragging = false

	dx := math.Abs(float64(mx) - g.dragStartX)
	dy := math.Abs(float64(my) - g.dragStartY)
	if dx < dragDeadZone && dy < dragDeadZone {
		pos := g.cam.ScreenToWorld(float64(mx), float64(my), g.screenW, g.screenH)
		g.world.SelectAt(pos, pickRange, shift)
		return
	}

	a := g.cam.ScreenToWorld(g.dragStartX, g.dragStartY, g.screenW, g.screenH)
	b := g.cam.ScreenToWorld(float64(mx), float64(my), g.screenW, g.screenH)
	g.world.SelectInRect(
		math.Min(a.X, b.X), math.Min(a.Z, b.Z),
		math.Max(a.X, b.X), math.Max(a.Z, b.Z), shift)
}

func (g *Game) handleOrders() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		return
	}
	selected := g.ownSelected()
	if len(selected) == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	pos := g.cam.ScreenToWorld(float64(mx), float64(my), g.screenW, g.screenH)

	target := g.pickOrderTarget(pos)
	switch {
	case target != 0 && g.world.Resource(target) != nil:
		if err := g.world.CommandGather(selected, target); err != nil {
			g.setStatus(err.Error())
		}
	case target != 0 && g.isEnemyOf(localPlayer, target):
		if err := g.world.CommandAttack(selected, target); err != nil {
			g.setStatus(err.Error())
		}
	default:
		g.world.CommandMove(selected, pos, g.formation)
	}
}

// pickOrderTarget finds the closest orderable entity under the cursor.
func (g *Game) pickOrderTarget(pos Vec3) EntityID {
	var scratch []GridEntry
	scratch = g.world.Grid().QueryRadius(pos, pickRange, scratch)
	var best EntityID
	bestD := pickRange
	for _, e := range scratch {
		if !g.world.Alive(e.ID) {
			continue
		}
		d := pos.DistXZ(e.Pos) - e.Radius
		if best == 0 || d < bestD {
			best = e.ID
			bestD = d
		}
	}
	if bestD > pickRange {
		return 0
	}
	return best
}

func (g *Game) isEnemyOf(p PlayerID, id EntityID) bool {
	owner, ok := g.world.ownerOf(id)
	return ok && isHostile(p, owner)
}

// ownSelected filters the selection down to the local player's units.
func (g *Game) ownSelected() []EntityID {
	var out []EntityID
	for _, id := range g.world.Selected() {
		if u := g.world.Unit(id); u != nil && u.Player == localPlayer {
			out = append(out, id)
		}
	}
	return out
}
