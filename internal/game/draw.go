package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Drawing is deliberately abstract: team-tinted disks over a dirt ground.
// All simulation state comes through the same boundary the tests use
// (transform, selection, team color, activity).

var (
	groundColor   = color.RGBA{62, 48, 36, 255}
	selectionRing = color.RGBA{255, 255, 160, 255}
	siteColor     = color.RGBA{150, 150, 150, 160}

	teamColors = map[PlayerID]color.RGBA{
		NeutralPlayer: {140, 140, 140, 255},
		localPlayer:   {86, 160, 220, 255},
		aiOpponent:    {214, 88, 70, 255},
	}

	resourceColors = map[ResourceType]color.RGBA{
		Nectar:     {240, 200, 70, 255},
		Chitin:     {150, 110, 70, 255},
		Minerals:   {160, 170, 190, 255},
		Pheromones: {190, 110, 200, 255},
	}

	obstacleColors = map[ObstacleKind]color.RGBA{
		ObstacleRock:     {105, 100, 95, 255},
		ObstacleMushroom: {200, 160, 170, 255},
		ObstacleTree:     {70, 120, 60, 255},
	}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(groundColor)

	w := g.world
	w.EachEntity(func(id EntityID) {
		tr := w.Transform(id)
		if tr == nil {
			return
		}
		sx, sy := g.cam.WorldToScreen(tr.Pos, g.screenW, g.screenH)
		if sx < -50 || sy < -50 || sx > float64(g.screenW)+50 || sy > float64(g.screenH)+50 {
			return
		}
		radius := 1.0
		if c := w.Collider(id); c != nil {
			radius = c.Radius
		}
		r := float32(radius * g.cam.Zoom)
		x, y := float32(sx), float32(sy)

		switch {
		case w.Resource(id) != nil:
			src := w.Resource(id)
			vector.DrawFilledCircle(screen, x, y, r, resourceColors[src.Type], true)

		case w.Obstacle(id) != nil:
			vector.DrawFilledCircle(screen, x, y, r, obstacleColors[w.Obstacle(id).Kind], true)

		case w.Site(id) != nil:
			vector.StrokeCircle(screen, x, y, r, 1.5, siteColor, true)
			site := w.Site(id)
			if site.Started {
				frac := site.Progress / w.Tables.Building(site.Type).BuildTime
				vector.DrawFilledCircle(screen, x, y, r*float32(clamp01(frac)), siteColor, true)
			}

		case w.Building(id) != nil:
			b := w.Building(id)
			vector.DrawFilledCircle(screen, x, y, r, teamColors[b.Player], true)
			g.drawHealthArc(screen, x, y, r, w.Health(id))

		case w.Unit(id) != nil:
			u := w.Unit(id)
			vector.DrawFilledCircle(screen, x, y, r, teamColors[u.Player], true)
			// Heading tick so facing reads at a glance.
			hx := x + float32(math.Cos(tr.Heading))*r*1.4
			hy := y + float32(math.Sin(tr.Heading))*r*1.4
			vector.StrokeLine(screen, x, y, hx, hy, 1, teamColors[u.Player], true)
			g.drawHealthArc(screen, x, y, r, w.Health(id))
		}

		if s := w.Selectable(id); s != nil && s.Selected {
			vector.StrokeCircle(screen, x, y, r+3, 1.5, selectionRing, true)
		}
	})

	g.drawDragRect(screen)
	g.drawHUD(screen)
}

// drawHealthArc shows a damage bar only for wounded entities.
func (g *Game) drawHealthArc(screen *ebiten.Image, x, y, r float32, h *Health) {
	if h == nil || h.Current >= h.Max {
		return
	}
	frac := float32(clamp01(h.Current / h.Max))
	barW := r * 2
	vector.StrokeLine(screen, x-r, y-r-4, x-r+barW, y-r-4, 2,
		color.RGBA{40, 40, 40, 200}, false)
	vector.StrokeLine(screen, x-r, y-r-4, x-r+barW*frac, y-r-4, 2,
		color.RGBA{90, 220, 90, 230}, false)
}

func (g *Game) drawDragRect(screen *ebiten.Image) {
	if !g.dragging {
		return
	}
	mx, my := ebiten.CursorPosition()
	x0 := float32(math.Min(g.dragStartX, float64(mx)))
	y0 := float32(math.Min(g.dragStartY, float64(my)))
	x1 := float32(math.Max(g.dragStartX, float64(mx)))
	y1 := float32(math.Max(g.dragStartY, float64(my)))
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, selectionRing, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	pl := g.world.Player(localPlayer)
	if pl == nil {
		return
	}
	hud := fmt.Sprintf(
		"nectar %.0f  chitin %.0f  minerals %.0f  pheromones %.0f   pop %d/%d   speed %gx   formation %s",
		pl.Stock[Nectar], pl.Stock[Chitin], pl.Stock[Minerals], pl.Stock[Pheromones],
		pl.Pop, pl.MaxPop, g.world.Clock().Speed(), g.formation)
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)

	if g.statusLine != "" && g.world.Clock().Now() < g.statusExpiresAt {
		ebitenutil.DebugPrintAt(screen, g.statusLine, 8, 24)
	}
}
