package game

import (
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Game is the Ebiten shell around a World: a fixed-timestep simulation with
// a top-down camera, drag selection, and right-click orders. Player 1 is
// the human; player 2 is the AI opponent.

const (
	localPlayer PlayerID = 1
	aiOpponent  PlayerID = 2

	frameDt = 1.0 / 60.0
)

// Camera is a planar pan/zoom over the XZ ground plane.
type Camera struct {
	X, Z float64
	Zoom float64
}

// WorldToScreen projects a ground position into screen pixels.
func (c *Camera) WorldToScreen(p Vec3, sw, sh int) (float64, float64) {
	return (p.X-c.X)*c.Zoom + float64(sw)/2, (p.Z-c.Z)*c.Zoom + float64(sh)/2
}

// ScreenToWorld inverts the projection onto the ground plane.
func (c *Camera) ScreenToWorld(sx, sy float64, sw, sh int) Vec3 {
	return Vec3{
		X: (sx-float64(sw)/2)/c.Zoom + c.X,
		Z: (sy-float64(sh)/2)/c.Zoom + c.Z,
	}
}

type Game struct {
	world *World
	cam   Camera
	log   *zap.Logger

	screenW, screenH int

	dragging         bool
	dragStartX       float64
	dragStartY       float64
	formation        Formation
	statusLine       string
	statusExpiresAt  float64
}

// New builds the default skirmish and wraps it for Ebiten.
func New() *Game {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	w := NewSkirmishWorld(42, logger)
	g := &Game{
		world:     w,
		cam:       Camera{X: 0, Z: 0, Zoom: 6},
		log:       logger,
		formation: FormationSpread,
	}
	return g
}

// World exposes the running simulation (the inspector overlay reads it).
func (g *Game) World() *World { return g.world }

// Update advances one display frame: input first, then one simulation step.
func (g *Game) Update() error {
	g.handleInput()
	g.world.Step(frameDt)
	return nil
}

// Layout reports the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = (*Game)(nil)

func (g *Game) setStatus(s string) {
	g.statusLine = s
	g.statusExpiresAt = g.world.Clock().Now() + 3
}

// NewSkirmishWorld builds the standard 1v1 map: two bases in opposite
// corners, resource fields between them, and scattered ground clutter.
func NewSkirmishWorld(seed int64, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := NewWorld(WithRNG(seed), WithLogger(logger))
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- map layout only

	w.AddPlayer(localPlayer, false)
	w.AddPlayer(aiOpponent, true)

	basePositions := map[PlayerID]Vec3{
		localPlayer: {X: -180, Z: -180},
		aiOpponent:  {X: 180, Z: 180},
	}
	for pid, base := range basePositions {
		w.SpawnBuilding(pid, BuildingQueen, base, true)
		w.SpawnBuilding(pid, BuildingNursery, base.Add(Vec3{X: 24}), true)
		for i := 0; i < 4; i++ {
			w.SpawnUnit(pid, UnitWorkerAnt, base.Add(ringOffset(i, 14)))
		}
		w.SpawnUnit(pid, UnitSoldierAnt, base.Add(Vec3{Z: 18}))

		// Each base gets a nectar field and a chitin field close by.
		for i := 0; i < 3; i++ {
			w.SpawnResource(Nectar, 400, 4, base.Add(ringOffset(i, 45)))
		}
		for i := 0; i < 2; i++ {
			w.SpawnResource(Chitin, 300, 3, base.Add(ringOffset(i+4, 55)))
		}
	}

	// Contested center: minerals and pheromones.
	w.SpawnResource(Minerals, 500, 4, Vec3{X: 10, Z: -10})
	w.SpawnResource(Minerals, 500, 4, Vec3{X: -10, Z: 10})
	w.SpawnResource(Pheromones, 250, 2, Vec3{})

	kinds := []ObstacleKind{ObstacleRock, ObstacleMushroom, ObstacleTree}
	for i := 0; i < 24; i++ {
		pos := Vec3{
			X: (rng.Float64() - 0.5) * 500,
			Z: (rng.Float64() - 0.5) * 500,
		}
		// Keep the bases clear.
		clear := true
		for _, base := range basePositions {
			if pos.DistXZ(base) < 60 {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		kind := kinds[rng.Intn(len(kinds))]
		w.SpawnObstacle(kind, 2+rng.Float64()*4, pos)
	}

	w.Flush()
	w.refreshSpatial()
	return w
}
