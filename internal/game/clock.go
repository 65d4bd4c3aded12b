package game

// simSpeeds are the discrete speed settings, controlled externally.
var simSpeeds = []float64{0.5, 1, 2, 4, 8, 16}

const (
	// minTickQuantum is the smallest simulated step the scheduler will take.
	minTickQuantum = 0.001
	// maxTickStep caps a single integration step; a stalled frame advances
	// simulation time in several ticks rather than one giant one.
	maxTickStep = 0.25
)

// SimClock converts wall time into simulated seconds at a discrete speed
// multiplier. All per-tick integrations scale by the returned delta, so a
// speed change scales every subsystem consistently.
type SimClock struct {
	speedIdx int
	now      float64
}

// NewSimClock starts at 1x speed and sim time zero.
func NewSimClock() *SimClock {
	return &SimClock{speedIdx: 1}
}

// Now returns elapsed simulated seconds.
func (c *SimClock) Now() float64 { return c.now }

// Speed returns the current multiplier.
func (c *SimClock) Speed() float64 { return simSpeeds[c.speedIdx] }

// SpeedUp moves to the next faster setting. Returns the new multiplier.
func (c *SimClock) SpeedUp() float64 {
	if c.speedIdx < len(simSpeeds)-1 {
		c.speedIdx++
	}
	return c.Speed()
}

// SlowDown moves to the next slower setting. Returns the new multiplier.
func (c *SimClock) SlowDown() float64 {
	if c.speedIdx > 0 {
		c.speedIdx--
	}
	return c.Speed()
}

// SetSpeed selects an exact multiplier from the discrete set.
// Returns false for values not in the set.
func (c *SimClock) SetSpeed(mult float64) bool {
	for i, s := range simSpeeds {
		if s == mult {
			c.speedIdx = i
			return true
		}
	}
	return false
}

// Advance converts a wall-clock delta into a simulated delta, clamped to
// [minTickQuantum, maxTickStep]. The caller accrues it via accrue; the
// split lets the test harness drive exact fixed steps.
func (c *SimClock) Advance(wallDt float64) float64 {
	dt := wallDt * c.Speed()
	if dt < minTickQuantum {
		dt = minTickQuantum
	}
	if dt > maxTickStep {
		dt = maxTickStep
	}
	return dt
}

func (c *SimClock) accrue(dt float64) { c.now += dt }

// --- Cadence timers ---

// Cadence fires on a fixed interval of simulated seconds. The effective
// interval is scaled per check, which is how the scheduler applies its
// adaptive load and combat factors.
type Cadence struct {
	Interval float64
	last     float64
}

// Due reports whether the scaled interval has elapsed, and if so consumes it.
func (c *Cadence) Due(now, scale float64) bool {
	if now-c.last >= c.Interval*scale {
		c.last = now
		return true
	}
	return false
}

// Reset rewinds the timer to fire Interval seconds after now.
func (c *Cadence) Reset(now float64) { c.last = now }

// Scheduler owns the AI cadence timers and their adaptive scaling.
type Scheduler struct {
	Intel    Cadence
	Strategy Cadence
	Tactics  Cadence
	Economy  Cadence
	UnitMgmt Cadence
	CombatAI Cadence
	Income   Cadence
}

// Adaptive thresholds: above highUnitCount all AI cadences stretch; during
// active combat the combat and tactics cadences tighten.
const (
	highUnitCount    = 400
	loadScaleFactor  = 1.5
	combatScaleFight = 0.5
)

func NewScheduler() *Scheduler {
	return &Scheduler{
		Intel:    Cadence{Interval: 1.0},
		Strategy: Cadence{Interval: 2.0},
		Tactics:  Cadence{Interval: 0.5},
		Economy:  Cadence{Interval: 1.5},
		UnitMgmt: Cadence{Interval: 0.3},
		CombatAI: Cadence{Interval: 0.2},
		Income:   Cadence{Interval: 1.0},
	}
}

// loadScale lengthens cadences under very high unit counts.
func (s *Scheduler) loadScale(unitCount int) float64 {
	if unitCount > highUnitCount {
		return loadScaleFactor
	}
	return 1.0
}

// combatScale tightens combat-adjacent cadences while fighting is active.
func (s *Scheduler) combatScale(activeCombat bool) float64 {
	if activeCombat {
		return combatScaleFight
	}
	return 1.0
}
