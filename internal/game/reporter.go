package game

import (
	"fmt"
	"io"
)

// Headless match reporting: run the standard skirmish with two AI players
// for a fixed simulated duration and summarize what happened. Used by the
// headless-report command for balance and regression sweeps.

// MatchConfig parameterizes one headless run.
type MatchConfig struct {
	Seed    int64
	Seconds float64
	Step    float64 // fixed tick delta; 0 means 0.05
	Verbose bool
}

// PlayerReport is one player's end-of-run summary.
type PlayerReport struct {
	Player    PlayerID
	Workers   int
	Military  int
	Buildings int
	Pop       int
	MaxPop    int
	Stock     [resourceTypeCount]float64
	Delivered float64
	Stance    string
	Phase     string
}

// MatchReport is the full end-of-run summary.
type MatchReport struct {
	Seed         int64
	Ticks        int
	SimSeconds   float64
	Players      []PlayerReport
	TotalDeaths  int
	Engagements  int
	Depletions   int
	Teleports    int
	GridRepaired int
}

// RunMatch plays a 2-AI skirmish headlessly and reports on it.
func RunMatch(cfg MatchConfig) MatchReport {
	step := cfg.Step
	if step <= 0 {
		step = 0.05
	}
	events := NewSimLog(cfg.Verbose)
	w := NewSkirmishWorld(cfg.Seed, nil)
	WithEventLog(events)(w)
	// Both sides run under AI for an unattended match.
	w.Player(localPlayer).AI = true
	w.Player(localPlayer).strategy = newStrategyState()
	w.Player(localPlayer).tactics = newTacticsState()

	ticks := int(cfg.Seconds / step)
	for i := 0; i < ticks; i++ {
		w.StepSim(step)
	}

	rep := MatchReport{
		Seed:         cfg.Seed,
		Ticks:        w.Tick(),
		SimSeconds:   w.Clock().Now(),
		TotalDeaths:  events.Count("death", "unit") + events.Count("death", "building"),
		Engagements:  events.Count("combat", "engage"),
		Depletions:   events.Count("economy", "source_depleted"),
		Teleports:    events.Count("kinematics", "teleport_home"),
		GridRepaired: w.Grid().RepairedInserts(),
	}

	for _, pid := range w.Players() {
		pl := w.Player(pid)
		workers, military := w.countRoles(pid)
		pr := PlayerReport{
			Player:    pid,
			Workers:   workers,
			Military:  military,
			Buildings: len(w.BuildingsOf(pid)),
			Pop:       pl.Pop,
			MaxPop:    pl.MaxPop,
			Stock:     pl.Stock,
		}
		for _, e := range events.FilterKey("economy", "delivered") {
			if e.Subject == int64(pid) {
				pr.Delivered += e.NumVal
			}
		}
		if pl.tactics != nil {
			pr.Stance = pl.tactics.Stance.String()
		}
		if pl.strategy != nil {
			pr.Phase = pl.strategy.Phase.String()
		}
		rep.Players = append(rep.Players, pr)
	}
	return rep
}

// Write renders the report as aligned plain text.
func (r MatchReport) Write(out io.Writer) {
	fmt.Fprintf(out, "seed=%d ticks=%d sim=%.0fs deaths=%d engagements=%d depletions=%d teleports=%d grid_repairs=%d\n",
		r.Seed, r.Ticks, r.SimSeconds, r.TotalDeaths, r.Engagements, r.Depletions, r.Teleports, r.GridRepaired)
	for _, p := range r.Players {
		fmt.Fprintf(out, "  player %d: workers=%d military=%d buildings=%d pop=%d/%d phase=%s stance=%s delivered=%.0f\n",
			p.Player, p.Workers, p.Military, p.Buildings, p.Pop, p.MaxPop, p.Phase, p.Stance, p.Delivered)
		fmt.Fprintf(out, "            nectar=%.0f chitin=%.0f minerals=%.0f pheromones=%.0f\n",
			p.Stock[Nectar], p.Stock[Chitin], p.Stock[Minerals], p.Stock[Pheromones])
	}
}
