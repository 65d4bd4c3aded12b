package game

import "errors"

// Command-surface failures observed by the human UI or the AI goal queue.
var (
	ErrCannotAfford  = errors.New("cannot afford cost")
	ErrNoPopulation  = errors.New("population limit reached")
	ErrQueueFull     = errors.New("all production queues full")
	ErrNoProducer    = errors.New("no producer building of required type")
	ErrNoPlacement   = errors.New("no valid placement position")
	ErrInvalidTarget = errors.New("invalid command target")
)

// PlayerState owns one player's economy and AI records. The record is
// exclusively owned by its player; purchases are atomic check+debit pairs.
type PlayerState struct {
	ID PlayerID
	AI bool

	Stock  [resourceTypeCount]float64
	Pop    int
	MaxPop int

	// BaseAnchor is where stuck units teleport as a last resort and where
	// the strategy layer centers its placement rings. Set to the first
	// Queen's position, or the scenario spawn point.
	BaseAnchor Vec3

	strategy *StrategyState
	tactics  *TacticsState
	intel    map[PlayerID]*EnemyReport
}

func newPlayerState(id PlayerID, ai bool, balance *BalanceStats) *PlayerState {
	p := &PlayerState{
		ID:     id,
		AI:     ai,
		Stock:  balance.StartingStock,
		MaxPop: balance.StartingMaxPop,
		intel:  make(map[PlayerID]*EnemyReport),
	}
	if ai {
		p.strategy = newStrategyState()
		p.tactics = newTacticsState()
	}
	return p
}

// CanAfford reports whether every line of the cost is covered.
func (p *PlayerState) CanAfford(c Cost) bool {
	for _, e := range c {
		if p.Stock[e.Resource] < e.Amount {
			return false
		}
	}
	return true
}

// Debit atomically checks and subtracts the cost. Returns false untouched
// when any line is short.
func (p *PlayerState) Debit(c Cost) bool {
	if !p.CanAfford(c) {
		return false
	}
	for _, e := range c {
		p.Stock[e.Resource] -= e.Amount
	}
	return true
}

// Credit adds a delivered or refunded amount. Negative amounts are a bug
// and are dropped.
func (p *PlayerState) Credit(rt ResourceType, amount float64) {
	if amount <= 0 {
		return
	}
	p.Stock[rt] += amount
}

// PopHeadroom reports whether n more population fits under the cap.
func (p *PlayerState) PopHeadroom(n int) bool {
	return p.Pop+n <= p.MaxPop
}

// Intel returns this player's report on an enemy, creating it on first use.
func (p *PlayerState) Intel(enemy PlayerID) *EnemyReport {
	r := p.intel[enemy]
	if r == nil {
		r = &EnemyReport{Enemy: enemy}
		p.intel[enemy] = r
	}
	return r
}
