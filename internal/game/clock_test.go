package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockSpeedSteps(t *testing.T) {
	c := NewSimClock()
	require.Equal(t, 1.0, c.Speed())

	require.Equal(t, 2.0, c.SpeedUp())
	require.Equal(t, 4.0, c.SpeedUp())
	require.Equal(t, 2.0, c.SlowDown())

	require.True(t, c.SetSpeed(16))
	require.Equal(t, 16.0, c.SpeedUp()) // already at the top
	require.False(t, c.SetSpeed(3))
	require.Equal(t, 16.0, c.Speed())

	c.SetSpeed(0.5)
	require.Equal(t, 0.5, c.SlowDown()) // already at the bottom
}

func TestClockAdvanceClamps(t *testing.T) {
	c := NewSimClock()

	require.Equal(t, minTickQuantum, c.Advance(0))
	require.Equal(t, maxTickStep, c.Advance(10)) // stalled frame

	c.SetSpeed(4)
	require.InDelta(t, 0.064, c.Advance(0.016), 1e-9)
}

func TestCadenceDueAndScale(t *testing.T) {
	cad := Cadence{Interval: 1.0}

	require.False(t, cad.Due(0.5, 1.0))
	require.True(t, cad.Due(1.0, 1.0))
	// Consumed: not due again until another interval elapses.
	require.False(t, cad.Due(1.5, 1.0))
	require.True(t, cad.Due(2.0, 1.0))

	// Scale 0.5 halves the effective interval.
	require.True(t, cad.Due(2.5, 0.5))

	cad.Reset(10)
	require.False(t, cad.Due(10.5, 1.0))
	require.True(t, cad.Due(11.0, 1.0))
}

func TestSchedulerScaling(t *testing.T) {
	s := NewScheduler()
	require.Equal(t, 1.0, s.loadScale(100))
	require.Equal(t, loadScaleFactor, s.loadScale(401))
	require.Equal(t, 1.0, s.combatScale(false))
	require.Equal(t, combatScaleFight, s.combatScale(true))
}
