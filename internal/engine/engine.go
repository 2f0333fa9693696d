// Package engine drives the simulation: a real-time tick loop over a
// single-threaded world update.
package engine

import (
	"log/slog"
	"time"
)

// Default loop timing. Each tick advances the simulation by TickSeconds of
// sim-time; a summary line is logged every SummaryTicks.
const (
	DefaultTickSeconds = 0.1
	SummaryTicks       = 600 // one summary per sim-minute at the default rate
)

// Engine advances the simulation in real time with a speed multiplier.
type Engine struct {
	Tick     uint64        // monotonic tick counter
	Speed    float64       // 1.0 = real-time, 0 = paused
	Interval time.Duration // wall-clock budget per tick
	Running  bool

	// OnTick runs every tick with the sim-time delta.
	OnTick func(tick uint64, dt float64)
	// OnSummary runs every SummaryTicks ticks.
	OnSummary func(tick uint64)
}

// NewEngine creates an engine with default timing.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances exactly one tick. Exposed so tests and batch runs can
// drive the simulation without the real-time loop.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick, DefaultTickSeconds)
	}
	if e.Tick%SummaryTicks == 0 && e.OnSummary != nil {
		e.OnSummary(e.Tick)
	}
}
