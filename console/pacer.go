package console

import (
	"log"
	"time"

	"github.com/cyberdna/cyberdna/sim"
)

// A Pacer slows event handling to wall-clock speed so that a terminal run
// reads like a live scan. Register it as an engine hook.
type Pacer struct {
	speedup float64

	started bool
	start   time.Time
	origin  sim.VTimeInSec
}

// NewPacer creates a Pacer. A speedup of 1 plays one virtual second per
// wall second; higher values play faster.
func NewPacer(speedup float64) *Pacer {
	if speedup <= 0 {
		log.Panic("pacer speedup must be positive")
	}

	return &Pacer{speedup: speedup}
}

// Func sleeps before each event until the wall clock catches up with the
// event's virtual time.
func (p *Pacer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt := ctx.Item.(sim.Event)

	if !p.started {
		p.started = true
		p.start = time.Now()
		p.origin = evt.Time()
		return
	}

	virtual := float64(evt.Time() - p.origin)
	target := p.start.Add(
		time.Duration(virtual / p.speedup * float64(time.Second)))

	time.Sleep(time.Until(target))
}
