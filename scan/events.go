package scan

import (
	"github.com/cyberdna/cyberdna/sim"
)

// A CycleEvent triggers one sample-check-respond pass.
type CycleEvent struct {
	*sim.EventBase

	Cycle int
	epoch int
}

func newCycleEvent(
	t sim.VTimeInSec,
	handler sim.Handler,
	cycle int,
	epoch int,
) *CycleEvent {
	return &CycleEvent{
		EventBase: sim.NewEventBase(t, handler),
		Cycle:     cycle,
		epoch:     epoch,
	}
}

// A ResponseStepEvent emits one line of the remediation script.
type ResponseStepEvent struct {
	*sim.EventBase

	Step  int
	epoch int
}

func newResponseStepEvent(
	t sim.VTimeInSec,
	handler sim.Handler,
	step int,
	epoch int,
) *ResponseStepEvent {
	return &ResponseStepEvent{
		EventBase: sim.NewEventBase(t, handler),
		Step:      step,
		epoch:     epoch,
	}
}

// A CompleteEvent marks the end of a run after the last cycle settles.
type CompleteEvent struct {
	*sim.EventBase

	epoch int
}

func newCompleteEvent(
	t sim.VTimeInSec,
	handler sim.Handler,
	epoch int,
) *CompleteEvent {
	return &CompleteEvent{
		EventBase: sim.NewEventBase(t, handler),
		epoch:     epoch,
	}
}
