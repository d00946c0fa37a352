package scan

import (
	"encoding/json"
	"log"
)

// Phase enumerates the states of the run state machine.
type Phase int

// The run progresses Idle -> Running -> Complete, and returns to Idle on
// reset.
const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseComplete:
		return "complete"
	default:
		log.Panicf("invalid phase %d", int(p))
		return ""
	}
}

// MarshalJSON renders the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// RunState tracks progression through the monitoring cycles of one run.
type RunState struct {
	Phase           Phase `json:"phase"`
	Cycle           int   `json:"cycle"`
	TotalCycles     int   `json:"total_cycles"`
	ThreatsDetected int   `json:"threats_detected"`
}

// Running tells if a run is in progress.
func (s RunState) Running() bool {
	return s.Phase == PhaseRunning
}

type runStateJSON struct {
	Running         bool  `json:"running"`
	Phase           Phase `json:"phase"`
	Cycle           int   `json:"cycle"`
	TotalCycles     int   `json:"total_cycles"`
	ThreatsDetected int   `json:"threats_detected"`
}

// MarshalJSON includes the derived running flag in the state record.
func (s RunState) MarshalJSON() ([]byte, error) {
	return json.Marshal(runStateJSON{
		Running:         s.Running(),
		Phase:           s.Phase,
		Cycle:           s.Cycle,
		TotalCycles:     s.TotalCycles,
		ThreatsDetected: s.ThreatsDetected,
	})
}
