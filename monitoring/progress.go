package monitoring

import (
	"github.com/cyberdna/cyberdna/scan"
)

// A ProgressBar is a snapshot of how far the run has progressed.
type ProgressBar struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Total    uint64 `json:"total"`
	Finished uint64 `json:"finished"`
	Running  bool   `json:"running"`
}

func progressFromState(runID string, state scan.RunState) *ProgressBar {
	return &ProgressBar{
		ID:       runID,
		Name:     "monitoring cycles",
		Total:    uint64(state.TotalCycles),
		Finished: uint64(state.Cycle),
		Running:  state.Running(),
	}
}
