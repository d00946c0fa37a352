package scan

import (
	"github.com/cyberdna/cyberdna/sim"
)

// HookPosCycleReport triggers when a cycle report is ready. Item carries the
// dna.Report; Detail carries the total cycle count.
var HookPosCycleReport = &sim.HookPos{Name: "CycleReport"}

// HookPosResponseBegin triggers when an anomalous cycle starts the
// remediation script. Item carries the dna.Report that tripped it.
var HookPosResponseBegin = &sim.HookPos{Name: "ResponseBegin"}

// HookPosResponseStep triggers once per remediation step. Item carries the
// ResponseStep.
var HookPosResponseStep = &sim.HookPos{Name: "ResponseStep"}

// HookPosRunComplete triggers after the last cycle settles. Item carries the
// Summary.
var HookPosRunComplete = &sim.HookPos{Name: "RunComplete"}

// A Summary describes a finished run.
type Summary struct {
	RunID           string `json:"run_id"`
	TotalCycles     int    `json:"total_cycles"`
	ThreatsDetected int    `json:"threats_detected"`
}
