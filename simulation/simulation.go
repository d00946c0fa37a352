// Package simulation wires the engine, the scanner, the recorder, and the
// optional monitor of one scan run.
package simulation

import (
	"github.com/cyberdna/cyberdna/datarecording"
	"github.com/cyberdna/cyberdna/monitoring"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

// A Simulation provides the services required to run a scan.
type Simulation struct {
	id string

	engine   sim.Engine
	scanner  *scan.Scanner
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor
}

// ID returns the xid-based name of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine that drives the run.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Scanner returns the scanner that performs the monitoring cycles.
func (s *Simulation) Scanner() *scan.Scanner {
	return s.scanner
}

// DataRecorder returns the data recorder used in the simulation. It is nil
// when recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// Monitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run starts the scan and processes events until the run finishes.
func (s *Simulation) Run() error {
	err := s.scanner.Start()
	if err != nil {
		return err
	}

	err = s.engine.Run()
	if err != nil {
		return err
	}

	s.engine.Finished()

	return nil
}

// Terminate releases the resources of the simulation.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}
