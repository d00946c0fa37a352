// Package scan drives monitoring cycles on the event engine: fabricate a
// sample, check it against the baseline, store and emit the report, and play
// the remediation script when the check fails.
package scan

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/cyberdna/cyberdna/datarecording"
	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/sim"
)

// DefaultTotalCycles is the number of monitoring cycles a run performs
// unless configured otherwise.
const DefaultTotalCycles = 3

// Virtual-time pacing of a run, in seconds. A clean cycle settles after the
// report; an anomalous cycle additionally plays one response step per
// second before settling.
const (
	responseStepDelay = 1
	cycleSettleDelay  = 3
)

func anomalousCycleDelay() sim.VTimeInSec {
	return sim.VTimeInSec(len(ResponseSteps)*responseStepDelay +
		cycleSettleDelay)
}

// A Scanner runs the monitoring cycles of one system. It owns the run state
// machine and is the handler of every event it schedules.
type Scanner struct {
	sim.HookableBase

	name     string
	engine   sim.Engine
	source   dna.Source
	baseline dna.Baseline
	recorder datarecording.DataRecorder
	clock    func() time.Time

	lock  sync.Mutex
	state RunState
	runID string
	epoch int
}

// NewScanner creates a Scanner that samples from source and checks against
// baseline.
func NewScanner(
	name string,
	engine sim.Engine,
	source dna.Source,
	baseline dna.Baseline,
	totalCycles int,
) *Scanner {
	if totalCycles <= 0 {
		log.Panicf("total cycles must be positive, got %d", totalCycles)
	}

	s := &Scanner{
		name:     name,
		engine:   engine,
		source:   source,
		baseline: baseline,
		clock:    time.Now,
	}
	s.state = RunState{
		Phase:       PhaseIdle,
		TotalCycles: totalCycles,
	}

	return s
}

// WithRecorder directs the scanner to store cycle and anomaly records.
func (s *Scanner) WithRecorder(r datarecording.DataRecorder) *Scanner {
	s.recorder = r

	if !r.TableExists(CycleTable) {
		r.CreateTable(CycleTable, CycleRecord{})
	}

	if !r.TableExists(AnomalyTable) {
		r.CreateTable(AnomalyTable, AnomalyRecord{})
	}

	return s
}

// WithClock replaces the wall clock used for report timestamps.
func (s *Scanner) WithClock(clock func() time.Time) *Scanner {
	s.clock = clock
	return s
}

// Name returns the name of the scanner.
func (s *Scanner) Name() string {
	return s.name
}

// Baseline returns the healthy ranges the scanner checks against.
func (s *Scanner) Baseline() dna.Baseline {
	return s.baseline
}

// RunID returns the ID of the current run. It is empty before the first
// start.
func (s *Scanner) RunID() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.runID
}

// State returns a copy of the run state.
func (s *Scanner) State() RunState {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state
}

// Start schedules the first cycle of a new run. Starting is rejected while
// another run is in progress.
func (s *Scanner) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.state.Phase == PhaseRunning {
		return fmt.Errorf("a scan run is already in progress")
	}

	s.epoch++
	s.runID = xid.New().String()
	s.state.Phase = PhaseRunning
	s.state.Cycle = 0
	s.state.ThreatsDetected = 0

	evt := newCycleEvent(s.engine.CurrentTime(), s, 0, s.epoch)
	s.engine.Schedule(evt)

	return nil
}

// Reset discards the in-flight run immediately and returns the state
// machine to idle. Events already scheduled for the old run are dropped
// when they fire.
func (s *Scanner) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.epoch++
	s.state.Phase = PhaseIdle
	s.state.Cycle = 0
	s.state.ThreatsDetected = 0
}

// Handle processes the events the scanner scheduled for itself.
func (s *Scanner) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case *CycleEvent:
		return s.handleCycleEvent(evt)
	case *ResponseStepEvent:
		return s.handleResponseStepEvent(evt)
	case *CompleteEvent:
		return s.handleCompleteEvent(evt)
	default:
		log.Panicf("scanner cannot handle event %T", e)
		return nil
	}
}

func (s *Scanner) handleCycleEvent(evt *CycleEvent) error {
	s.lock.Lock()
	if evt.epoch != s.epoch {
		s.lock.Unlock()
		return nil
	}
	total := s.state.TotalCycles
	s.lock.Unlock()

	sample, err := s.source.Sample(evt.Cycle, total)
	if err != nil {
		return fmt.Errorf("sampling cycle %d: %w", evt.Cycle+1, err)
	}

	anomalies := dna.Detect(sample, s.baseline)
	report := dna.Report{
		Timestamp: s.clock(),
		Cycle:     evt.Cycle + 1,
		Metrics:   sample,
		Anomalies: anomalies,
	}

	s.lock.Lock()
	// Reset may have landed while the lock was released for sampling. The
	// report of a dead run is neither stored nor emitted.
	if evt.epoch != s.epoch {
		s.lock.Unlock()
		return nil
	}
	s.state.Cycle = evt.Cycle + 1
	if !report.Clean() {
		s.state.ThreatsDetected++
	}
	runID := s.runID
	s.lock.Unlock()

	s.record(runID, report)

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosCycleReport,
		Item:   report,
		Detail: total,
	})

	now := evt.Time()
	next := now + cycleSettleDelay

	if !report.Clean() {
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosResponseBegin,
			Item:   report,
		})

		for i := range ResponseSteps {
			stepTime := now + sim.VTimeInSec((i+1)*responseStepDelay)
			s.engine.Schedule(
				newResponseStepEvent(stepTime, s, i, evt.epoch))
		}

		next = now + anomalousCycleDelay()
	}

	if evt.Cycle+1 >= total {
		s.engine.Schedule(newCompleteEvent(next, s, evt.epoch))
	} else {
		s.engine.Schedule(newCycleEvent(next, s, evt.Cycle+1, evt.epoch))
	}

	return nil
}

func (s *Scanner) handleResponseStepEvent(evt *ResponseStepEvent) error {
	s.lock.Lock()
	stale := evt.epoch != s.epoch
	s.lock.Unlock()

	if stale {
		return nil
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosResponseStep,
		Item:   responseStep(evt.Step),
	})

	return nil
}

func (s *Scanner) handleCompleteEvent(evt *CompleteEvent) error {
	s.lock.Lock()
	if evt.epoch != s.epoch {
		s.lock.Unlock()
		return nil
	}

	s.state.Phase = PhaseComplete
	summary := Summary{
		RunID:           s.runID,
		TotalCycles:     s.state.TotalCycles,
		ThreatsDetected: s.state.ThreatsDetected,
	}
	s.lock.Unlock()

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosRunComplete,
		Item:   summary,
	})

	return nil
}

func (s *Scanner) record(runID string, report dna.Report) {
	if s.recorder == nil {
		return
	}

	timestamp := report.Timestamp.Format("2006-01-02 15:04:05")

	s.recorder.InsertData(CycleTable, CycleRecord{
		Run:             runID,
		Cycle:           report.Cycle,
		Timestamp:       timestamp,
		CPUUsage:        report.Metrics[dna.CPUUsage],
		NetworkActivity: report.Metrics[dna.NetworkActivity],
		FileAccessRate:  report.Metrics[dna.FileAccessRate],
		AnomalyCount:    len(report.Anomalies),
	})

	for _, metric := range dna.Metrics {
		anomaly, found := report.Anomalies[metric]
		if !found {
			continue
		}

		s.recorder.InsertData(AnomalyTable, AnomalyRecord{
			Run:      runID,
			Cycle:    report.Cycle,
			Metric:   string(metric),
			Value:    anomaly.Value,
			Expected: anomaly.Expected,
		})
	}
}
