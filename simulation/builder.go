package simulation

import (
	"time"

	"github.com/rs/xid"

	"github.com/cyberdna/cyberdna/datarecording"
	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/monitoring"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	totalCycles    int
	seed           int64
	liveSource     bool
	recordingOn    bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder with the default configuration: a
// scripted three-cycle run with recording on and monitoring off.
func MakeBuilder() Builder {
	return Builder{
		totalCycles: scan.DefaultTotalCycles,
		seed:        time.Now().UnixNano(),
		recordingOn: true,
	}
}

// WithTotalCycles sets the number of monitoring cycles per run.
func (b Builder) WithTotalCycles(n int) Builder {
	b.totalCycles = n
	return b
}

// WithSeed fixes the seed of the scripted sample source.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithLiveSource samples the host instead of the scripted generator.
func (b Builder) WithLiveSource() Builder {
	b.liveSource = true
	return b
}

// WithoutRecording disables the run database.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithMonitoring enables the monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id: xid.New().String(),
	}

	s.engine = sim.NewSerialEngine()

	source, err := b.buildSource()
	if err != nil {
		return nil, err
	}

	baseline, err := dna.BaselineFromEnv()
	if err != nil {
		return nil, err
	}

	s.scanner = scan.NewScanner(
		"scanner", s.engine, source, baseline, b.totalCycles)

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cyberdna_run_" + s.id
		}

		s.recorder = datarecording.New(outputPath)
		s.scanner.WithRecorder(s.recorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterScanner(s.scanner)
	}

	return s, nil
}

func (b Builder) buildSource() (dna.Source, error) {
	if b.liveSource {
		return dna.NewLiveSource()
	}

	return dna.NewScriptedSource(b.seed), nil
}
