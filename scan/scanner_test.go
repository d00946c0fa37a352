package scan_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

// stubSource replays a fixed sample per cycle.
type stubSource struct {
	samples []dna.Sample
}

func (s *stubSource) Sample(cycle, _ int) (dna.Sample, error) {
	return s.samples[cycle], nil
}

// collector records every hook invocation on the scanner.
type collector struct {
	positions []*sim.HookPos
	items     []any
}

func (c *collector) Func(ctx sim.HookCtx) {
	c.positions = append(c.positions, ctx.Pos)
	c.items = append(c.items, ctx.Item)
}

func (c *collector) reports() []dna.Report {
	var reports []dna.Report
	for i, pos := range c.positions {
		if pos == scan.HookPosCycleReport {
			reports = append(reports, c.items[i].(dna.Report))
		}
	}

	return reports
}

func (c *collector) steps() []scan.ResponseStep {
	var steps []scan.ResponseStep
	for i, pos := range c.positions {
		if pos == scan.HookPosResponseStep {
			steps = append(steps, c.items[i].(scan.ResponseStep))
		}
	}

	return steps
}

// gatedSource blocks inside Sample until released, so a concurrent Reset
// can land while a cycle event is in flight.
type gatedSource struct {
	sampling chan struct{}
	release  chan struct{}
	sample   dna.Sample
}

func (s *gatedSource) Sample(_, _ int) (dna.Sample, error) {
	s.sampling <- struct{}{}
	<-s.release

	return s.sample, nil
}

// stepTimer records the virtual time of every response step event.
type stepTimer struct {
	times []sim.VTimeInSec
}

func (t *stepTimer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	if evt, ok := ctx.Item.(*scan.ResponseStepEvent); ok {
		t.times = append(t.times, evt.Time())
	}
}

var _ = Describe("Scanner", func() {
	var (
		engine    *sim.SerialEngine
		source    *stubSource
		scanner   *scan.Scanner
		collected *collector
	)

	anomalousSample := dna.Sample{
		dna.CPUUsage:        45,
		dna.NetworkActivity: 30,
		dna.FileAccessRate:  1,
	}
	cleanSample := dna.Sample{
		dna.CPUUsage:        12,
		dna.NetworkActivity: 30,
		dna.FileAccessRate:  1,
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		source = &stubSource{
			samples: []dna.Sample{
				anomalousSample,
				cleanSample,
				cleanSample,
			},
		}
		scanner = scan.NewScanner(
			"scanner", engine, source, dna.DefaultBaseline(), 3).
			WithClock(func() time.Time {
				return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
			})
		collected = &collector{}
		scanner.AcceptHook(collected)
	})

	It("should start in the idle state", func() {
		state := scanner.State()

		Expect(state.Phase).To(Equal(scan.PhaseIdle))
		Expect(state.Running()).To(BeFalse())
		Expect(state.Cycle).To(Equal(0))
		Expect(state.TotalCycles).To(Equal(3))
	})

	It("should report one cycle per configured cycle", func() {
		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		reports := collected.reports()
		Expect(reports).To(HaveLen(3))
		Expect(reports[0].Cycle).To(Equal(1))
		Expect(reports[1].Cycle).To(Equal(2))
		Expect(reports[2].Cycle).To(Equal(3))
		Expect(reports[2].Clean()).To(BeTrue())
	})

	It("should reject starting while running", func() {
		Expect(scanner.Start()).To(Succeed())

		Expect(scanner.Start()).To(HaveOccurred())
	})

	It("should complete and count threats", func() {
		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		state := scanner.State()
		Expect(state.Phase).To(Equal(scan.PhaseComplete))
		Expect(state.Cycle).To(Equal(3))
		Expect(state.ThreatsDetected).To(Equal(1))

		var summaries []scan.Summary
		for _, item := range collected.items {
			if s, ok := item.(scan.Summary); ok {
				summaries = append(summaries, s)
			}
		}
		Expect(summaries).To(HaveLen(1))
		Expect(summaries[0].ThreatsDetected).To(Equal(1))
		Expect(summaries[0].RunID).To(Equal(scanner.RunID()))
	})

	It("should play the full script on each anomalous cycle", func() {
		source.samples = []dna.Sample{
			anomalousSample,
			anomalousSample,
			cleanSample,
		}

		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		steps := collected.steps()
		Expect(steps).To(HaveLen(2 * len(scan.ResponseSteps)))

		for i, step := range steps {
			want := i % len(scan.ResponseSteps)
			Expect(step.Step).To(Equal(want))
			Expect(step.Text).To(Equal(scan.ResponseSteps[want]))
			Expect(step.Final).To(
				Equal(want == len(scan.ResponseSteps)-1))
		}
	})

	It("should emit response steps one second apart", func() {
		timer := &stepTimer{}
		engine.AcceptHook(timer)

		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(timer.times).To(HaveLen(len(scan.ResponseSteps)))
		for i := 1; i < len(timer.times); i++ {
			Expect(timer.times[i] - timer.times[i-1]).
				To(Equal(sim.VTimeInSec(1)))
		}
	})

	It("should not respond to a clean run", func() {
		source.samples = []dna.Sample{
			cleanSample,
			cleanSample,
			cleanSample,
		}

		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(collected.steps()).To(BeEmpty())
		Expect(scanner.State().ThreatsDetected).To(Equal(0))
	})

	It("should drop in-flight events on reset", func() {
		Expect(scanner.Start()).To(Succeed())
		scanner.Reset()

		Expect(engine.Run()).To(Succeed())

		Expect(collected.positions).To(BeEmpty())

		state := scanner.State()
		Expect(state.Phase).To(Equal(scan.PhaseIdle))
		Expect(state.Running()).To(BeFalse())
		Expect(state.Cycle).To(Equal(0))
	})

	It("should stay idle when reset lands during a cycle", func() {
		gated := &gatedSource{
			sampling: make(chan struct{}),
			release:  make(chan struct{}),
			sample:   anomalousSample,
		}
		gatedScanner := scan.NewScanner(
			"gated", engine, gated, dna.DefaultBaseline(), 3)
		gatedCollector := &collector{}
		gatedScanner.AcceptHook(gatedCollector)

		Expect(gatedScanner.Start()).To(Succeed())

		done := make(chan error)
		go func() {
			done <- engine.Run()
		}()

		<-gated.sampling
		gatedScanner.Reset()
		close(gated.release)

		Expect(<-done).To(Succeed())

		state := gatedScanner.State()
		Expect(state.Phase).To(Equal(scan.PhaseIdle))
		Expect(state.Running()).To(BeFalse())
		Expect(state.Cycle).To(Equal(0))
		Expect(state.ThreatsDetected).To(Equal(0))
		Expect(gatedCollector.positions).To(BeEmpty())
	})

	It("should return to idle on reset after completion", func() {
		Expect(scanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())
		Expect(scanner.State().Phase).To(Equal(scan.PhaseComplete))

		scanner.Reset()

		state := scanner.State()
		Expect(state.Phase).To(Equal(scan.PhaseIdle))
		Expect(state.Cycle).To(Equal(0))
	})

	It("should allow a new run after reset", func() {
		Expect(scanner.Start()).To(Succeed())
		scanner.Reset()
		Expect(scanner.Start()).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(collected.reports()).To(HaveLen(3))
	})

	It("should end a scripted run with a guaranteed clean cycle", func() {
		scripted := dna.NewScriptedSource(99)
		scriptedScanner := scan.NewScanner(
			"scripted", engine, scripted, dna.DefaultBaseline(), 3)
		scriptedCollector := &collector{}
		scriptedScanner.AcceptHook(scriptedCollector)

		Expect(scriptedScanner.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		reports := scriptedCollector.reports()
		Expect(reports).To(HaveLen(3))
		Expect(reports[2].Clean()).To(BeTrue())
	})
})
