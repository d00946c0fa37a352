package monitoring

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

var _ = Describe("Monitor", func() {
	var monitor *Monitor

	BeforeEach(func() {
		monitor = NewMonitor()
	})

	makeReport := func(cycle int) dna.Report {
		return dna.Report{
			Timestamp: time.Date(2025, 3, 14, 9, 0, cycle, 0, time.UTC),
			Cycle:     cycle,
			Metrics: dna.Sample{
				dna.CPUUsage:        12,
				dna.NetworkActivity: 30,
				dna.FileAccessRate:  1,
			},
		}
	}

	It("should capture cycle reports in order", func() {
		for cycle := 1; cycle <= 3; cycle++ {
			monitor.Func(sim.HookCtx{
				Pos:  scan.HookPosCycleReport,
				Item: makeReport(cycle),
			})
		}

		Expect(monitor.reports).To(HaveLen(3))
		Expect(monitor.reports[0].Cycle).To(Equal(1))
		Expect(monitor.reports[2].Cycle).To(Equal(3))
	})

	It("should ignore non-report hook positions", func() {
		monitor.Func(sim.HookCtx{
			Pos:  scan.HookPosResponseStep,
			Item: scan.ResponseStep{Step: 0},
		})

		Expect(monitor.reports).To(BeEmpty())
	})

	It("should cap the number of stored reports", func() {
		for cycle := 1; cycle <= maxStoredReports+10; cycle++ {
			monitor.Func(sim.HookCtx{
				Pos:  scan.HookPosCycleReport,
				Item: makeReport(cycle),
			})
		}

		Expect(monitor.reports).To(HaveLen(maxStoredReports))
		Expect(monitor.reports[0].Cycle).To(Equal(11))
	})

	It("should derive progress from the run state", func() {
		bar := progressFromState("run-1", scan.RunState{
			Phase:       scan.PhaseRunning,
			Cycle:       2,
			TotalCycles: 3,
		})

		Expect(bar.ID).To(Equal("run-1"))
		Expect(bar.Finished).To(Equal(uint64(2)))
		Expect(bar.Total).To(Equal(uint64(3)))
		Expect(bar.Running).To(BeTrue())
	})
})
