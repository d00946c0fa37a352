package simulation_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyberdna/cyberdna/datarecording"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/simulation"
)

var _ = Describe("Simulation", func() {
	It("should run a scripted scan end to end", func() {
		s, err := simulation.MakeBuilder().
			WithSeed(1).
			WithoutRecording().
			Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Run()).To(Succeed())

		state := s.Scanner().State()
		Expect(state.Phase).To(Equal(scan.PhaseComplete))
		Expect(state.Cycle).To(Equal(scan.DefaultTotalCycles))

		s.Terminate()
	})

	It("should honor a custom cycle count", func() {
		s, err := simulation.MakeBuilder().
			WithSeed(1).
			WithTotalCycles(5).
			WithoutRecording().
			Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Run()).To(Succeed())

		Expect(s.Scanner().State().Cycle).To(Equal(5))

		s.Terminate()
	})

	It("should record every cycle of the run", func() {
		outputPath := filepath.Join(
			GinkgoT().TempDir(), "simulation_test")

		s, err := simulation.MakeBuilder().
			WithSeed(7).
			WithOutputFileName(outputPath).
			Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Run()).To(Succeed())
		s.Terminate()

		reader := datarecording.NewReader(outputPath + ".sqlite3")
		defer reader.Close()

		reader.MapTable(scan.CycleTable, scan.CycleRecord{})

		results, total, err := reader.Query(
			context.Background(),
			scan.CycleTable,
			datarecording.QueryParams{OrderBy: "Cycle"},
		)
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(scan.DefaultTotalCycles))

		last := results[len(results)-1].(*scan.CycleRecord)
		Expect(last.Cycle).To(Equal(scan.DefaultTotalCycles))
		Expect(last.AnomalyCount).To(Equal(0))
		Expect(last.Run).To(Equal(s.Scanner().RunID()))
	})

	It("should reject a monitor port without monitoring", func() {
		Expect(func() {
			_, _ = simulation.MakeBuilder().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})
})
