package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberdna/cyberdna/console"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/simulation"
)

var runFlags struct {
	cycles      int
	seed        int64
	live        bool
	realtime    bool
	speedup     float64
	jsonRecords bool
	noRecording bool
	output      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scan and render it in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resolveEnvInt(cmd, "cycles", "CYBERDNA_TOTAL_CYCLES",
			&runFlags.cycles)
		resolveEnvString(cmd, "output", "CYBERDNA_DB", &runFlags.output)

		builder := simulation.MakeBuilder().
			WithTotalCycles(runFlags.cycles)

		if cmd.Flags().Changed("seed") {
			builder = builder.WithSeed(runFlags.seed)
		}

		if runFlags.live {
			builder = builder.WithLiveSource()
		}

		if runFlags.noRecording {
			builder = builder.WithoutRecording()
		} else if runFlags.output != "" {
			builder = builder.WithOutputFileName(runFlags.output)
		}

		s, err := builder.Build()
		if err != nil {
			return err
		}
		defer s.Terminate()

		printer := console.NewPrinter(cmd.OutOrStdout())
		if runFlags.jsonRecords {
			printer.WithJSON()
		}
		s.Scanner().AcceptHook(printer)

		if runFlags.realtime {
			s.Engine().AcceptHook(console.NewPacer(runFlags.speedup))
		}

		return s.Run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.cycles, "cycles",
		envInt("CYBERDNA_TOTAL_CYCLES", scan.DefaultTotalCycles),
		"number of monitoring cycles per run")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0,
		"seed of the scripted sample source")
	runCmd.Flags().BoolVar(&runFlags.live, "live", false,
		"sample the host instead of the scripted generator")
	runCmd.Flags().BoolVar(&runFlags.realtime, "realtime", false,
		"pace the run to wall-clock speed")
	runCmd.Flags().Float64Var(&runFlags.speedup, "speedup", 1,
		"wall-clock speedup when pacing in real time")
	runCmd.Flags().BoolVar(&runFlags.jsonRecords, "json", false,
		"print each cycle report as a JSON record")
	runCmd.Flags().BoolVar(&runFlags.noRecording, "no-recording", false,
		"do not store the run in a database")
	runCmd.Flags().StringVar(&runFlags.output, "output",
		os.Getenv("CYBERDNA_DB"),
		"path of the run database, without the .sqlite3 suffix")
}
