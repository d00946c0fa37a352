package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/simulation"
)

var serveFlags struct {
	port        int
	open        bool
	cycles      int
	live        bool
	noRecording bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a scan over HTTP so it can be driven from a browser",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resolveEnvInt(cmd, "cycles", "CYBERDNA_TOTAL_CYCLES",
			&serveFlags.cycles)
		resolveEnvInt(cmd, "port", "CYBERDNA_MONITOR_PORT",
			&serveFlags.port)

		builder := simulation.MakeBuilder().
			WithTotalCycles(serveFlags.cycles).
			WithMonitoring()

		if serveFlags.port > 0 {
			builder = builder.WithMonitorPort(serveFlags.port)
		}

		if serveFlags.live {
			builder = builder.WithLiveSource()
		}

		if serveFlags.noRecording {
			builder = builder.WithoutRecording()
		}

		s, err := builder.Build()
		if err != nil {
			return err
		}
		defer s.Terminate()

		url := s.Monitor().StartServer()

		if serveFlags.open {
			_ = browser.OpenURL(url)
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		fmt.Fprintln(os.Stderr, "Shutting down")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serveFlags.port, "port",
		envInt("CYBERDNA_MONITOR_PORT", 0),
		"port of the monitoring server, random when unset")
	serveCmd.Flags().BoolVar(&serveFlags.open, "open", false,
		"open the monitoring page in a browser")
	serveCmd.Flags().IntVar(&serveFlags.cycles, "cycles",
		envInt("CYBERDNA_TOTAL_CYCLES", scan.DefaultTotalCycles),
		"number of monitoring cycles per run")
	serveCmd.Flags().BoolVar(&serveFlags.live, "live", false,
		"sample the host instead of the scripted generator")
	serveCmd.Flags().BoolVar(&serveFlags.noRecording, "no-recording", false,
		"do not store runs in a database")
}
