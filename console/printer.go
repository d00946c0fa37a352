// Package console renders a scan run on a terminal. The printer subscribes
// to the scanner as a hook and colors each line by its status.
package console

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cyberdna/cyberdna/dna"
	"github.com/cyberdna/cyberdna/scan"
	"github.com/cyberdna/cyberdna/sim"
)

// A Printer renders cycle reports, response steps, and the run summary.
type Printer struct {
	out      io.Writer
	withJSON bool

	ok       *color.Color
	alert    *color.Color
	warn     *color.Color
	info     *color.Color
	headline *color.Color
}

// NewPrinter creates a Printer that writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:      out,
		ok:       color.New(color.FgGreen),
		alert:    color.New(color.FgRed),
		warn:     color.New(color.FgYellow),
		info:     color.New(color.FgCyan),
		headline: color.New(color.Bold),
	}
}

// WithJSON additionally prints each cycle report as a JSON record.
func (p *Printer) WithJSON() *Printer {
	p.withJSON = true
	return p
}

// Func renders one hook invocation.
func (p *Printer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case scan.HookPosCycleReport:
		p.printReport(ctx.Item.(dna.Report), ctx.Detail.(int))
	case scan.HookPosResponseBegin:
		p.alert.Fprintln(p.out,
			"Threat detected! Initiating response...")
	case scan.HookPosResponseStep:
		p.printStep(ctx.Item.(scan.ResponseStep))
	case scan.HookPosRunComplete:
		p.printSummary(ctx.Item.(scan.Summary))
	}
}

func (p *Printer) printReport(report dna.Report, total int) {
	p.headline.Fprintf(p.out, "Monitoring Cycle %d of %d  [%s]\n",
		report.Cycle, total,
		report.Timestamp.Format("2006-01-02 15:04:05"))

	for _, metric := range dna.Metrics {
		value := report.Metrics[metric]

		anomaly, anomalous := report.Anomalies[metric]
		if anomalous {
			p.alert.Fprintf(p.out, "  [ALERT] %s: %d%s (expected %s)\n",
				metric.Title(), value, metric.Unit(), anomaly.Expected)
		} else {
			p.ok.Fprintf(p.out, "  [ OK  ] %s: %d%s\n",
				metric.Title(), value, metric.Unit())
		}
	}

	if report.Clean() {
		p.info.Fprintln(p.out,
			"  All systems normal. No threats detected.")
	}

	if p.withJSON {
		p.printJSON(report)
	}
}

func (p *Printer) printJSON(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		p.alert.Fprintf(p.out, "  cannot encode record: %s\n", err)
		return
	}

	fmt.Fprintf(p.out, "  %s\n", data)
}

func (p *Printer) printStep(step scan.ResponseStep) {
	if step.Final {
		p.ok.Fprintf(p.out, "  %s\n", step.Text)
		return
	}

	p.warn.Fprintf(p.out, "  %s\n", step.Text)
}

func (p *Printer) printSummary(summary scan.Summary) {
	p.ok.Fprintln(p.out, "Simulation complete!")
	fmt.Fprintf(p.out,
		"  run %s: %d cycles, %d threats detected and neutralized\n",
		summary.RunID, summary.TotalCycles, summary.ThreatsDetected)
}
