// Package dna defines the behavioral model of a monitored system: the
// metrics that describe it, the baseline that defines healthy behavior, and
// the anomaly reports produced when a sample drifts outside the baseline.
package dna

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// A Metric identifies one monitored system behavior signal.
type Metric string

// The three signals that make up a system's behavioral fingerprint.
const (
	CPUUsage        Metric = "cpu_usage"
	NetworkActivity Metric = "network_activity"
	FileAccessRate  Metric = "file_access_rate"
)

// Metrics lists all monitored metrics in display order.
var Metrics = []Metric{CPUUsage, NetworkActivity, FileAccessRate}

// Unit returns the unit the metric is measured in.
func (m Metric) Unit() string {
	switch m {
	case CPUUsage:
		return "%"
	case NetworkActivity:
		return "Mbps"
	case FileAccessRate:
		return "/sec"
	default:
		return ""
	}
}

// Title returns the human readable name of the metric.
func (m Metric) Title() string {
	switch m {
	case CPUUsage:
		return "CPU Usage"
	case NetworkActivity:
		return "Network Activity"
	case FileAccessRate:
		return "File Access Rate"
	default:
		return string(m)
	}
}

// A Range is an inclusive integer bound on a metric. A value equal to either
// end of the range is compliant.
type Range struct {
	Low  int
	High int
}

// Contains tells if a value falls within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Low && v <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// A Baseline maps each metric to its healthy range. It is fixed at process
// start and never mutated afterwards.
type Baseline map[Metric]Range

// DefaultBaseline returns the healthy ranges of the simulated system.
func DefaultBaseline() Baseline {
	return Baseline{
		CPUUsage:        {Low: 10, High: 15},
		NetworkActivity: {Low: 20, High: 40},
		FileAccessRate:  {Low: 0, High: 3},
	}
}

var baselineEnvVars = map[Metric]string{
	CPUUsage:        "CYBERDNA_BASELINE_CPU",
	NetworkActivity: "CYBERDNA_BASELINE_NETWORK",
	FileAccessRate:  "CYBERDNA_BASELINE_FILE_ACCESS",
}

// BaselineFromEnv returns the default baseline with any per-metric override
// from the environment applied. Overrides use the "low-high" form, e.g.,
// CYBERDNA_BASELINE_CPU=10-15.
func BaselineFromEnv() (Baseline, error) {
	baseline := DefaultBaseline()

	for metric, envVar := range baselineEnvVars {
		value, exists := os.LookupEnv(envVar)
		if !exists {
			continue
		}

		r, err := ParseRange(value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", envVar, err)
		}

		baseline[metric] = r
	}

	return baseline, nil
}

// ParseRange parses an inclusive range in the "low-high" form.
func ParseRange(s string) (Range, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("range %q is not in the low-high form", s)
	}

	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("range %q has a non-integer low bound", s)
	}

	high, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, fmt.Errorf("range %q has a non-integer high bound", s)
	}

	if low > high {
		return Range{}, fmt.Errorf("range %q has low above high", s)
	}

	return Range{Low: low, High: high}, nil
}

// A Sample is one reading of all monitored metrics.
type Sample map[Metric]int
