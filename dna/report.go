package dna

import (
	"encoding/json"
	"time"
)

// An Anomaly describes one reading that fell outside its baseline range.
type Anomaly struct {
	Value    int    `json:"value"`
	Expected string `json:"expected_range"`
}

// An AnomalyReport maps each offending metric to the detail of its
// violation. An empty report means the cycle was clean.
type AnomalyReport map[Metric]Anomaly

// A Report is the record a monitoring cycle emits at the output boundary.
// Cycle is 1-based for display.
type Report struct {
	Timestamp time.Time
	Cycle     int
	Metrics   Sample
	Anomalies AnomalyReport
}

// Clean tells if the cycle had no anomaly.
func (r Report) Clean() bool {
	return len(r.Anomalies) == 0
}

type reportJSON struct {
	Timestamp string `json:"timestamp"`
	Cycle     int    `json:"cycle"`
	Metrics   Sample `json:"metrics"`
	Anomalies any    `json:"anomalies"`
}

// MarshalJSON renders the report in the display form. A clean cycle reports
// its anomalies as the string "None detected".
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Timestamp: r.Timestamp.Format("2006-01-02 15:04:05"),
		Cycle:     r.Cycle,
		Metrics:   r.Metrics,
	}

	if r.Clean() {
		out.Anomalies = "None detected"
	} else {
		out.Anomalies = r.Anomalies
	}

	return json.Marshal(out)
}
