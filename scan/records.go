package scan

// Table names in the run database.
const (
	CycleTable   = "cycle_reports"
	AnomalyTable = "anomalies"
)

// A CycleRecord is the flat row stored per monitoring cycle.
type CycleRecord struct {
	Run             string
	Cycle           int
	Timestamp       string
	CPUUsage        int
	NetworkActivity int
	FileAccessRate  int
	AnomalyCount    int
}

// An AnomalyRecord stores one out-of-range reading.
type AnomalyRecord struct {
	Run      string
	Cycle    int
	Metric   string
	Value    int
	Expected string
}
