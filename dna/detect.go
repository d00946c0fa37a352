package dna

// Detect compares a sample against a baseline and reports every metric that
// reads outside its inclusive healthy range. It is a pure function of its
// inputs.
func Detect(sample Sample, baseline Baseline) AnomalyReport {
	report := AnomalyReport{}

	for _, metric := range Metrics {
		r, monitored := baseline[metric]
		if !monitored {
			continue
		}

		v := sample[metric]
		if !r.Contains(v) {
			report[metric] = Anomaly{
				Value:    v,
				Expected: r.String(),
			}
		}
	}

	return report
}
