package dna

import (
	"math/rand"
)

// A Source produces one sample per monitoring cycle.
type Source interface {
	Sample(cycle, totalCycles int) (Sample, error)
}

// scriptedRanges are deliberately wider than the baseline so that early
// cycles can read either inside or outside the healthy ranges.
var scriptedRanges = map[Metric]Range{
	CPUUsage:        {Low: 5, High: 45},
	NetworkActivity: {Low: 10, High: 50},
	FileAccessRate:  {Low: 0, High: 7},
}

// safeSample is returned on the final cycle so that every run ends clean.
var safeSample = Sample{
	CPUUsage:        12,
	NetworkActivity: 30,
	FileAccessRate:  1,
}

// ScriptedRanges returns the wide ranges the scripted source draws from on
// non-final cycles.
func ScriptedRanges() map[Metric]Range {
	ranges := make(map[Metric]Range, len(scriptedRanges))
	for m, r := range scriptedRanges {
		ranges[m] = r
	}

	return ranges
}

// A ScriptedSource fabricates samples. Non-final cycles draw uniformly from
// ranges wide enough to violate the baseline; the final cycle always reads
// safe values.
type ScriptedSource struct {
	rng *rand.Rand
}

// NewScriptedSource creates a ScriptedSource. The seed fixes the draw
// sequence, which keeps runs reproducible.
func NewScriptedSource(seed int64) *ScriptedSource {
	return &ScriptedSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Sample fabricates the reading for one cycle.
func (s *ScriptedSource) Sample(cycle, totalCycles int) (Sample, error) {
	if cycle == totalCycles-1 {
		sample := make(Sample, len(safeSample))
		for m, v := range safeSample {
			sample[m] = v
		}

		return sample, nil
	}

	sample := make(Sample, len(scriptedRanges))
	for _, m := range Metrics {
		r := scriptedRanges[m]
		sample[m] = r.Low + s.rng.Intn(r.High-r.Low+1)
	}

	return sample, nil
}
