package dna

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/net"
)

// A LiveSource reads the metrics from the host instead of fabricating them.
// Unlike the scripted source, it offers no clean-final-cycle guarantee.
type LiveSource struct {
	lastAt    time.Time
	lastBytes uint64
	lastOps   uint64
}

// NewLiveSource creates a LiveSource and primes the counters that rate
// computation needs.
func NewLiveSource() (*LiveSource, error) {
	s := &LiveSource{}

	bytes, ops, err := readCounters()
	if err != nil {
		return nil, err
	}

	s.lastAt = time.Now()
	s.lastBytes = bytes
	s.lastOps = ops

	return s, nil
}

// Sample reads the host metrics. The cycle arguments are ignored: live
// readings do not follow a script.
func (s *LiveSource) Sample(_, _ int) (Sample, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("reading cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return nil, fmt.Errorf("no cpu usage reading available")
	}

	bytes, ops, err := readCounters()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(s.lastAt).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	mbps := float64(counterDelta(bytes, s.lastBytes)) * 8 / 1e6 / elapsed
	opsPerSec := float64(counterDelta(ops, s.lastOps)) / elapsed

	s.lastAt = now
	s.lastBytes = bytes
	s.lastOps = ops

	return Sample{
		CPUUsage:        int(percents[0] + 0.5),
		NetworkActivity: int(mbps + 0.5),
		FileAccessRate:  int(opsPerSec + 0.5),
	}, nil
}

// counterDelta clamps the delta to zero when a kernel counter restarted,
// e.g. after an interface was re-created.
func counterDelta(current, previous uint64) uint64 {
	if current < previous {
		return 0
	}

	return current - previous
}

func readCounters() (netBytes, diskOps uint64, err error) {
	netStats, err := net.IOCounters(false)
	if err != nil {
		return 0, 0, fmt.Errorf("reading network counters: %w", err)
	}

	for _, stat := range netStats {
		netBytes += stat.BytesSent + stat.BytesRecv
	}

	diskStats, err := disk.IOCounters()
	if err != nil {
		return 0, 0, fmt.Errorf("reading disk counters: %w", err)
	}

	for _, stat := range diskStats {
		diskOps += stat.ReadCount + stat.WriteCount
	}

	return netBytes, diskOps, nil
}
