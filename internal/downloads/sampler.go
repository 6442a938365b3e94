package downloads

import "time"

// defaultSampleInterval is the minimum time between throughput samples.
// Chunks arrive in bursts much faster than this; recomputing per chunk
// would produce a spiky reading.
const defaultSampleInterval = 500 * time.Millisecond

// sampler computes a smoothed throughput estimate from byte-count samples
// taken at a fixed minimum interval
type sampler struct {
	interval   time.Duration
	lastSample time.Time
	lastBytes  int64
	throughput float64 // bytes per second
	now        func() time.Time
}

func newSampler(interval time.Duration) *sampler {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	return &sampler{
		interval: interval,
		now:      time.Now,
	}
}

// observe records the current received-byte total and returns the
// throughput estimate. The estimate only changes when at least one sample
// interval has elapsed since the previous sample.
func (s *sampler) observe(bytesReceived int64) float64 {
	now := s.now()

	if s.lastSample.IsZero() {
		s.lastSample = now
		s.lastBytes = bytesReceived
		return s.throughput
	}

	elapsed := now.Sub(s.lastSample)
	if elapsed < s.interval {
		return s.throughput
	}

	s.throughput = float64(bytesReceived-s.lastBytes) / elapsed.Seconds()
	s.lastSample = now
	s.lastBytes = bytesReceived

	return s.throughput
}
