package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic counters for pipeline telemetry.
type Stats struct {
	PointsDone        uint64 // query points completed
	ProfilesProcessed uint64 // profiles that entered a reduction
	RowsWritten       uint64 // output rows written

	running  atomic.Bool
	stopCh   chan struct{}
	silent   bool
	total    uint64 // expected query points, 0 if unknown
	lastDone uint64
	lastTime time.Time

	// Moving average window for points/s.
	rateWindow []float64
	rateIndex  int
}

// NewStats creates a new Stats instance. total is the expected number
// of query points (0 if unknown).
func NewStats(total uint64) *Stats {
	return &Stats{
		stopCh:     make(chan struct{}),
		total:      total,
		rateWindow: make([]float64, 10), // 10-sample moving average (5 seconds)
	}
}

// AddPoints atomically increments the completed query point counter.
func (s *Stats) AddPoints(count uint64) {
	atomic.AddUint64(&s.PointsDone, count)
}

// AddProfiles atomically increments the processed profile counter.
func (s *Stats) AddProfiles(count uint64) {
	atomic.AddUint64(&s.ProfilesProcessed, count)
}

// AddRows atomically increments the output row counter.
func (s *Stats) AddRows(count uint64) {
	atomic.AddUint64(&s.RowsWritten, count)
}

// GetPoints atomically reads the completed query point counter.
func (s *Stats) GetPoints() uint64 {
	return atomic.LoadUint64(&s.PointsDone)
}

// GetProfiles atomically reads the processed profile counter.
func (s *Stats) GetProfiles() uint64 {
	return atomic.LoadUint64(&s.ProfilesProcessed)
}

// GetRows atomically reads the output row counter.
func (s *Stats) GetRows() uint64 {
	return atomic.LoadUint64(&s.RowsWritten)
}

// SetSilent enables or disables silent mode.
func (s *Stats) SetSilent(silent bool) {
	s.silent = silent
}

// StartReporter starts a background goroutine that prints progress
// every 500ms using newline-based output to avoid conflicts with
// log.Printf.
func (s *Stats) StartReporter() {
	if s.running.Load() {
		return
	}

	s.running.Store(true)
	s.lastTime = time.Now()
	s.lastDone = 0

	go s.reporterLoop()
}

// StopReporter stops the background reporter goroutine.
func (s *Stats) StopReporter() {
	if !s.running.Load() {
		return
	}

	s.running.Store(false)
	close(s.stopCh)
}

func (s *Stats) reporterLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.printStatus()
		}
	}
}

func (s *Stats) printStatus() {
	if s.silent {
		return
	}

	now := time.Now()
	elapsed := now.Sub(s.lastTime).Seconds()
	if elapsed < 0.001 {
		return
	}

	done := s.GetPoints()
	profiles := s.GetProfiles()

	rate := float64(done-s.lastDone) / elapsed

	s.rateWindow[s.rateIndex] = rate
	s.rateIndex = (s.rateIndex + 1) % len(s.rateWindow)

	var sum float64
	var count int
	for _, r := range s.rateWindow {
		if r > 0 {
			sum += r
			count++
		}
	}
	smoothed := 0.0
	if count > 0 {
		smoothed = sum / float64(count)
	}

	if s.total > 0 {
		pct := 100 * float64(done) / float64(s.total)
		fmt.Printf("[Progress] Points: %d/%d (%.1f%%) | Rate: %.1f pts/s (avg: %.1f) | Profiles: %d\n",
			done, s.total, pct, rate, smoothed, profiles)
	} else {
		fmt.Printf("[Progress] Points: %d | Rate: %.1f pts/s (avg: %.1f) | Profiles: %d\n",
			done, rate, smoothed, profiles)
	}

	s.lastDone = done
	s.lastTime = now
}

// Reset resets all counters.
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.PointsDone, 0)
	atomic.StoreUint64(&s.ProfilesProcessed, 0)
	atomic.StoreUint64(&s.RowsWritten, 0)
	s.lastDone = 0
	s.lastTime = time.Now()

	for i := range s.rateWindow {
		s.rateWindow[i] = 0
	}
	s.rateIndex = 0
}
