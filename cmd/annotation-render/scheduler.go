package main

import "time"

// stepScheduler runs frame callbacks synchronously. Each frame advances a
// virtual clock by one interval, so zoom animations are deterministic.
type stepScheduler struct {
	queue    []func()
	now      time.Time
	interval time.Duration
}

func newStepScheduler(fps int) *stepScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &stepScheduler{
		now:      time.Unix(0, 0),
		interval: time.Second / time.Duration(fps),
	}
}

// RequestFrame implements viewport.FrameScheduler.
func (s *stepScheduler) RequestFrame(fn func()) {
	s.queue = append(s.queue, fn)
}

// Now is the controller clock.
func (s *stepScheduler) Now() time.Time {
	return s.now
}

// Drain runs frames until nothing is pending or limit frames have run, and
// returns the number of frames run.
func (s *stepScheduler) Drain(limit int) int {
	frames := 0
	for len(s.queue) > 0 && frames < limit {
		batch := s.queue
		s.queue = nil
		s.now = s.now.Add(s.interval)
		for _, fn := range batch {
			fn()
		}
		frames++
	}
	return frames
}

// Pending reports the number of queued callbacks.
func (s *stepScheduler) Pending() int {
	return len(s.queue)
}
