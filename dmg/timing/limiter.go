// Package timing paces the driver loop to the speed of real hardware. The
// emulated components never look at the wall clock; only the loop that
// calls RunUntilFrame does.
package timing

import (
	"time"

	"github.com/valerio/go-dmg/dmg/video"
)

// ClockFrequency is the DMG master clock in Hz.
const ClockFrequency = 4194304

// Limiter controls how fast frames are produced.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns
	// immediately when the caller is behind schedule.
	WaitForNextFrame()

	// Reset forgets the schedule, used after pauses.
	Reset()
}

// TargetFPS is the frame rate of the hardware, roughly 59.73.
func TargetFPS() float64 {
	return float64(ClockFrequency) / float64(video.FrameCycles)
}

// FrameDuration returns how long a single frame lasts on hardware.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// SleepLimiter sleeps until each frame's deadline. Deadlines advance by a
// fixed step so rounding in individual sleeps does not accumulate; after
// falling more than maxLag behind it starts over from the current time.
type SleepLimiter struct {
	frame  time.Duration
	next   time.Time
	frames uint64

	now   func() time.Time
	sleep func(time.Duration)
}

const maxLag = 5 * time.Millisecond

// NewSleepLimiter returns a limiter running at the hardware frame rate.
func NewSleepLimiter() *SleepLimiter {
	return newSleepLimiter(FrameDuration(), time.Now, time.Sleep)
}

func newSleepLimiter(frame time.Duration, now func() time.Time, sleep func(time.Duration)) *SleepLimiter {
	return &SleepLimiter{
		frame: frame,
		next:  now(),
		now:   now,
		sleep: sleep,
	}
}

func (s *SleepLimiter) WaitForNextFrame() {
	now := s.now()
	if wait := s.next.Sub(now); wait > 0 {
		s.sleep(wait)
	} else if wait < -maxLag {
		s.next = now
	}

	s.next = s.next.Add(s.frame)
	s.frames++
}

func (s *SleepLimiter) Reset() {
	s.next = s.now()
	s.frames = 0
}

// Frames returns how many frames were paced since the last Reset.
func (s *SleepLimiter) Frames() uint64 {
	return s.frames
}
