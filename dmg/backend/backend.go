// Package backend defines what a presentation layer provides to the driver
// loop, and the loop itself.
package backend

import (
	"context"

	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// Event is something a backend asks the driver loop to do.
type Event uint8

const (
	// EventQuit ends the driver loop.
	EventQuit Event = iota
	// EventPauseToggle stops or resumes emulation. Frames keep being
	// presented while paused.
	EventPauseToggle
)

// Backend presents frames and reports user requests. Backends are
// responsible for:
//   - drawing the frame to their output (terminal, files, nothing)
//   - translating platform input into Events
//   - cleaning up whatever they set up in Init
type Backend interface {
	// Init prepares the backend. It must be called before Update.
	Init(config Config) error

	// Update presents a completed frame and returns the events collected
	// since the previous call.
	Update(frame *video.FrameBuffer) ([]Event, error)

	// Cleanup releases the backend's resources.
	Cleanup() error
}

// Config holds the settings shared by all backends.
type Config struct {
	Title string
}

// Emulator is the part of the system the driver loop needs.
type Emulator interface {
	RunUntilFrame() error
	Frame() *video.FrameBuffer
	Stopped() bool
}

// Run drives the emulator one frame at a time, handing every frame to the
// backend and pacing with the limiter. It returns when the backend asks to
// quit, the emulated CPU stops, emulation fails or ctx is cancelled. The
// context is only checked between frames.
func Run(ctx context.Context, emu Emulator, b Backend, limiter timing.Limiter) error {
	paused := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !paused {
			if err := emu.RunUntilFrame(); err != nil {
				return err
			}
		}

		events, err := b.Update(emu.Frame())
		if err != nil {
			return err
		}
		for _, ev := range events {
			switch ev {
			case EventQuit:
				return nil
			case EventPauseToggle:
				paused = !paused
				limiter.Reset()
			}
		}

		if emu.Stopped() {
			return nil
		}
		limiter.WaitForNextFrame()
	}
}
