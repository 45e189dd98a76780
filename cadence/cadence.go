/*
DESCRIPTION
  cadence.go derives the number of frames to capture over a day and the delay
  between them, such that the frames played back at the target frame rate
  last the target number of seconds regardless of the day's length.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cadence plans the capture cadence for a day.
package cadence

import (
	"math"
	"time"
)

// Capture timeout bounds.
const (
	MinTimeout      = 1000 * time.Millisecond
	MaxTimeout      = 5000 * time.Millisecond
	timeoutHeadroom = 500 // ms
)

// Plan is the number of frames to capture and the delay between them.
type Plan struct {
	Frames int     // Number of frames for the day.
	Delay  float64 // Seconds between frames.
}

// New returns the Plan for a video at fps frames per second in which one day
// lasts sday seconds, given a day of dayLen hours.
func New(fps, sday, dayLen float64) Plan {
	frames := int(math.Round(fps * sday))
	if frames <= 0 {
		return Plan{}
	}
	return Plan{
		Frames: frames,
		Delay:  dayLen * 3600 / float64(frames),
	}
}

// Degenerate reports whether the plan describes no captures at all. A
// degenerate plan is run as a no-op.
func (p Plan) Degenerate() bool {
	return p.Frames <= 0 || p.Delay < 0 || math.IsNaN(p.Delay) || math.IsInf(p.Delay, 0)
}

// Interval returns the delay as a time.Duration.
func (p Plan) Interval() time.Duration {
	return time.Duration(p.Delay * float64(time.Second))
}

// Timeout returns the time the capture utility is given to take a frame. It
// leaves half a second before the next frame is due but is never less than
// MinTimeout or more than MaxTimeout.
func (p Plan) Timeout() time.Duration {
	ms := int(p.Delay*1000 - timeoutHeadroom)
	t := time.Duration(ms) * time.Millisecond
	if t < MinTimeout {
		return MinTimeout
	}
	if t > MaxTimeout {
		return MaxTimeout
	}
	return t
}

// Anchor returns the time frame i is due, counted from the time t0 of frame
// 0. Each anchor is derived from t0 directly so that no error accumulates
// from one frame to the next.
func (p Plan) Anchor(t0 time.Time, i int) time.Time {
	return t0.Add(time.Duration(math.Round(float64(i) * p.Delay * float64(time.Second))))
}
