/*
DESCRIPTION
  scheduler.go provides the Scheduler, which takes the frames of a cadence
  plan at their due times. Due times are anchored to the time of the first
  frame so that variable capture latency never accumulates into drift over
  the day.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package scheduler takes frames at the times given by a cadence plan.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ausocean/daylapse/cadence"
	"github.com/ausocean/daylapse/clock"
	"github.com/ausocean/daylapse/config"
	"github.com/ausocean/daylapse/device"
	"github.com/ausocean/daylapse/device/gpio"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "scheduler: "

// coarseMargin is how far before a frame is due the scheduler stops sleeping
// and starts polling the clock.
const coarseMargin = time.Second

// Frame is a single frame of a run.
type Frame struct {
	Index     int
	Scheduled time.Time // Anchor time the frame is due.
	Path      string
}

// Scheduler runs cadence plans.
type Scheduler struct {
	cfg     config.Config
	clock   clock.Clock
	capture device.Capturer
	line    gpio.Line
	log     logging.Logger
}

// New returns a Scheduler writing frames to cfg.OutputDir with
// cfg.CaptureOptions using cp, holding line high while frames are taken. cp
// is not used and may be nil if cfg.DryRun is set.
func New(cfg config.Config, c clock.Clock, cp device.Capturer, line gpio.Line) *Scheduler {
	if line == nil {
		line = gpio.Nop{}
	}
	return &Scheduler{cfg: cfg, clock: c, capture: cp, line: line, log: cfg.Logger}
}

// Run takes the frames of p and returns a summary of the run. A degenerate
// plan takes no frames and returns immediately without error. Run only
// returns an error if ctx is done before the last frame's window has ended.
func (s *Scheduler) Run(ctx context.Context, p cadence.Plan) (Summary, error) {
	var sum Summary
	if p.Degenerate() {
		s.log.Debug(pkg+"degenerate plan, nothing to do", "frames", p.Frames, "delay", p.Delay)
		return sum, nil
	}

	timeout := p.Timeout()
	s.log.Info(pkg+"starting captures", "frames", p.Frames, "interval", p.Interval().String(), "timeout", timeout.String())

	s.setLine(true)
	defer s.setLine(false)
	if !s.cfg.DryRun {
		defer s.stop()
	}

	var late lateness
	t0 := s.clock.Now()
	for i := 0; i < p.Frames; i++ {
		f := s.frame(p, t0, i)

		now := s.clock.Now()
		late.add(now.Sub(f.Scheduled).Seconds())
		s.log.Info(pkg+"taking frame", "frame", i+1, "of", p.Frames, "path", f.Path)

		switch {
		case s.cfg.DryRun:
			s.log.Info(pkg + "dry run, no frame taken")
			sum.Skipped++
		default:
			err := s.capture.Capture(s.cfg.CaptureOptions, timeout, f.Path)
			if err != nil {
				s.log.Warning(pkg+"could not start capture", "frame", i+1, "error", err.Error())
				sum.Failed++
				break
			}
			sum.Invoked++
		}

		err := s.wait(ctx, p.Anchor(t0, i+1))
		if err != nil {
			sum.setLateness(&late)
			return sum, fmt.Errorf("interrupted after frame %d of %d: %w", i+1, p.Frames, err)
		}
		sum.Frames++
	}

	sum.setLateness(&late)
	s.log.Info(pkg+"captures completed", "frames", sum.Frames, "meanLateness", sum.MeanLateness.String(), "maxLateness", sum.MaxLateness.String())
	return sum, nil
}

// frame returns frame i of p, given the time t0 of frame 0.
func (s *Scheduler) frame(p cadence.Plan, t0 time.Time, i int) Frame {
	at := p.Anchor(t0, i)
	return Frame{Index: i, Scheduled: at, Path: Path(s.cfg.OutputDir, at)}
}

// wait blocks until target or until ctx is done. It sleeps until shortly
// before target, as sleeps may overshoot, then polls the clock. Polling keeps
// one core busy for up to coarseMargin per frame.
func (s *Scheduler) wait(ctx context.Context, target time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remaining := target.Sub(s.clock.Now())
	if remaining > coarseMargin {
		err := s.clock.Sleep(ctx, remaining-coarseMargin)
		if err != nil {
			return err
		}
	}
	for s.clock.Now().Before(target) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) setLine(high bool) {
	err := s.line.Set(high)
	if err != nil {
		s.log.Error(pkg+"could not set signal line", "high", high, "error", err.Error())
	}
}

func (s *Scheduler) stop() {
	err := s.capture.Stop()
	if err != nil {
		s.log.Warning(pkg+"could not stop capture device", "error", err.Error())
	}
}

// Filename returns the name of the frame taken at t, formatted from the UTC
// time as YYYY_MM_DD_HH_MM_SS_mmm.jpg. UTC keeps names ordered and unique
// across daylight saving changes.
func Filename(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d_%02d_%02d_%02d_%02d_%02d_%03d.jpg",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond))
}

// Path returns the path of the frame taken at t in dir.
func Path(dir string, t time.Time) string {
	if dir == "" {
		return Filename(t)
	}
	return strings.TrimSuffix(dir, "/") + "/" + Filename(t)
}
