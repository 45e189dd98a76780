/*
DESCRIPTION
  daylapse.go provides Daylapse, which runs one day of a timelapse: it
  computes the day's sunrise and length, waits for sunrise, plans the
  cadence that makes the day last the configured number of seconds in the
  video, and takes the frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package daylapse runs constant day duration timelapses.
package daylapse

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ausocean/daylapse/cadence"
	"github.com/ausocean/daylapse/clock"
	"github.com/ausocean/daylapse/config"
	"github.com/ausocean/daylapse/device"
	"github.com/ausocean/daylapse/device/gpio"
	"github.com/ausocean/daylapse/device/raspistill"
	"github.com/ausocean/daylapse/gate"
	"github.com/ausocean/daylapse/scheduler"
	"github.com/ausocean/daylapse/sun"
	"github.com/ausocean/daylapse/watcher"
)

// To indicate package when logging.
const pkg = "daylapse: "

// Terminal conditions of a run.
var (
	// ErrSunDegenerate is matched by ErrPerpetualDay and ErrPerpetualNight.
	ErrSunDegenerate  = errors.New("sun does not cross the horizon today")
	ErrPerpetualDay   = fmt.Errorf("%w: sun is above the horizon, no sunset today", ErrSunDegenerate)
	ErrPerpetualNight = fmt.Errorf("%w: sun is below the horizon, no sunrise today", ErrSunDegenerate)
	ErrSunriseMissed  = errors.New("sunrise for today has already passed")
)

// Result describes a run.
type Result struct {
	scheduler.Summary

	RunID string
	Sun   sun.Event
	Plan  cadence.Plan

	// Written is the number of frames seen in the output directory, or -1 if
	// the directory was not watched.
	Written int
}

// Daylapse runs a day of captures.
type Daylapse struct {
	cfg      config.Config
	clock    clock.Clock
	sun      sun.Provider
	capturer device.Capturer
	open     gpio.Opener
	watch    bool
	status   func(string)
}

// New returns a new Daylapse for the validated config c. Unless c.DryRun is
// set, the capture device is configured, defaulting to raspistill.
func New(c config.Config, options ...func(*Daylapse) error) (*Daylapse, error) {
	d := &Daylapse{
		cfg:    c,
		clock:  clock.System{},
		sun:    sun.Calculator{Horizon: c.Horizon},
		open:   gpio.NewOpener(c.Logger),
		watch:  true,
		status: func(string) {},
	}
	for _, o := range options {
		err := o(d)
		if err != nil {
			return nil, errors.Wrap(err, "could not apply option")
		}
	}

	if c.DryRun {
		return d, nil
	}

	if d.capturer == nil {
		d.capturer = raspistill.New(c.Logger)
	}
	err := d.capturer.Set(c)
	if err != nil {
		return nil, errors.Wrapf(err, "could not set %s", d.capturer.Name())
	}
	return d, nil
}

// Run runs the captures for the current UTC day. It returns ErrPerpetualDay
// or ErrPerpetualNight if the sun does not rise and set today, and
// ErrSunriseMissed if waiting for sunrise was requested but sunrise has
// passed. Errors from individual captures do not stop the run.
func (d *Daylapse) Run(ctx context.Context) (Result, error) {
	l := d.cfg.Logger
	res := Result{RunID: uuid.NewString(), Written: -1}

	l.Info(pkg+"starting daylapse",
		"run", res.RunID,
		"fps", d.cfg.FPS,
		"daySeconds", d.cfg.OutputDaySeconds,
		"latitude", d.cfg.Latitude,
		"longitude", d.cfg.Longitude,
		"horizon", d.cfg.Horizon.String(),
		"outputDir", d.cfg.OutputDir,
		"captureOptions", d.cfg.CaptureOptions,
		"signalPin", d.cfg.SignalPin,
		"dryRun", d.cfg.DryRun,
		"skipGate", d.cfg.SkipGate,
	)

	line, err := d.open(d.cfg.SignalPin)
	if err != nil {
		return res, errors.Wrap(err, "could not open signal line")
	}
	defer func() {
		err := line.Close()
		if err != nil {
			l.Error(pkg+"could not close signal line", "error", err.Error())
		}
	}()

	res.Sun = d.sun.Event(d.clock.Now(), d.cfg.Longitude, d.cfg.Latitude)
	l.Info(pkg+"calculated sun event",
		"status", res.Sun.Status.String(),
		"sunrise", res.Sun.Sunrise.String(),
		"sunset", res.Sun.Sunset.String(),
		"dayLength", res.Sun.DayLength,
	)

	switch res.Sun.Status {
	case sun.PerpetualDay:
		return res, ErrPerpetualDay
	case sun.PerpetualNight:
		return res, ErrPerpetualNight
	}

	if d.cfg.SkipGate {
		l.Info(pkg + "skipping sunrise check")
	} else {
		d.status("waiting for sunrise at " + res.Sun.Sunrise.String())
		ok, err := gate.New(d.clock, l).WaitUntil(ctx, res.Sun.Sunrise)
		if err != nil {
			return res, errors.Wrap(err, "interrupted waiting for sunrise")
		}
		if !ok {
			return res, ErrSunriseMissed
		}
	}

	res.Plan = cadence.New(d.cfg.FPS, d.cfg.OutputDaySeconds, res.Sun.DayLength)
	l.Info(pkg+"planned captures", "frames", res.Plan.Frames, "interval", res.Plan.Interval().String())

	var w *watcher.Watcher
	if d.watch && !d.cfg.DryRun && !res.Plan.Degenerate() {
		w, err = watcher.New(d.cfg.OutputDir, l)
		if err != nil {
			l.Warning(pkg+"could not watch output directory", "error", err.Error())
		}
	}

	d.status(fmt.Sprintf("capturing %d frames", res.Plan.Frames))
	res.Summary, err = scheduler.New(d.cfg, d.clock, d.capturer, line).Run(ctx, res.Plan)

	if w != nil {
		n, werr := w.Close()
		if werr != nil {
			l.Warning(pkg+"could not close watcher", "error", werr.Error())
		}
		res.Written = n
	}

	if err != nil {
		return res, errors.Wrap(err, "capture run did not complete")
	}

	l.Info(pkg+"timelapse for today completed",
		"run", res.RunID,
		"frames", res.Frames,
		"invoked", res.Invoked,
		"failed", res.Failed,
		"written", res.Written,
	)
	return res, nil
}
