/*
DESCRIPTION
  options.go provides options for the construction of a Daylapse.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package daylapse

import (
	"errors"

	"github.com/ausocean/daylapse/clock"
	"github.com/ausocean/daylapse/device"
	"github.com/ausocean/daylapse/device/gpio"
	"github.com/ausocean/daylapse/sun"
)

// Option parameter errors.
var (
	ErrNilClock    = errors.New("nil clock")
	ErrNilSun      = errors.New("nil sun provider")
	ErrNilCapturer = errors.New("nil capturer")
	ErrNilOpener   = errors.New("nil line opener")
)

// Clock sets the clock used for all waiting. The default is the system clock.
func Clock(c clock.Clock) func(*Daylapse) error {
	return func(d *Daylapse) error {
		if c == nil {
			return ErrNilClock
		}
		d.clock = c
		return nil
	}
}

// SunProvider sets the source of sun events. The default calculates them.
func SunProvider(p sun.Provider) func(*Daylapse) error {
	return func(d *Daylapse) error {
		if p == nil {
			return ErrNilSun
		}
		d.sun = p
		return nil
	}
}

// Capturer sets the capture device. The default is raspistill.
func Capturer(c device.Capturer) func(*Daylapse) error {
	return func(d *Daylapse) error {
		if c == nil {
			return ErrNilCapturer
		}
		d.capturer = c
		return nil
	}
}

// LineOpener sets the function opening the signal line. The default drives a
// GPIO pin using embd.
func LineOpener(o gpio.Opener) func(*Daylapse) error {
	return func(d *Daylapse) error {
		if o == nil {
			return ErrNilOpener
		}
		d.open = o
		return nil
	}
}

// Status sets a function that is called with a short description whenever
// the run changes phase.
func Status(f func(string)) func(*Daylapse) error {
	return func(d *Daylapse) error {
		if f != nil {
			d.status = f
		}
		return nil
	}
}

// Watch sets whether the output directory is watched to count the frames
// written. The default is true.
func Watch(w bool) func(*Daylapse) error {
	return func(d *Daylapse) error {
		d.watch = w
		return nil
	}
}
