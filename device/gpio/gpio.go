/*
DESCRIPTION
  gpio.go provides Line, a digital output used to signal that frames are
  being taken, for example to light the camera LED or to switch an IR-cut
  filter, and an implementation using the embd GPIO driver.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gpio provides digital output lines for hardware signalling.
package gpio

import (
	"fmt"

	"github.com/kidoman/embd"

	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "gpio: "

// Line is a digital output line.
type Line interface {
	// Set drives the line high if high is true and low otherwise.
	Set(high bool) error

	// Close releases the line.
	Close() error
}

// Opener opens the Line for a pin number.
type Opener func(pin int) (Line, error)

// Nop is a Line that does nothing. It is used when no pin is configured.
type Nop struct{}

// Set implements Line.
func (Nop) Set(bool) error { return nil }

// Close implements Line.
func (Nop) Close() error { return nil }

// Pin is a Line driving a GPIO pin through embd. The embd host driver must be
// registered by the program, i.e. by importing github.com/kidoman/embd/host/rpi.
type Pin struct {
	pin       embd.DigitalPin
	n         int
	log       logging.Logger
	closeGPIO func() error // Releases the GPIO driver.
}

// NewOpener returns an Opener that opens pins with embd. Negative pin numbers
// give a Nop line.
func NewOpener(l logging.Logger) Opener {
	return func(pin int) (Line, error) {
		if pin < 0 {
			l.Debug(pkg + "no pin configured, signalling disabled")
			return Nop{}, nil
		}
		p, err := Open(pin, l)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Open initialises GPIO and configures pin n as an output.
func Open(n int, l logging.Logger) (*Pin, error) {
	err := embd.InitGPIO()
	if err != nil {
		return nil, fmt.Errorf("could not initialise GPIO: %w", err)
	}

	p, err := embd.NewDigitalPin(n)
	if err != nil {
		embd.CloseGPIO()
		return nil, fmt.Errorf("could not open pin %d: %w", n, err)
	}

	err = p.SetDirection(embd.Out)
	if err != nil {
		p.Close()
		embd.CloseGPIO()
		return nil, fmt.Errorf("could not set pin %d as output: %w", n, err)
	}

	l.Info(pkg+"opened signal pin", "pin", n)
	return &Pin{pin: p, n: n, log: l, closeGPIO: embd.CloseGPIO}, nil
}

// Set implements Line.
func (p *Pin) Set(high bool) error {
	v := embd.Low
	if high {
		v = embd.High
	}
	p.log.Debug(pkg+"writing pin", "pin", p.n, "high", high)
	err := p.pin.Write(v)
	if err != nil {
		return fmt.Errorf("could not write pin %d: %w", p.n, err)
	}
	return nil
}

// Close implements Line. The pin is left at its last written level.
func (p *Pin) Close() error {
	err := p.pin.Close()
	if err != nil {
		p.closeGPIO()
		return fmt.Errorf("could not close pin %d: %w", p.n, err)
	}
	return p.closeGPIO()
}
