/*
DESCRIPTION
  device.go provides Capturer, an interface that describes a configurable
  still image capture device that takes one frame per call and can be
  stopped.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for still image
// capture devices.
package device

import (
	"fmt"
	"time"

	"github.com/ausocean/daylapse/config"
)

// Capturer describes a configurable device that captures single frames to
// files.
type Capturer interface {
	// Name returns the name of the Capturer.
	Name() string

	// Set allows for configuration of the Capturer using a Config struct. All,
	// some or none of the fields of the Config struct may be used for
	// configuration by an implementation. An implementation should specify
	// what fields are considered.
	Set(c config.Config) error

	// Capture starts the capture of one frame to path, passing opts to the
	// device and allowing it timeout to complete. Capture does not wait for
	// the frame to be taken; it returns once the capture has been started. Any
	// capture still in progress from a previous call is terminated first.
	Capture(opts string, timeout time.Duration, path string) error

	// Stop terminates any capture in progress.
	Stop() error

	// IsRunning is used to determine if a capture is in progress.
	IsRunning() bool
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters
// for Capturers.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Unwrap allows errors.Is and errors.As to match any of the collected errors.
func (me MultiError) Unwrap() []error { return me }
