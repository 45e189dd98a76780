/*
DESCRIPTION
  gate.go provides WaitUntil, which blocks until an absolute time is reached
  using a sequence of sleeps of at most one minute each. A single long sleep
  of several hours has proven unreliable on the Raspberry Pi, and short sleeps
  keep the wait responsive to changes of the system clock.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gate blocks execution until a target time, such as sunrise.
package gate

import (
	"context"
	"time"

	"github.com/ausocean/daylapse/clock"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "gate: "

// MaxSleep is the longest single sleep performed while waiting.
const MaxSleep = 60 * time.Second

// Gate waits for target times.
type Gate struct {
	clock clock.Clock
	log   logging.Logger
}

// New returns a new Gate reading time from c.
func New(c clock.Clock, l logging.Logger) *Gate {
	return &Gate{clock: c, log: l}
}

// WaitUntil blocks until target is reached and returns true. If target is
// not in the future, it returns false immediately without sleeping. A non-nil
// error is only returned if ctx is done before target is reached.
func (g *Gate) WaitUntil(ctx context.Context, target time.Time) (bool, error) {
	now := g.clock.Now()
	if !now.Before(target) {
		g.log.Debug(pkg+"target already passed", "target", target.UTC(), "now", now.UTC())
		return false, nil
	}

	g.log.Info(pkg+"waiting", "now", now.UTC(), "target", target.UTC(), "remaining", target.Sub(now).String())

	for {
		remaining := target.Sub(g.clock.Now())
		if remaining > MaxSleep {
			remaining = MaxSleep
		}
		if remaining <= 0 {
			break
		}
		err := g.clock.Sleep(ctx, remaining)
		if err != nil {
			return false, err
		}
	}

	g.log.Info(pkg+"wait completed", "now", g.clock.Now().UTC())
	return true, nil
}
