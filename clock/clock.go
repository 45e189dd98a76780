/*
DESCRIPTION
  clock.go provides the Clock interface used for all waiting done by the gate
  and scheduler, a System implementation backed by the time package, and a
  Fake implementation whose time only moves when it is read or slept on.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package clock abstracts reading the time and sleeping.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock reads the current time and sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, in which case ctx.Err() is
	// returned.
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the real wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fake is a Clock for tests. Every call to Now advances the time by Step,
// which lets busy-wait loops terminate; Sleep advances it by the slept
// duration and records it.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	Step   time.Duration
	sleeps []time.Duration
}

// NewFake returns a Fake starting at t that advances by step on each Now.
func NewFake(t time.Time, step time.Duration) *Fake {
	return &Fake{now: t, Step: step}
}

// Now implements Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.now
	f.now = f.now.Add(f.Step)
	return t
}

// Sleep implements Clock.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	return nil
}

// Advance moves the time forward by d without recording a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Peek returns the current time without advancing it.
func (f *Fake) Peek() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleeps returns a copy of the durations passed to Sleep so far.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
