/*
DESCRIPTION
  cadence_test.go tests planning of frame counts, delays, capture timeouts
  and frame anchors.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package cadence

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	tests := []struct {
		fps, sday, dayLen float64
		want              Plan
		degenerate        bool
	}{
		{fps: 25, sday: 2, dayLen: 12, want: Plan{Frames: 50, Delay: 864}},
		{fps: 30, sday: 1.5, dayLen: 10, want: Plan{Frames: 45, Delay: 800}},
		{fps: 25, sday: 0.5, dayLen: 8, want: Plan{Frames: 13, Delay: 8 * 3600.0 / 13}}, // 12.5 rounds away from zero.
		{fps: 0, sday: 2, dayLen: 12, want: Plan{}, degenerate: true},
		{fps: 25, sday: 0, dayLen: 12, want: Plan{}, degenerate: true},
		{fps: -25, sday: 2, dayLen: 12, want: Plan{}, degenerate: true},
		{fps: 25, sday: 2, dayLen: -1, want: Plan{Frames: 50, Delay: -72}, degenerate: true},
	}

	for i, test := range tests {
		got := New(test.fps, test.sday, test.dayLen)
		if !cmp.Equal(got, test.want) {
			t.Errorf("test %d: unexpected plan\nwant: %+v\ngot:  %+v", i, test.want, got)
		}
		if got.Degenerate() != test.degenerate {
			t.Errorf("test %d: unexpected degenerate state, want: %v, got: %v", i, test.degenerate, got.Degenerate())
		}
	}
}

func TestPlanCoversDay(t *testing.T) {
	for _, fps := range []float64{1, 12, 24, 25, 29.97, 30, 60} {
		for _, sday := range []float64{0.5, 1, 1.5, 2, 7.3} {
			for _, dayLen := range []float64{0.3, 6, 12, 16.45, 23.9} {
				p := New(fps, sday, dayLen)
				if p.Frames != int(math.Round(fps*sday)) {
					t.Errorf("fps=%v sday=%v: unexpected frames: %d", fps, sday, p.Frames)
				}
				got := float64(p.Frames) * p.Delay
				if math.Abs(got-dayLen*3600) > 1e-6 {
					t.Errorf("fps=%v sday=%v dayLen=%v: frames*delay=%v, want %v", fps, sday, dayLen, got, dayLen*3600)
				}
			}
		}
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		delay float64
		want  time.Duration
	}{
		{delay: 864, want: 5000 * time.Millisecond},
		{delay: 5.5, want: 5000 * time.Millisecond},
		{delay: 3, want: 2500 * time.Millisecond},
		{delay: 2.25, want: 1750 * time.Millisecond},
		{delay: 1.5, want: 1000 * time.Millisecond},
		{delay: 0.2, want: 1000 * time.Millisecond},
	}
	for _, test := range tests {
		got := Plan{Frames: 1, Delay: test.delay}.Timeout()
		if got != test.want {
			t.Errorf("delay %v: want: %v, got: %v", test.delay, test.want, got)
		}
	}
}

func TestAnchor(t *testing.T) {
	t0 := time.Date(2024, 6, 21, 2, 27, 0, 0, time.UTC)
	p := Plan{Frames: 45, Delay: 800.123456789}

	for i := 0; i < p.Frames; i++ {
		want := t0.Add(time.Duration(math.Round(float64(i) * p.Delay * 1e9)))
		if got := p.Anchor(t0, i); !got.Equal(want) {
			t.Errorf("frame %d: want: %v, got: %v", i, want, got)
		}
	}

	// Summing intervals drifts; anchors must not.
	last := p.Anchor(t0, p.Frames-1)
	want := t0.Add(time.Duration(math.Round(float64(p.Frames-1) * p.Delay * 1e9)))
	if !last.Equal(want) {
		t.Errorf("last anchor drifted, want: %v, got: %v", want, last)
	}
}
