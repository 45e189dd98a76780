/*
DESCRIPTION
  summary.go provides Summary, the outcome of a scheduler run.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package scheduler

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a completed, or interrupted, run.
type Summary struct {
	Frames  int // Frame windows completed.
	Invoked int // Captures started.
	Skipped int // Captures not started due to dry run.
	Failed  int // Captures that could not be started.

	// Lateness is how long after its due time each frame's capture was
	// started.
	MeanLateness time.Duration
	StdLateness  time.Duration
	MaxLateness  time.Duration
}

// maxSamples bounds the number of lateness samples held at once.
const maxSamples = 1024

// lateness accumulates frame lateness in seconds. Samples are buffered and
// folded into running moments in batches, so memory use does not depend on
// the number of frames.
type lateness struct {
	buf  []float64
	n    float64
	mean float64
	m2   float64 // Sum of squared deviations from mean.
	max  float64
}

func (l *lateness) add(x float64) {
	l.buf = append(l.buf, x)
	if len(l.buf) >= maxSamples {
		l.flush()
	}
}

// flush merges the buffered samples into the running moments.
func (l *lateness) flush() {
	if len(l.buf) == 0 {
		return
	}
	nb := float64(len(l.buf))
	mb := stat.Mean(l.buf, nil)
	var m2b float64
	if len(l.buf) > 1 {
		m2b = stat.Variance(l.buf, nil) * (nb - 1)
	}
	mx := floats.Max(l.buf)
	if l.n == 0 || mx > l.max {
		l.max = mx
	}

	n := l.n + nb
	d := mb - l.mean
	l.mean += d * nb / n
	l.m2 += m2b + d*d*l.n*nb/n
	l.n = n
	l.buf = l.buf[:0]
}

// setLateness sets the lateness statistics of s from l.
func (s *Summary) setLateness(l *lateness) {
	l.flush()
	if l.n == 0 {
		return
	}
	s.MeanLateness = seconds(l.mean)
	if l.n > 1 {
		s.StdLateness = seconds(math.Sqrt(l.m2 / (l.n - 1)))
	}
	s.MaxLateness = seconds(l.max)
}

func seconds(s float64) time.Duration { return time.Duration(math.Round(s * float64(time.Second))) }
