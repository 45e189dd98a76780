/*
DESCRIPTION
  raspistill.go provides an implementation of the Capturer interface for the
  raspistill raspberry pi camera interfacing utility. Each capture runs
  raspistill as a background process which writes one JPEG to a file.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package raspistill provides an implementation of the Capturer interface for
// the raspistill raspberry pi camera interfacing utility.
package raspistill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ausocean/daylapse/config"
	"github.com/ausocean/daylapse/device"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "raspistill: "

// killWait is how long to wait for a killed process to be reaped.
const killWait = 2 * time.Second

// Configuration errors.
var (
	errNoCommand    = errors.New("capture command not found")
	errBadOutputDir = errors.New("output directory does not exist")
)

// process is one run of the capture utility.
type process struct {
	cmd    *exec.Cmd
	stderr bytes.Buffer
	done   chan struct{} // Closed once the process has been reaped.
	err    error         // Result of Wait; read only after done is closed.
	killed atomic.Bool
}

// Raspistill is an implementation of Capturer that provides control over the
// raspistill utility for using the raspberry pi camera for the capture of
// singular images.
type Raspistill struct {
	log logging.Logger
	cmd string
	env []string // Additional environment for the process.

	mu  sync.Mutex
	cur *process // Most recently started process, or nil.
}

// New returns a new Raspistill.
func New(l logging.Logger) *Raspistill {
	return &Raspistill{log: l, cmd: config.DefaultCaptureCommand}
}

// Name returns the name of the device.
func (r *Raspistill) Name() string { return "Raspistill" }

// Set considers the CaptureCommand and OutputDir fields of c. The capture
// command must be found in PATH and the output directory must exist.
func (r *Raspistill) Set(c config.Config) error {
	var errs device.MultiError

	path, err := exec.LookPath(c.CaptureCommand)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %s: %v", errNoCommand, c.CaptureCommand, err))
	} else {
		r.cmd = path
		r.log.Debug(pkg+"found capture command", "path", path)
	}

	fi, err := os.Stat(c.OutputDir)
	if err != nil || !fi.IsDir() {
		errs = append(errs, fmt.Errorf("%w: %s", errBadOutputDir, c.OutputDir))
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Capture kills any raspistill process still running from a previous call
// and starts a new one taking a frame to path. The outcome of the capture is
// only logged.
func (r *Raspistill) Capture(opts string, timeout time.Duration, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.kill()

	args := append(strings.Fields(opts),
		"-t", strconv.FormatInt(timeout.Milliseconds(), 10),
		"-o", path,
	)
	r.log.Debug(pkg+"raspistill args", "args", strings.Join(args, " "))

	p := &process{cmd: exec.Command(r.cmd, args...), done: make(chan struct{})}
	p.cmd.Stderr = &p.stderr
	if r.env != nil {
		p.cmd.Env = append(os.Environ(), r.env...)
	}

	err := p.cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start raspistill process: %w", err)
	}
	r.cur = p
	go r.reap(p)

	return nil
}

// Stop will terminate a raspistill process that is still running.
func (r *Raspistill) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kill()
	return nil
}

// IsRunning reports whether a raspistill process is still running.
func (r *Raspistill) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return false
	}
	select {
	case <-r.cur.done:
		return false
	default:
		return true
	}
}

// kill terminates the current process if it has not finished and waits for
// it to be reaped. r.mu must be held.
func (r *Raspistill) kill() {
	p := r.cur
	if p == nil {
		return
	}
	r.cur = nil

	select {
	case <-p.done:
		return
	default:
	}

	r.log.Warning(pkg+"killing unfinished raspistill process", "pid", p.cmd.Process.Pid)
	p.killed.Store(true)
	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.log.Error(pkg+"could not kill raspistill process", "error", err.Error())
	}

	select {
	case <-p.done:
	case <-time.After(killWait):
		r.log.Error(pkg+"raspistill process not reaped after kill", "pid", p.cmd.Process.Pid)
	}
}

// reap waits for p to exit and logs the result.
func (r *Raspistill) reap(p *process) {
	p.err = p.cmd.Wait()
	close(p.done)

	switch {
	case p.killed.Load():
		r.log.Debug(pkg+"killed raspistill process exited", "error", p.err)
	case p.err != nil:
		r.log.Warning(pkg+"raspistill failed", "error", p.err.Error(), "stderr", p.stderr.String())
	default:
		r.log.Debug(pkg+"raspistill completed")
	}
}
