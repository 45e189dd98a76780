/*
DESCRIPTION
  daylapse takes one day of timelapse frames with raspistill. It waits for
  sunrise at the configured location and spaces the frames so that, played
  at the configured frame rate, every day lasts the same number of seconds
  however long it is. It is intended to be started once a day, e.g. by a
  systemd timer before the earliest sunrise of the year.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package daylapse is a command for constant day duration timelapses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	_ "github.com/kidoman/embd/host/rpi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/daylapse/config"
	"github.com/ausocean/daylapse/daylapse"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Misc constants.
const (
	pkg         = "daylapse: "
	profilePath = "daylapse.prof"
)

// Exit statuses.
const (
	exitOK   = 0
	exitFail = 1
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

// flagKeys maps command line flags to the config variables they set.
var flagKeys = map[string]string{
	"f":       config.KeyFPS,
	"d":       config.KeyOutputDaySeconds,
	"s":       config.KeyOutputDaySeconds,
	"y":       config.KeyLatitude,
	"x":       config.KeyLongitude,
	"o":       config.KeyOutputDir,
	"O":       config.KeyCaptureOptions,
	"p":       config.KeySignalPin,
	"D":       config.KeyDryRun,
	"S":       config.KeySkipGate,
	"horizon": config.KeyHorizon,
	"cmd":     config.KeyCaptureCommand,
	"log":     config.KeyLogPath,
	"v":       config.KeyLogLevel,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run runs daylapse with the command line arguments args, logging to out as
// well as the log file, and returns the exit status.
func run(args []string, out io.Writer) int {
	fs := newFlagSet()
	showVersion := fs.Bool("version", false, "show version")
	cfgPath := fs.String("config", "", "path of a JSON file of config variables; flags take precedence")
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitFail
	}
	if *showVersion {
		fmt.Println(version)
		return exitOK
	}

	vars := map[string]string{}
	if *cfgPath != "" {
		vars, err = config.ReadFile(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, pkg+err.Error())
			return exitFail
		}
	}
	for k, v := range flagVars(fs) {
		vars[k] = v
	}

	cfg := config.Default()
	err = cfg.Update(vars)
	if err != nil {
		fmt.Fprintln(os.Stderr, pkg+"bad configuration: "+err.Error())
		return exitFail
	}

	w := out
	if cfg.LogPath != "" {
		// Create lumberjack logger to handle logging to file.
		fileLog := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		defer fileLog.Close()
		w = io.MultiWriter(out, fileLog)
	}
	log := logging.New(cfg.LogLevel, w, logSuppress)
	cfg.Logger = log

	log.Info(pkg+"starting daylapse", "version", version)

	// If daylapse has been built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		err = profile(log)
		if err != nil {
			log.Error(pkg+"could not start profiling", "error", err.Error())
		} else {
			defer pprof.StopCPUProfile()
			log.Info(pkg+"profiling started")
		}
	}

	err = cfg.Validate()
	if err != nil {
		log.Error(pkg+"invalid configuration", "error", err.Error())
		return exitFail
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dl, err := daylapse.New(cfg, daylapse.Status(status(log)))
	if err != nil {
		log.Error(pkg+"could not initialise daylapse", "error", err.Error())
		return exitFail
	}

	notify(log, daemon.SdNotifyReady)
	res, err := dl.Run(ctx)
	notify(log, daemon.SdNotifyStopping)

	switch {
	case err == nil:
		log.Info(pkg+"daylapse finished", "run", res.RunID, "frames", res.Frames, "failed", res.Failed)
	case errors.Is(err, daylapse.ErrSunDegenerate):
		log.Warning(pkg+"no timelapse today", "reason", err.Error())
	default:
		log.Error(pkg+"daylapse failed", "run", res.RunID, "error", err.Error())
	}
	return exitCode(err)
}

// newFlagSet returns the flags that set config variables. Defaults are
// shown for help but only flags given on the command line are applied.
func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("daylapse", flag.ContinueOnError)
	fs.Float64("f", config.DefaultFPS, "frames per second of the video")
	fs.Float64("d", config.DefaultOutputDaySeconds, "seconds one day lasts in the video")
	fs.Float64("s", config.DefaultOutputDaySeconds, "same as -d")
	fs.Float64("y", config.DefaultLatitude, "latitude in degrees, north positive")
	fs.Float64("x", config.DefaultLongitude, "longitude in degrees, east positive")
	fs.String("o", config.DefaultOutputDir, "output directory for frames")
	fs.String("O", config.DefaultCaptureOptions, "options passed to the capture command")
	fs.String("p", strconv.Itoa(config.DefaultSignalPin), "GPIO pin held high while capturing; negative disables")
	fs.Bool("D", false, "dry run; do everything except take frames")
	fs.Bool("S", false, "skip waiting for sunrise")
	fs.String("horizon", "sunrise", "sunrise or civil")
	fs.String("cmd", config.DefaultCaptureCommand, "capture command")
	fs.String("log", config.DefaultLogPath, "log file path; empty disables file logging")
	fs.String("v", "info", "log level: debug, info, warning, error or fatal")
	return fs
}

// flagVars returns the config variables given by flags set on the command
// line.
func flagVars(fs *flag.FlagSet) map[string]string {
	vars := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		k, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		vars[k] = f.Value.String()
	})
	return vars
}

// exitCode returns the exit status for the error returned by a run. Days
// without a sunrise or sunset are not failures.
func exitCode(err error) int {
	if err == nil || errors.Is(err, daylapse.ErrSunDegenerate) {
		return exitOK
	}
	return exitFail
}

// status returns a function reporting the state of the run to systemd.
func status(l logging.Logger) func(string) {
	return func(s string) {
		l.Info(pkg + s)
		notify(l, "STATUS="+s)
	}
}

// notify sends state to systemd if daylapse runs as a notify service.
func notify(l logging.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		l.Warning(pkg+"could not notify systemd", "state", state, "error", err.Error())
		return
	}
	l.Debug(pkg+"notified systemd", "state", state, "sent", strconv.FormatBool(sent))
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile(l logging.Logger) error {
	f, err := os.Create(profilePath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	l.Debug(pkg+"writing CPU profile", "path", profilePath)
	return pprof.StartCPUProfile(f)
}
