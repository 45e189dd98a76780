/*
NAME
  config.go

DESCRIPTION
  config.go provides the Config struct holding the settings of a daylapse
  run, its defaults, and methods to update it from string variables and to
  validate it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for daylapse.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/ausocean/daylapse/sun"
	"github.com/ausocean/utils/logging"
)

// Config provides the parameters of a daylapse run. Use Default to obtain a
// Config holding the default values, then Update and Validate it.
type Config struct {
	// FPS is the frame rate of the video that will be made from the frames.
	FPS float64

	// OutputDaySeconds is how long one day lasts in the video when played at
	// FPS. Together with FPS this decides the number of frames taken per day.
	OutputDaySeconds float64

	Latitude  float64 // Degrees, north positive.
	Longitude float64 // Degrees, east positive.

	// Horizon selects what counts as sunrise and sunset.
	Horizon sun.Horizon

	// OutputDir is the directory frames are written to.
	OutputDir string

	// CaptureCommand is the name or path of the still capture utility.
	CaptureCommand string

	// CaptureOptions are passed to the capture utility ahead of the timeout
	// and output options, which are set by daylapse and so may not be given
	// here.
	CaptureOptions string

	// SignalPin is the GPIO pin held high while frames are being taken, e.g.
	// to light the camera LED or switch an IR-cut filter. Negative disables it.
	SignalPin int

	DryRun   bool // Do everything except take frames.
	SkipGate bool // Start capturing immediately rather than at sunrise.

	// Logger holds the Logger used throughout daylapse. It must be set before
	// Validate is called.
	Logger logging.Logger

	// LogLevel is the logging verbosity, one of the level constants of the
	// logging package.
	LogLevel int8

	// LogPath is the file logs are written to. Empty disables file logging.
	LogPath string
}

// Default values.
const (
	DefaultFPS              = 25.0
	DefaultOutputDaySeconds = 2.0
	DefaultLatitude         = 50.80
	DefaultLongitude        = 19.80
	DefaultOutputDir        = "./"
	DefaultCaptureCommand   = "raspistill"
	DefaultCaptureOptions   = "-n -w 1920 -h 1080 -q 90"
	DefaultSignalPin        = -1
	DefaultLogLevel         = logging.Info
	DefaultLogPath          = "/var/log/daylapse/daylapse.log"
)

// Default returns a Config holding the default values.
func Default() Config {
	return Config{
		FPS:              DefaultFPS,
		OutputDaySeconds: DefaultOutputDaySeconds,
		Latitude:         DefaultLatitude,
		Longitude:        DefaultLongitude,
		Horizon:          sun.HorizonSunrise,
		OutputDir:        DefaultOutputDir,
		CaptureCommand:   DefaultCaptureCommand,
		CaptureOptions:   DefaultCaptureOptions,
		SignalPin:        DefaultSignalPin,
		LogLevel:         DefaultLogLevel,
		LogPath:          DefaultLogPath,
	}
}

// FieldError describes a variable that could not be applied or validated.
type FieldError struct {
	Name  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Errors is a list of FieldErrors.
type Errors []*FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		panic("config: invalid use of Errors")
	}
	if len(es) == 1 {
		return es[0].Error()
	}
	return fmt.Sprintf("%d config errors: %v", len(es), []*FieldError(es))
}

func (es Errors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// ErrUnknownVariable is returned by Update for names that are not in
// Variables.
var ErrUnknownVariable = errors.New("unknown variable")

// Update takes a map of configuration variable names and their values,
// parses the values and sets the corresponding fields. Every variable is
// attempted; an Errors is returned listing those that failed.
func (c *Config) Update(vars map[string]string) error {
	var errs Errors

	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		v, ok := variable(n)
		if !ok {
			errs = append(errs, &FieldError{Name: n, Value: vars[n], Err: ErrUnknownVariable})
			continue
		}
		err := v.Update(c, vars[n])
		if err != nil {
			errs = append(errs, &FieldError{Name: n, Value: vars[n], Err: err})
		}
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Validate checks the fields of the Config, setting defaults for those that
// are unset where a default makes sense, and returns an Errors listing fields
// that are invalid.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return Errors{{Name: "Logger", Err: errors.New("logger must be set")}}
	}

	var errs Errors
	for _, v := range Variables {
		if v.Validate == nil {
			continue
		}
		err := v.Validate(c)
		if err != nil {
			errs = append(errs, &FieldError{Name: v.Name, Err: err})
		}
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

// LogInvalidField logs that a field was bad or unset and has been defaulted.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// ReadFile reads a JSON object of variable names to values from path, as
// accepted by Update. Values may be JSON strings, numbers or booleans.
func ReadFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read config file")
	}

	var raw map[string]interface{}
	err = json.Unmarshal(b, &raw)
	if err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal config file %s", path)
	}

	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			vars[k] = v
		case float64, bool:
			vars[k] = fmt.Sprint(v)
		default:
			return nil, errors.Errorf("config file %s: value of %s has unsupported type %T", path, k, v)
		}
	}
	return vars, nil
}
