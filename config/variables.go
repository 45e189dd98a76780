/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/daylapse/sun"
	"github.com/ausocean/utils/logging"
)

// Config map keys.
const (
	KeyFPS              = "FPS"
	KeyOutputDaySeconds = "OutputDaySeconds"
	KeyLatitude         = "Latitude"
	KeyLongitude        = "Longitude"
	KeyHorizon          = "Horizon"
	KeyOutputDir        = "OutputDir"
	KeyCaptureCommand   = "CaptureCommand"
	KeyCaptureOptions   = "CaptureOptions"
	KeySignalPin        = "SignalPin"
	KeyDryRun           = "DryRun"
	KeySkipGate         = "SkipGate"
	KeyLogLevel         = "LogLevel"
	KeyLogPath          = "LogPath"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Validation errors.
var (
	errNotFinite      = errors.New("not a finite number")
	errBadLatitude    = errors.New("latitude must be within [-90, 90]")
	errBadLongitude   = errors.New("longitude must be within [-180, 180]")
	errReservedOption = errors.New("timeout and output options are set by daylapse")
	errNoCommand      = errors.New("capture command must be set")
)

// reservedOptions may not appear in CaptureOptions.
var reservedOptions = []string{"-t", "--timeout", "-o", "--output"}

// levels maps level names accepted by LogLevel to logging levels.
var levels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
	"fatal":   logging.Fatal,
}

// Variable describes a configuration variable: its name and type, a function
// for updating it in a Config from a string, and optionally a function for
// validating the value held in a Config.
type Variable struct {
	Name     string
	Type     string
	Update   func(*Config, string) error
	Validate func(*Config) error
}

// Variables describes the variables that can be used for daylapse control.
var Variables = []Variable{
	{
		Name: KeyFPS,
		Type: typeFloat,
		Update: func(c *Config, v string) error { return setFloat(&c.FPS, v) },
	},
	{
		Name: KeyOutputDaySeconds,
		Type: typeFloat,
		Update: func(c *Config, v string) error { return setFloat(&c.OutputDaySeconds, v) },
	},
	{
		Name: KeyLatitude,
		Type: typeFloat,
		Update: func(c *Config, v string) error { return setFloat(&c.Latitude, v) },
		Validate: func(c *Config) error {
			if c.Latitude < -90 || c.Latitude > 90 {
				return errBadLatitude
			}
			return nil
		},
	},
	{
		Name: KeyLongitude,
		Type: typeFloat,
		Update: func(c *Config, v string) error { return setFloat(&c.Longitude, v) },
		Validate: func(c *Config) error {
			if c.Longitude < -180 || c.Longitude > 180 {
				return errBadLongitude
			}
			return nil
		},
	},
	{
		Name: KeyHorizon,
		Type: "enum:sunrise,civil",
		Update: func(c *Config, v string) error {
			h, err := sun.ParseHorizon(v)
			if err != nil {
				return err
			}
			c.Horizon = h
			return nil
		},
	},
	{
		Name:   KeyOutputDir,
		Type:   typeString,
		Update: func(c *Config, v string) error { c.OutputDir = v; return nil },
		Validate: func(c *Config) error {
			if c.OutputDir == "" {
				c.LogInvalidField(KeyOutputDir, DefaultOutputDir)
				c.OutputDir = DefaultOutputDir
			}
			return nil
		},
	},
	{
		Name:   KeyCaptureCommand,
		Type:   typeString,
		Update: func(c *Config, v string) error { c.CaptureCommand = v; return nil },
		Validate: func(c *Config) error {
			if strings.TrimSpace(c.CaptureCommand) == "" {
				return errNoCommand
			}
			return nil
		},
	},
	{
		Name:   KeyCaptureOptions,
		Type:   typeString,
		Update: func(c *Config, v string) error { c.CaptureOptions = v; return nil },
		Validate: func(c *Config) error {
			for _, f := range strings.Fields(c.CaptureOptions) {
				for _, r := range reservedOptions {
					if f == r || strings.HasPrefix(f, r+"=") {
						return fmt.Errorf("%w: %s", errReservedOption, f)
					}
				}
			}
			return nil
		},
	},
	{
		Name: KeySignalPin,
		Type: typeInt,
		Update: func(c *Config, v string) error {
			// Accept "5.0" as well as "5".
			f, err := parseFloat(v)
			if err != nil {
				return err
			}
			c.SignalPin = int(f)
			return nil
		},
	},
	{
		Name: KeyDryRun,
		Type: typeBool,
		Update: func(c *Config, v string) error { return setBool(&c.DryRun, v) },
	},
	{
		Name: KeySkipGate,
		Type: typeBool,
		Update: func(c *Config, v string) error { return setBool(&c.SkipGate, v) },
	},
	{
		Name: KeyLogLevel,
		Type: "enum:debug,info,warning,error,fatal",
		Update: func(c *Config, v string) error {
			l, ok := levels[strings.ToLower(v)]
			if !ok {
				return fmt.Errorf("unknown log level %q", v)
			}
			c.LogLevel = l
			return nil
		},
	},
	{
		Name:   KeyLogPath,
		Type:   typeString,
		Update: func(c *Config, v string) error { c.LogPath = v; return nil },
	},
}

// variable returns the entry of Variables with the given name.
func variable(name string) (Variable, bool) {
	for _, v := range Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func setFloat(dst *float64, v string) error {
	f, err := parseFloat(v)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// parseFloat parses a finite float; NaN and infinities are rejected.
func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}
