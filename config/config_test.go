/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and
  Update) and for reading config files.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ausocean/daylapse/sun"
	"github.com/ausocean/utils/logging"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

var ignoreLogger = cmpopts.IgnoreFields(Config{}, "Logger")

func TestValidateDefaults(t *testing.T) {
	got := Default()
	got.Logger = &dumbLogger{}
	got.OutputDir = ""

	err := got.Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := Default()
	if !cmp.Equal(got, want, ignoreLogger) {
		t.Errorf("configs not equal\n%s", cmp.Diff(want, got, ignoreLogger))
	}
}

func TestValidateNoLogger(t *testing.T) {
	c := Default()
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing logger")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "latitude", modify: func(c *Config) { c.Latitude = 91 }, wantErr: errBadLatitude},
		{name: "longitude", modify: func(c *Config) { c.Longitude = -180.5 }, wantErr: errBadLongitude},
		{name: "timeout option", modify: func(c *Config) { c.CaptureOptions = "-n -t 500" }, wantErr: errReservedOption},
		{name: "output option", modify: func(c *Config) { c.CaptureOptions = "--output=x.jpg" }, wantErr: errReservedOption},
		{name: "command", modify: func(c *Config) { c.CaptureCommand = " " }, wantErr: errNoCommand},
	}

	for _, test := range tests {
		c := Default()
		c.Logger = &dumbLogger{}
		test.modify(&c)
		err := c.Validate()
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: want error: %v, got: %v", test.name, test.wantErr, err)
		}
	}
}

func TestValidateDegenerateCadence(t *testing.T) {
	// A zero or negative cadence is not a configuration error; it results in
	// a run that takes no frames.
	c := Default()
	c.Logger = &dumbLogger{}
	c.FPS = 0
	c.OutputDaySeconds = -1
	if err := c.Validate(); err != nil {
		t.Errorf("did not expect error: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		KeyFPS:              "30",
		KeyOutputDaySeconds: "1.5",
		KeyLatitude:         "-42.88",
		KeyLongitude:        "147.33",
		KeyHorizon:          "civil",
		KeyOutputDir:        "/home/pi/frames",
		KeyCaptureCommand:   "/usr/bin/raspistill",
		KeyCaptureOptions:   "-n -q 80",
		KeySignalPin:        "32",
		KeyDryRun:           "true",
		KeySkipGate:         "1",
		KeyLogLevel:         "Debug",
		KeyLogPath:          "",
	}

	want := Config{
		FPS:              30,
		OutputDaySeconds: 1.5,
		Latitude:         -42.88,
		Longitude:        147.33,
		Horizon:          sun.HorizonCivil,
		OutputDir:        "/home/pi/frames",
		CaptureCommand:   "/usr/bin/raspistill",
		CaptureOptions:   "-n -q 80",
		SignalPin:        32,
		DryRun:           true,
		SkipGate:         true,
		LogLevel:         logging.Debug,
		LogPath:          "",
	}

	got := Default()
	err := got.Update(updateMap)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !cmp.Equal(got, want, ignoreLogger) {
		t.Errorf("configs not equal\n%s", cmp.Diff(want, got, ignoreLogger))
	}
}

func TestUpdateErrors(t *testing.T) {
	c := Default()
	err := c.Update(map[string]string{
		KeyFPS:       "fast",
		KeyLatitude:  "NaN",
		KeySignalPin: "5",
		"Colour":     "blue",
	})

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got: %v", err)
	}

	var names []string
	for _, e := range errs {
		names = append(names, e.Name)
	}
	want := []string{"Colour", KeyFPS, KeyLatitude}
	if !cmp.Equal(names, want) {
		t.Errorf("unexpected failed variables, want: %v, got: %v", want, names)
	}
	if !errors.Is(errs[0], ErrUnknownVariable) {
		t.Errorf("expected unknown variable error, got: %v", errs[0])
	}

	// Good variables are still applied.
	if c.SignalPin != 5 {
		t.Errorf("SignalPin not updated, got: %d", c.SignalPin)
	}
	if c.FPS != DefaultFPS {
		t.Errorf("FPS should be unchanged after bad value, got: %v", c.FPS)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daylapse.json")
	err := os.WriteFile(path, []byte(`{"FPS": 30, "OutputDir": "/frames", "DryRun": true}`), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := map[string]string{"FPS": "30", "OutputDir": "/frames", "DryRun": "true"}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected vars\n%s", cmp.Diff(want, got))
	}

	bad := filepath.Join(dir, "bad.json")
	err = os.WriteFile(bad, []byte(`{"FPS": [30]}`), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected error for array value")
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
