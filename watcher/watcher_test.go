/*
DESCRIPTION
  watcher_test.go tests counting of frames written to a directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package watcher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
)

func TestCount(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, logging.New(logging.Debug, &bytes.Buffer{}, true))
	if err != nil {
		t.Fatalf("could not create watcher: %v", err)
	}

	files := []string{
		"2024_06_21_02_27_00_000.jpg",
		"2024_06_21_02_41_24_000.jpg",
		"2024_06_21_02_55_48_000.jpg",
		"notes.txt",
	}
	for _, f := range files {
		err := os.WriteFile(filepath.Join(dir, f), []byte("data"), 0644)
		if err != nil {
			t.Fatalf("could not write %s: %v", f, err)
		}
	}
	// Rewriting a frame must not count twice.
	err = os.WriteFile(filepath.Join(dir, files[0]), []byte("more data"), 0644)
	if err != nil {
		t.Fatalf("could not rewrite %s: %v", files[0], err)
	}

	const want = 3
	deadline := time.Now().Add(5 * time.Second)
	for w.Count() < want && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	got, err := w.Close()
	if err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if got != want {
		t.Errorf("unexpected count, want: %d, got: %d", want, got)
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), logging.New(logging.Debug, &bytes.Buffer{}, true))
	if err == nil {
		t.Error("expected error watching missing directory")
	}
}
