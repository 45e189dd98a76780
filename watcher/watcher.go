/*
DESCRIPTION
  watcher.go provides Watcher, which counts the frames that appear in the
  output directory during a run. Captures are started without waiting for
  their outcome, so the count is the only record of how many frames were
  actually written. It is reported in the run summary and nothing else.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package watcher counts frames written to a directory.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "watcher: "

// ext is the extension of frame files.
const ext = ".jpg"

// Watcher counts frame files created in a directory.
type Watcher struct {
	w    *fsnotify.Watcher
	log  logging.Logger
	done chan struct{}

	mu   sync.Mutex
	seen map[string]struct{}
}

// New starts watching dir for new frames.
func New(dir string, l logging.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	err = w.Add(dir)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("could not watch %s: %w", dir, err)
	}

	wt := &Watcher{w: w, log: l, done: make(chan struct{}), seen: make(map[string]struct{})}
	go wt.run()
	return wt, nil
}

func (wt *Watcher) run() {
	defer close(wt.done)
	for {
		select {
		case ev, ok := <-wt.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.EqualFold(filepath.Ext(name), ext) {
				continue
			}
			wt.mu.Lock()
			_, dup := wt.seen[name]
			wt.seen[name] = struct{}{}
			wt.mu.Unlock()
			if !dup {
				wt.log.Debug(pkg+"frame written", "name", name)
			}

		case err, ok := <-wt.w.Errors:
			if !ok {
				return
			}
			wt.log.Warning(pkg+"watch error", "error", err.Error())
		}
	}
}

// Count returns the number of distinct frames seen so far.
func (wt *Watcher) Count() int {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	return len(wt.seen)
}

// Close stops watching and returns the final count.
func (wt *Watcher) Close() (int, error) {
	err := wt.w.Close()
	<-wt.done
	return wt.Count(), err
}
