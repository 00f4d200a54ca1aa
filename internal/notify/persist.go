// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify decouples transient, cross-cutting status notifications
// from the components that trigger them.
package notify

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/genie-tui/internal/model"
	"github.com/jeranaias/genie-tui/internal/util"
)

// persistence handles the history file and its change watcher.
//
// Writes are atomic (temp file + rename), so the watcher listens on the
// parent directory: watching the file itself would break the first time a
// rename replaced it.
type persistence struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// newPersistence sets up the history file path and starts the watcher.
// onChange is invoked (from the watcher goroutine) whenever the file is
// rewritten, including by this process; reloads are idempotent so the
// self-notification is harmless.
func newPersistence(path string, onChange func()) (*persistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	p := &persistence{
		path: path,
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Degrade to no cross-instance sync rather than failing startup.
		return p, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return p, nil
	}
	p.watcher = watcher

	go p.watch(onChange)

	return p, nil
}

// watch forwards relevant filesystem events to onChange.
func (p *persistence) watch(onChange func()) {
	name := filepath.Base(p.path)
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				onChange()
			}
		case _, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// close stops the watcher.
func (p *persistence) close() error {
	close(p.done)
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

// load reads the history file. Missing or corrupt files yield an empty
// history; the file is a convenience, not a source of truth.
func (p *persistence) load() []model.Notification {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return make([]model.Notification, 0)
	}

	var history []model.Notification
	if err := json.Unmarshal(data, &history); err != nil {
		return make([]model.Notification, 0)
	}

	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	return history
}

// save writes the history file atomically. Errors are swallowed by the
// caller; see Store.saveLocked.
func (p *persistence) save(history []model.Notification) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(p.path, data, 0644)
}
