// genie TUI - A terminal client for the Campus Genie student assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/genie-tui/internal/archive"
	"github.com/jeranaias/genie-tui/internal/config"
	"github.com/jeranaias/genie-tui/internal/genie"
	"github.com/jeranaias/genie-tui/internal/history"
	"github.com/jeranaias/genie-tui/internal/notify"
	"github.com/jeranaias/genie-tui/internal/session"
	"github.com/jeranaias/genie-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.genie/config.toml)")
		userID      = flag.String("user", "", "student ID (overrides config)")
		backendURL  = flag.String("backend", "", "backend base URL (overrides config)")
		checkOnly   = flag.Bool("check", false, "probe backend reachability and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("genie %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *userID != "" {
		cfg.User.ID = *userID
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}

	client := genie.NewClientWithConfig(&genie.ClientConfig{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		ProbeTimeout: time.Duration(cfg.Backend.ProbeTimeoutSecs) * time.Second,
	})

	if *checkOnly {
		runCheck(client)
		return
	}

	// The TUI needs a real terminal.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: genie requires an interactive terminal")
		os.Exit(1)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sessionLog := session.NewLog(client)

	if debugLog := openDebugLog(dataDir); debugLog != nil {
		sessionLog.SetDebugLog(debugLog)
	}

	// Local exchange archive, independent of server-side history. Feeds the
	// /recall command and records every successful exchange.
	var searcher ui.Searcher
	if cfg.Storage.ArchiveEnabled {
		arch, err := archive.Open(filepath.Join(dataDir, "archive.db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive disabled: %v\n", err)
		} else {
			defer arch.Close()
			sessionLog.SetRecorder(arch)
			searcher = arch
		}
	}

	notifyPath := ""
	if cfg.Storage.NotificationsEnabled {
		notifyPath = filepath.Join(dataDir, "notifications.json")
	}
	store, err := notify.NewStore(notifyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	m := ui.New(ui.Options{
		Log:        sessionLog,
		Panel:      history.NewPanel(client),
		Toasts:     store,
		Archive:    searcher,
		UserID:     cfg.User.ID,
		UserLabel:  cfg.User.DisplayName,
		BackendURL: cfg.Backend.BaseURL,
		Markdown:   cfg.UI.Markdown,
		ExportDir:  dataDir,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running genie: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// runCheck probes the backend once and reports the result.
func runCheck(client *genie.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.CheckReachable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Backend %s is unreachable: %v\n", client.BaseURL(), err)
		os.Exit(1)
	}
	fmt.Printf("Backend %s is reachable\n", client.BaseURL())
}

// openDebugLog opens the session debug log file. Failures are non-fatal:
// the session log simply runs without debug output.
func openDebugLog(dataDir string) *log.Logger {
	f, err := os.OpenFile(filepath.Join(dataDir, "debug.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return log.New(f, "", log.LstdFlags)
}
