package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/auth"
	"github.com/kvsingh/neuralmon/internal/config"
	"github.com/kvsingh/neuralmon/internal/logging"
	"github.com/kvsingh/neuralmon/internal/storage"
	"github.com/kvsingh/neuralmon/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "neuralmon failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("NEURALMON_CONFIG"))
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var verifier auth.Verifier = auth.Plain{}
	if cfg.PasswordMode == "bcrypt" {
		verifier = auth.Bcrypt{}
	}

	store, err := storage.Open(cfg.Backend, cfg.DataDir, verifier, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	session, err := storage.NewSession(cfg.DataDir, log)
	if err != nil {
		return err
	}

	program := tea.NewProgram(update.NewModel(update.Deps{
		Store:   store,
		Session: session,
		Log:     log,
		Config:  cfg,
	}))

	// Another process rewriting the current-user record (a profile
	// rename, for example) is forwarded into the running UI. Advisory
	// only: task and story state is not reconciled.
	watcher, err := session.Watch(func(u storage.SessionUser) {
		program.Send(update.SessionChangedMsg{User: u})
	})
	if err != nil {
		log.Warn("session watcher unavailable", zap.Error(err))
	} else {
		defer func() { _ = watcher.Close() }()
	}

	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
