// Package main is the entry point for the tasklane CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"tasklane/internal/auth"
	"tasklane/internal/backend/firestore"
	"tasklane/internal/cli"
	"tasklane/internal/commands"
	"tasklane/internal/config"
	"tasklane/internal/state"

	// Import all command packages to register them via init()
	_ "tasklane/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newApp)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newApp builds the app state over the stored session and Firestore.
// Without a signed-in user, or when the command needs no store, no store
// client is created. Such commands also run when the stored session cannot
// be loaded, signed out, so its token can still be removed.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, withStore bool) (*state.App, func(), error) {
	session, err := auth.NewSession(ctx, cfg)
	if err != nil {
		if withStore {
			return nil, nil, err
		}
		logger.Warn("stored session unusable, continuing signed out", "err", err)
		session = auth.SignedOut(cfg)
	}
	if !withStore || session.User() == nil {
		return state.New(nil, session, logger), func() {}, nil
	}

	client, err := firestore.New(ctx, cfg, session.TokenSource())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("connected", "project", cfg.ProjectID, "database", cfg.Database)
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Debug("close store client", "err", err)
		}
	}
	return state.New(client, session, logger), cleanup, nil
}
