// Package main is the entry point for the countdo CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"countdo/internal/backend/firestore"
	"countdo/internal/backend/mongostore"
	"countdo/internal/backend/sqlstore"
	"countdo/internal/cli"
	"countdo/internal/commands"
	"countdo/internal/config"
	"countdo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openStore)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// openStore opens the backend named in the settings.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
	s := cfg.Settings
	switch s.Backend {
	case config.BackendFirestore:
		if err := cfg.CheckCredentials(); err != nil {
			return nil, err
		}
		return firestore.New(ctx, cfg, logger)
	case config.BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, err
		}
		return sqlstore.Open(sqlstore.DriverSQLite, cfg.SQLitePath(), s.Collection, logger)
	case config.BackendMySQL:
		if s.DSN == "" {
			return nil, fmt.Errorf("%w: mysql dsn is not set (add dsn to config.toml or set COUNTDO_DSN)", config.ErrIncomplete)
		}
		return sqlstore.Open(sqlstore.DriverMySQL, s.DSN, s.Collection, logger)
	case config.BackendMongo:
		return mongostore.Connect(ctx, s.MongoURI, s.MongoDatabase, s.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown backend: %q", s.Backend)
	}
}
