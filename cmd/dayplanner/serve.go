package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"dayplanner/internal/auth"
	"dayplanner/internal/planner"
	"dayplanner/internal/store"
	"dayplanner/internal/web"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("Starting dayplanner...")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.OpenAndMigrate(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	srv, err := web.New(*cfg, web.Deps{
		Planner:  planner.NewService(st),
		Auth:     auth.NewService(st, auth.NewPasswordHasher()),
		Sessions: auth.NewSessions(cfg.Session, st),
		Health:   st.Ping,
	})
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to create web server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Listen(); err != nil {
			errChan <- err
		}
	}()
	select {
	case err := <-errChan:
		st.Close()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// HTTP drains before the store closes, so both live in one
			// operation.
			"dayplanner": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := srv.Shutdown(ctx); err != nil {
					log.Printf("[web] error during shutdown: %v", err)
				}
				return st.Close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with code %d", exitCode)
	}
	return nil
}
