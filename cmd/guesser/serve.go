package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-guesser/pkg/server"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve guessed views for every resource over HTTP",
		Long: `Serve guessed pages for every resource of the data source:

  GET /{resource}            list
  GET /{resource}/{id}       edit
  GET /{resource}/{id}/show  show

Append ?format=json for the element tree or ?format=snippet for the source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, cmd)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	_ = a.viper.BindPFlag(keyAddr, cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) runServe(ctx context.Context, cmd *cobra.Command) error {
	logger, err := newLogger(a.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	loader := newSourceLoader()
	registry, err := loadResources(ctx, loader, a.cfg)
	if err != nil {
		return err
	}
	provider, closeProvider, err := openProvider(ctx, loader, a.cfg, registry, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	srv, err := server.New(provider,
		server.WithResources(registry),
		server.WithLogger(logger),
		server.WithImportPackage(a.cfg.ImportPackage),
		server.WithProduction(a.cfg.production()),
		server.WithPerPage(a.cfg.PerPage),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("guesser: listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("guesser: shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}
