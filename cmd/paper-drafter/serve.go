// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/api"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/generate"
	"github.com/pdiddy/paper-drafter/internal/library"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project over a JSON HTTP API",
	Long: `Serve loads the project into memory and exposes it over HTTP: sections can
be edited, generated and rewritten, the References section is resynchronised
after every change, and the paper can be exported. Prometheus metrics are
served on /metrics. The project and library are written back on shutdown.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	dir := projectDir(cmd)
	editor, err := openProject(cfg, dir)
	if err != nil {
		return err
	}
	items, err := draft.LoadLibrary(dir)
	if err != nil {
		return err
	}
	lib := library.New(items...)

	drafter, err := newDrafter(cfg, editor)
	if errors.Is(err, generate.ErrNoAPIKey) {
		logger.Warn("no API key configured; generation routes are disabled")
		drafter = nil
	} else if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(editor, drafter, lib, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("project", dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}

	if err := draft.SaveProject(dir, editor.Paper()); err != nil {
		return err
	}
	if err := draft.SaveLibrary(dir, lib.All()); err != nil {
		return err
	}
	logger.Info("project saved", zap.String("project", dir))
	return nil
}

func init() {
	addProjectFlag(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
