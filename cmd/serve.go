/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/config"
	"github.com/hapi-server/hapitable/core/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Start the table server",
		Long: `Start an HTTP server listing the configured tables.

Routes:

	/                         landing page
	/table?table=<name>       rendered table, with limit= and filter:<column>= parameters
	/cell?table=&column=&row= one rendered cell
	/metrics                  Prometheus metrics
	/healthz                  liveness check
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	serveCommand.Flags().String("listen", config.DefaultListen, "set listening address of the server")
	serveCommand.Flags().Bool("strict", false, "refuse tables whose explorer links lack identifier columns")
	serveCommand.Flags().Int("default-limit", config.DefaultLimit, "set the number of rows shown when no limit is given (0 shows all)")
	return serveCommand
}

func newManager(settings *config.Config) (*catalog.Manager, error) {
	manager := catalog.NewManager(settings.BaseDir)
	for _, src := range settings.Sources() {
		if err := manager.AddSource(src); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

func (a *app) serve(ctx context.Context) error {
	manager, err := newManager(a.settings)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(manager, a.settings, a.log)
	if err != nil {
		return err
	}
	if err := srv.CheckTables(); err != nil {
		if a.settings.Strict {
			return err
		}
		a.log.WithError(err).Warn("Some tables are unavailable")
	}
	srv.AddSystemTables()

	httpServer := &http.Server{
		Addr:              a.settings.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.settings.Listen).Info("Server listening")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
