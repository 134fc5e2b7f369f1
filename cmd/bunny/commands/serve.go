// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/clock"
)

// bundleRoute is where bundles are served; the default
// bundles.base_path points at it.
const bundleRoute = "/bundles/"

func serveCommand() *cli.Command {
	var (
		configPath string
		listen     string
		directory  string
	)
	return &cli.Command{
		Name:    "serve",
		Summary: "Serve a directory of packed bundles over HTTP",
		Description: `Serve packed bundles at /bundles/<name> for local development. The
default bundles.base_path points here, so 'bunny get' and game hosts
built against the default config load from this server.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			cli.ConfigFlag(flagSet, &configPath)
			flagSet.StringVar(&listen, "listen", "", "address to listen on (default: serve.listen)")
			flagSet.StringVar(&directory, "dir", "", "directory to serve (default: serve.directory)")
			return flagSet
		},
		Run: func(ctx context.Context, _ []string) error {
			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Serve.Listen
			}
			if directory == "" {
				directory = cfg.Serve.Directory
			}
			if info, err := os.Stat(directory); err != nil || !info.IsDir() {
				return fmt.Errorf("serve directory %s is not a directory", directory)
			}
			logger := cli.NewLogger(cfg).With("command", "serve")

			listener, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			return serveBundles(ctx, listener, directory, logger)
		},
	}
}

// serveBundles serves directory on listener until ctx ends.
func serveBundles(ctx context.Context, listener net.Listener, directory string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(bundleRoute, http.StripPrefix(bundleRoute, http.FileServer(http.Dir(directory))))
	server := &http.Server{
		Handler:           logRequests(mux, clock.Real(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serving bundles", "address", listener.Addr().String(), "directory", directory)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(listener) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	n, err := r.ResponseWriter.Write(data)
	r.bytes += n
	return n, err
}

func logRequests(next http.Handler, clk clock.Clock, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clk.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"bytes", recorder.bytes,
			"duration", clock.Since(clk, start),
			"user_agent", r.UserAgent(),
		)
	})
}
