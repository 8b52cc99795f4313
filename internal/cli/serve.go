package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/worklog/internal/app"
	"github.com/rpggio/worklog/internal/config"
	"github.com/rpggio/worklog/internal/mcp"
	"github.com/rpggio/worklog/internal/poller"
)

const shutdownTimeout = 5 * time.Second

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Track meetings and serve the tracker over MCP",
		Long:  "Polls running processes on the configured interval and exposes the meeting tracker as MCP tools over stdio or streamable HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			if transport == "" {
				transport = a.Config.Transport.Mode
			}
			if transport != config.TransportStdio && transport != config.TransportHTTP {
				return fmt.Errorf("unknown transport %q", transport)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "MCP transport: stdio or http (default from config)")

	return cmd
}

func serve(ctx context.Context, a *app.App, transport string) error {
	logger := a.Logger

	seeded, err := a.SeedRules(ctx)
	if err != nil {
		return fmt.Errorf("seeding rules: %w", err)
	}
	if seeded > 0 {
		logger.Info("seeded recognition rules", "count", seeded, "file", a.Config.Rules.SeedFile)
	}

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Tracker:  a.Tracker,
			Rules:    a.Rules,
			Activity: a.Activity,
		},
		TransportMode: transport,
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := poller.New(a.Tracker, a.Clock, a.Config.Tracker.PollInterval, logger)
		if err := p.Run(ctx); err != nil {
			logger.Error("poller stopped", "error", err)
		}
	}()

	if transport == config.TransportStdio {
		err = runStdio(ctx, logger, server)
	} else {
		err = runHTTP(ctx, logger, server, a.Config.Server.Host, a.Config.Server.Port)
	}

	cancel()
	wg.Wait()
	return err
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is canceled.
	err := server.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
