// Package main is the command line entry point for the intent agent.
//
// Usage:
//
//	intentagent serve                       # HTTP and WebSocket API
//	intentagent ask acme s1 "¿Cuál es el precio?"
//	intentagent reindex acme
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Desarso/intentagent"
	"github.com/Desarso/intentagent/logging"
	"github.com/Desarso/intentagent/sessions"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	configPath string
	addr       string
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "intentagent",
		Short:        "Multi-tenant commercial assistant with intent routing, retrieval and tools",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP and WebSocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	askCmd := &cobra.Command{
		Use:   "ask [tenant] [session] [message]",
		Short: "Run one dialogue turn and print the result as JSON",
		Args:  cobra.ExactArgs(3),
		RunE:  runAsk,
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex [tenant...]",
		Short: "Rebuild the retrieval index of the given tenants",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReindex,
	}

	rootCmd.AddCommand(serveCmd, askCmd, reindexCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadApp(ctx context.Context) (*intentagent.App, error) {
	cfg, err := intentagent.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.WithAddr(addr)
	}
	logger := logging.New(cfg.Log)
	return intentagent.NewApp(ctx, cfg, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Start()

	if app.Config.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := sessions.NewServer(app.Orchestrator, app.Store).
		WithTraceStore(app.Traces).
		WithReindexer(app.Retrieval).
		WithStats(app.Router).
		WithMetrics(app.Metrics, app.Registry).
		WithLogger(logging.Component(app.Logger, "http"))

	srv := &http.Server{
		Addr:              app.Config.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Orchestrator.HandleMessage(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var failed int
	for _, tenant := range args {
		n, err := app.Retrieval.Reindex(ctx, tenant)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", tenant, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d documents\n", tenant, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tenants failed to reindex", failed, len(args))
	}
	return nil
}
