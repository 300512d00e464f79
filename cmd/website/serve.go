package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"website/internal/config"
	"website/internal/paths"
	"website/internal/site"
	"website/internal/slogutil"
)

var (
	servePort        int
	serveHost        string
	serveWatch       bool
	serveMaintenance modeValue
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the website",
	Long: `Start the HTTP server on the configured port.

The port comes from --port, then PORT, then site.{json,yaml,toml}, then 3000.
Maintenance mode answers every page request with the maintenance page.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: all interfaces)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload templates when files under views/ change")
	serveCmd.Flags().Var(&serveMaintenance, "maintenance", "Maintenance mode: on or off")
}

// loadServeConfig loads the site config and applies the flags that were set.
func loadServeConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("host") {
		cfg.Host = serveHost
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled = serveWatch
	}
	if serveMaintenance.set {
		cfg.MaintenanceMode = serveMaintenance.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := paths.Root(rootFlag)
	if err != nil {
		return err
	}
	cfg, err := loadServeConfig(cmd, root)
	if err != nil {
		return err
	}

	factory := slogutil.NewLoggerFactory(root, cfg, logLevelFlag, os.Stderr)
	defer factory.Close()
	logger := factory.ServerLogger()

	server, err := site.NewServer(site.Options{
		Config:  cfg,
		Root:    root,
		Console: cmd.OutOrStdout(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "Server is up on port %d\n", cfg.Port)
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		_ = server.Close()
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
	}
	return nil
}
