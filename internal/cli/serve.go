package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recall-oss/recall/internal/config"
	"github.com/recall-oss/recall/internal/event"
	"github.com/recall-oss/recall/internal/lifecycle"
	"github.com/recall-oss/recall/internal/memory"
	"github.com/recall-oss/recall/internal/server"
	"github.com/recall-oss/recall/internal/telemetry"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recall API server",
	Long:  `Start the HTTP server exposing the memory record API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := telemetry.NewLogger(level, cfg.Logging.Format)
	defer logger.Close()
	if cfg.Logging.File != "" {
		if err := logger.WithFile(cfg.Logging.File); err != nil {
			return err
		}
	}

	bus := event.NewBus(logger)
	registerHooks(cfg, bus, logger)

	lc := lifecycle.NewManager(bus, logger)
	if err := lc.Initialize(cfg); err != nil {
		return err
	}
	defer lc.Shutdown()

	metrics := telemetry.NewMetrics()
	svc := memory.NewService(lc, bus, metrics, logger)
	svc.Limits = memory.Limits{
		SearchDefault:  cfg.Limits.SearchDefault,
		HistoryDefault: cfg.Limits.HistoryDefault,
	}

	srv := server.New(cfg, lc, svc, metrics, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return srv.Start(ctx, addr)
}

// registerHooks wires the configured event hooks onto the bus.
func registerHooks(cfg *config.Config, bus *event.Bus, logger *telemetry.Logger) {
	if !cfg.Hooks.Enabled {
		return
	}
	for _, h := range cfg.Hooks.Hooks {
		events := make([]event.EventType, 0, len(h.Events))
		for _, e := range h.Events {
			events = append(events, event.EventType(e))
		}
		switch h.Type {
		case "webhook":
			bus.Register(event.NewWebhookHook(h.Name, h.URL, events, h.Blocking))
		case "log":
			bus.Register(event.NewLogHook(h.Name, events, logger, h.Level))
		}
	}
}
