package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/config"
	hostsim "github.com/web2native/bridge/internal/host/sim"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/profile"
	"github.com/web2native/bridge/internal/providers"
	"github.com/web2native/bridge/internal/registry"
	"github.com/web2native/bridge/internal/server"
	"github.com/web2native/bridge/internal/sim"
)

func main() {
	// Flags override the corresponding environment variables.
	port := flag.String("port", "", "listen port (overrides PORT)")
	host := flag.String("host", "", "listen host (overrides HOST)")
	profilePath := flag.String("profile", "", "device profile file, yaml or toml (overrides DEVICE_PROFILE)")
	pairingToken := flag.String("pairing-token", "", "token pages must present to open a session (overrides PAIRING_TOKEN)")
	script := flag.String("script", "", "run a page script against the stack and exit instead of serving")
	settle := flag.Duration("settle", 500*time.Millisecond, "how long a scripted page waits for async results")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *profilePath != "" {
		cfg.Profile.Path = *profilePath
	}
	if *pairingToken != "" {
		cfg.Server.PairingToken = *pairingToken
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	prof, err := profile.LoadOrDefault(cfg.Profile.Path)
	if err != nil {
		logger.Fatal("device profile rejected",
			zap.String("path", cfg.Profile.Path),
			zap.Error(err))
	}

	if *script != "" {
		os.Exit(runScript(cfg, prof, logger, *script, *settle))
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		Profile: prof,
		Logger:  logger,
		Metrics: monitoring.NewMetrics(),
	})
	if err != nil {
		logger.Fatal("devhost assembly failed", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()
	logger.Info("devhost listening",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("device", prof.Identity().Description()))

	select {
	case <-sigChan:
		logger.Info("shutting down")
		if err := srv.Close(); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	}
}

// runScript drives a goja page through one script file and prints whatever
// the script logged. Async results get a settle window before the page
// closes, so delayed biometric prompts and tag discoveries still land.
func runScript(cfg *config.Config, prof profile.Profile, logger *logging.Logger, path string, settle time.Duration) int {
	source, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read script", zap.Error(err))
		return 1
	}

	flags := policy.NewFlags(prof.SeedFlags())
	device := hostsim.New(prof, logger)

	reg := registry.New()
	for _, p := range providers.All(providers.Deps{Surface: device, Flags: flags}) {
		if err := reg.Register(p); err != nil {
			logger.Error("provider registration failed", zap.Error(err))
			return 1
		}
	}

	page, err := sim.Open(sim.Options{
		Registry: reg,
		Enforcer: policy.NewEnforcer(flags),
		Codec:    codec.New(cfg.Bridge.MaxEnvelopeBytes),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("page open failed", zap.Error(err))
		return 1
	}
	defer page.Close()

	runErr := page.Run(context.Background(), string(source))
	time.Sleep(settle)
	page.Drain()

	for _, entry := range page.Console() {
		fmt.Printf("[%s] %s\n", entry.Level, entry.Message)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "script failed: %v\n", runErr)
		return 1
	}
	return 0
}
