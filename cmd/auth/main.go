package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aussiebroadwan/bartab/internal/auth/app"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

func main() {
	showVersion := flag.Bool("version", false, "print the build version and exit")
	checkConfig := flag.Bool("check-config", false, "validate the environment configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(app.BuildVersion)
		return
	}

	cfg := app.LoadConfig()

	// Startup failures are logged in the same format as the running service.
	logger := slogx.New(slogx.Config{
		Service: "auth",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stderr,
	})

	if *checkConfig {
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", "err", err)
			os.Exit(2)
		}
		logger.Info("configuration ok", "store", cfg.StoreDriver, "notifier", cfg.Notifier)
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to initialize auth service", "err", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		logger.Error("auth service stopped", "err", err)
		os.Exit(1)
	}
}
