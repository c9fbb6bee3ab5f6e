// Command refeel maps phantom limb sensations onto 3D limb models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/config/file"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/confirm"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/meshfs"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/cli"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
	"github.com/refeel-health/refeel-cli/internal/core/services"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	logger.Configure(settings.Log.Level, settings.Log.Format)

	gateway, err := storage.Open(ctx, settings.Store)
	if err != nil {
		return err
	}
	defer gateway.Close()

	meshes := meshfs.NewLibrary(settings.ModelsDir)
	defer meshes.Close()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Exams:     services.NewExamService(gateway),
		Settings:  settingsService,
		Gateway:   gateway,
		Meshes:    meshes,
		Confirmer: confirm.NewTerminal(os.Stdin, os.Stderr),
		NewLifecycle: func(c driven.Confirmer) driving.PointLifecycle {
			return services.NewPointLifecycle(gateway, c)
		},
	})

	return cli.Execute(ctx)
}
