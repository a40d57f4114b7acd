package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the config file and the search cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			r.writePlain("Created %s; fill in your Spotify credentials before use.\n", configPath)
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// CacheStats shows how many search results are cached.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache := r.openCache()
	defer closeCache()

	if cache == nil {
		return fmt.Errorf("search cache unavailable; run 'spotlite setup' first")
	}

	size, err := cache.Size()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	return r.writePlain("Cached queries: %d\n", size)
}

// CacheClear removes all cached search results.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache := r.openCache()
	defer closeCache()

	if cache == nil {
		return fmt.Errorf("search cache unavailable; run 'spotlite setup' first")
	}

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return r.writePlain("✓ Search cache cleared\n")
}
