package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"klar/auth"
	"klar/config"
	"klar/httpserver"
	"klar/storage"
	"klar/utils"
)

func main() {
	utils.Log.Info("Initializing KLAR...")

	if err := run("config.toml"); err != nil {
		utils.Log.Error("%v", err)
		utils.Log.Sync()
		os.Exit(1)
	}
	utils.Log.Sync()
}

// run starts the server described by the config file and blocks until it
// stops. Startup and listen failures are returned.
func run(configPath string) error {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	utils.Log.SetLevel(utils.ParseLogLevel(cfg.Log.Level))

	// Initialize i18n system
	if err := utils.InitI18n(); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	kv, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer kv.Close()

	directory, err := auth.NewDirectory(auth.MockCredentials, 0)
	if err != nil {
		return fmt.Errorf("failed to build credential directory: %w", err)
	}

	server := httpserver.New(cfg, kv, directory, utils.Log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer close(quit)
	defer signal.Stop(quit)
	go func() {
		if _, ok := <-quit; !ok {
			return
		}
		utils.Log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			utils.Log.Error("Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := server.App.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		server.Workspaces.Shutdown()
		server.Limiter.Close()
		server.Hub.Close()
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}
