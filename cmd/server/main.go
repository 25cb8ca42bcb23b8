// Package main provides the model inspection HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/app"
	"go.ngs.io/ncmodel/internal/config"
	httpHandler "go.ngs.io/ncmodel/internal/http"
	"go.ngs.io/ncmodel/internal/logging"
)

const version = "0.1.0"

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("ncmodel-server version %s\n", version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ncmodel-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings := config.Default()
	if path := getEnv("NCMODEL_CONFIG", ""); path != "" {
		s, err := config.Load(path)
		if err != nil {
			return err
		}
		settings = s
	}

	port := getEnv("PORT", "8080")
	dataDir := getEnv("DATA_DIR", settings.Data.Directory)

	log, closer, err := logging.New(settings.Logger)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	log.WithFields(logrus.Fields{"port": port, "data_dir": dataDir}).Info("Starting model server")

	a, err := app.New(settings, log)
	if err != nil {
		return err
	}

	handler := httpHandler.NewHandler(dataDir, a.Models, a.Validator, a.Sampler, log)
	router := httpHandler.SetupRouter(handler, getEnv("CORS_ALLOWED_ORIGINS", ""))

	addr := fmt.Sprintf(":%s", port)
	log.Infof("Server listening on %s", addr)
	log.Infof("Health check: http://localhost:%s/health", port)
	log.Info("API endpoints:")
	log.Info("  - GET /v1/models")
	log.Info("  - GET /v1/models/:name")
	log.Info("  - GET /v1/models/:name/check?profiles=default,station")
	log.Info("  - GET /v1/models/:name/sample?var=<name>&lat=<lat>&lon=<lon>")

	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("ncmodel server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                Model directory (default: data.directory from settings)")
	fmt.Println("  NCMODEL_CONFIG          TOML or YAML settings file (default: built-in settings)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                              Health check")
	fmt.Println("  GET /v1/models                           List model base names")
	fmt.Println("  GET /v1/models/:name                     Schema summary of a model")
	fmt.Println("  GET /v1/models/:name/check?profiles=...  Consistency and profile check report")
	fmt.Println()
}
