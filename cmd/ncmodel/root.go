// Command ncmodel converts, checks and edits gridded and station data
// models.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.ngs.io/ncmodel/internal/app"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/logging"
)

// Version is the ncmodel release.
const Version = "0.1.0"

var (
	configFile string
	logLevel   string

	// App holds the components built from the settings.
	App *app.App

	logCloser io.Closer
)

// RootCmd is the main command.
var RootCmd = &cobra.Command{
	Use:   "ncmodel",
	Short: "Convert and check NetCDF data models.",
	Long: `Convert between the three-file data model (numpy data, NCML schema and
coordinate metadata), NetCDF files and CSV station tables, and check models
for consistency and convention profiles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Startup(configFile, logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Startup reads the settings and builds the logger and components.
func Startup(configFile, level string) error {
	settings := config.Default()
	if configFile != "" {
		s, err := config.Load(configFile)
		if err != nil {
			return err
		}
		settings = s
	}
	if level != "" {
		if _, err := config.ParseLevel(level); err != nil {
			return err
		}
		settings.Logger.LevelConsole = level
	}

	log, closer, err := logging.New(settings.Logger)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logCloser = closer

	App, err = app.New(settings, log)
	return err
}

func init() {
	RootCmd.AddCommand(versionCmd)

	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file location (TOML or YAML); built-in defaults when empty")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "console log level: debug, info, warning, error or critical")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ncmodel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ncmodel v%s\n", Version)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
	},
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
