package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "netcompose",
	Short: "Compose multi-application traffic-engineering models",
	Long: `netcompose turns a network topology and a set of application demands
into one shared linear optimization model. Each application brings its
traffic classes, candidate paths, resource costs, and an objective; the
composer merges them so every application sees the joint load on shared
resources.`,
}

// setupLogging applies the --log flag. Every subcommand calls it first.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
