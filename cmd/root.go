// Package cmd implements the CLI commands for exportkit using Cobra.
// Flag defaults can be supplied by an optional viper-read config file
// (--config or ~/.exportkit.yaml).
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagConfig  string
	flagVerbose bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "exportkit",
	Short: "exportkit — export rich documents to portable formats",
	Long: `exportkit converts a document (HTML, Markdown, or a structured tree)
into plain text, Markdown, a standalone HTML document, a paginated PDF,
or a word-processor document.

Usage:
  exportkit export <input> --format pdf`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ~/.exportkit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the optional config file. A missing default file is not
// an error; an explicitly requested one is.
func loadConfig() error {
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", flagConfig, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetConfigName(".exportkit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)
	_ = viper.ReadInConfig()
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
