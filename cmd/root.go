package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/resortgen/internal/config"
	"github.com/KaramelBytes/resortgen/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "resortgen",
	Short: "resortgen: synthetic casino BI practice datasets with known defects",
	Long: `resortgen synthesizes daily casino/resort revenue and promotional-campaign
datasets, injects known data-quality defects (missing feeds, duplicated days,
sign errors, spikes), and writes raw, clean, and flagged versions for practice.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.resortgen/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{Seed: cfgpkg.DefaultSeed, OutputDir: "out", LogLevel: "info", LogFormat: "text"}
	}
	cfg = c

	// Apply CLI overrides if provided
	opt := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if flagLogLevel != "" {
		opt.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		opt.Format = flagLogFormat
	}
	if debug {
		opt.Level = "debug"
	}
	if _, err := logging.New(os.Stderr, opt); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using info/text logging\n", err)
		_, _ = logging.New(os.Stderr, logging.Options{})
	}
	slog.Debug("config loaded", "seed", cfg.Seed, "output_dir", cfg.OutputDir, "xlsx", cfg.XLSX)
}
