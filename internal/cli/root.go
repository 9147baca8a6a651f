package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/neutralizer/internal/logging"
	"github.com/ppiankov/neutralizer/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	quiet   bool
	logJSON  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "neutralizer",
	Short: "Neutralizer - find and explain manipulative language in news articles",
	Long: `Neutralizer locates manipulative phrases in a news article and reports
them as exact, validated character spans.

Phrases come from an LLM detector (run in several passes over overlapping
chunks) and, optionally, from a diff between the article and a neutral
rewrite. Spans inside quoted speech and known false positives are dropped.
Every span in the report refers to the original text.

Neutralizer shows what it would change and why. It does not decide what is
true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Neutralizer.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "neutralizer v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.neutralizer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides --verbose)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".neutralizer"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match NEUTRALIZER_* (NEUTRALIZER_LLM_PROVIDER -> llm.provider)
	viper.SetEnvPrefix("NEUTRALIZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvKeys()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnvKeys registers the keys viper.Unmarshal should look up in the
// environment even when no config file mentions them
func bindEnvKeys() {
	for _, key := range []string{
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
		"llm.rewrite", "llm.prompts_file",
		"cache.enabled", "cache.dir",
		"concurrency.workers", "concurrency.chunk_workers",
		"rate_limiting.requests_per_second", "rate_limiting.burst_size",
		"filter.false_positives_file",
	} {
		_ = viper.BindEnv(key)
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command run from the global flags
func newLogger() (*log.Logger, error) {
	if logLevel != "" {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return nil, err
		}
	}
	return logging.New(os.Stderr, logging.Options{
		Verbose: verbose,
		Quiet:   quiet,
		JSON:    logJSON,
		Level:   logLevel,
	}), nil
}
