// Package cmd implements the evidentry CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evidentry/evidentry"
	"github.com/evidentry/evidentry/pkg/logging"
)

var (
	configFile   string
	snapshotPath string
	verbose      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "evidentry",
	Short: "Evidentiary record store for IT due diligence",
	Long: `Evidentry keeps the evidentiary record of an M&A IT due diligence
engagement: facts with citations and correction history, findings that must
cite those facts, per-system dossiers, target-vs-buyer deltas, and an
export readiness gate.`,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.evidentry.yaml)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "snapshot file holding engagement state")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := viper.BindPFlag("snapshot", rootCmd.PersistentFlags().Lookup("snapshot")); err != nil {
		panic(fmt.Sprintf("Failed to bind snapshot flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".evidentry")
	}

	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.SetEnvPrefix("EVIDENTRY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := "info"
	if verbose || viper.GetBool("verbose") {
		level = "debug"
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	}

	logging.Configure(&logging.Config{
		Level:     level,
		Format:    getEnvOrDefault("LOG_FORMAT", "auto"),
		Output:    getEnvOrDefault("LOG_OUTPUT", "stderr"),
		NoColor:   os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug",
	})
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env; neither is required.
func loadEnvFiles() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// open builds the Evidentry instance for a command, restoring the snapshot
// named on the command line when one is present.
func open(extra ...evidentry.Option) (evidentry.Evidentry, error) {
	var opts []evidentry.Option
	if path := viper.GetString("snapshot"); path != "" {
		opts = append(opts, evidentry.WithSnapshot(path))
	}
	opts = append(opts, extra...)
	return evidentry.New(opts...)
}
