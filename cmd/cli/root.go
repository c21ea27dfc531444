package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	githubToken string
	cacheDir    string
)

var rootCmd = &cobra.Command{
	Use:   "warden-cli",
	Short: "warden-cli is the command-line interface for Review-Warden.",
	Long: `A CLI for running Review-Warden inside CI pipelines: recording approval
artifacts when a review is submitted and evaluating approval staleness when a
pull request changes.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub Token")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory holding approval artifacts between CI runs")

	if err := viper.BindPFlag("GITHUB_TOKEN", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("CACHE_DIR", rootCmd.PersistentFlags().Lookup("cache-dir")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("RW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
