// Package cmd provides the command-line interface for CyberDNA.
package cmd

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "cyberdna",
	Short: "CyberDNA simulates threat detection and response on system " +
		"behavior metrics.",
	Long: `CyberDNA runs monitoring cycles over fabricated or live system ` +
		`metrics, checks each sample against a healthy baseline, and plays ` +
		`a scripted remediation sequence whenever a cycle reads anomalous.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A .env file can override the baseline and server settings.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// resolveEnvInt re-reads an environment-backed flag after the .env file has
// loaded. Flag defaults are registered before PersistentPreRun runs, so a
// value that only exists in .env is not visible at registration time.
func resolveEnvInt(cmd *cobra.Command, flag, env string, value *int) {
	if cmd.Flags().Changed(flag) {
		return
	}

	*value = envInt(env, *value)
}

// resolveEnvString is the string counterpart of resolveEnvInt.
func resolveEnvString(cmd *cobra.Command, flag, env string, value *string) {
	if cmd.Flags().Changed(flag) {
		return
	}

	if v, exists := os.LookupEnv(env); exists {
		*value = v
	}
}

// envInt reads an integer environment variable, falling back to def when the
// variable is absent or malformed.
func envInt(name string, def int) int {
	value, exists := os.LookupEnv(name)
	if !exists {
		return def
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}

	return n
}
