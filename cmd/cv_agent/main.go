// Package main provides the cv_agent CLI: CV skill-gap analysis, learning
// roadmaps and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_agent",
	Short: "CV skill-gap analyzer",
	Long: `cv_agent compares a CV against the requirements of a target role, verifies missing
skills with the candidate, renders an optimized LaTeX CV and builds a learning roadmap.`,
	SilenceUsage: true,
}

var (
	configPath  string
	verbose     bool
	logFormat   string
	apiKey      string
	databaseURL string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
