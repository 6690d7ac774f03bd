// Package main provides the entry point for the Jobtrack HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "Jobtrack HTTP API Server",
	Long:  "Jobtrack is a personal job-application tracker: job postings, resumes and networking contacts, with LLM-backed resume scoring and coaching via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
