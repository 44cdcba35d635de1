// Package main provides the entry point for the AI Deployment Planner API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner_api",
	Short: "AI Deployment Planner API Server",
	Long:  "The AI Deployment Planner qualifies leads, scores diagnostic answers against workflow archetypes, and generates personalised AI deployment reports with PDF download.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
