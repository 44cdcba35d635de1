package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a diagnostic file against the workflow catalogue",
	Long:  "Runs the scoring engine over a diagnostic JSON file and prints the ranked archetypes, without generating a report.",
	RunE:  runScore,
}

var (
	scoreInput     string
	scoreCatalogue string
	scoreOutput    string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "in", "i", "", "Path to diagnostic JSON file (required)")
	scoreCmd.Flags().StringVar(&scoreCatalogue, "catalogue", "", "Path to catalogue JSON file (default: embedded catalogue)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output JSON file (default: stdout)")

	if err := scoreCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	content, err := os.ReadFile(scoreInput)
	if err != nil {
		return fmt.Errorf("failed to read diagnostic file: %w", err)
	}

	var d planner.DiagnosticData
	if err := json.Unmarshal(content, &d); err != nil {
		return fmt.Errorf("failed to parse diagnostic JSON: %w", err)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("diagnostic is invalid: %w", err)
	}

	cat, err := loadCatalogue(scoreCatalogue)
	if err != nil {
		return err
	}

	result := scoring.NewEngine(cat).Score(&d)

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scoring result: %w", err)
	}

	if scoreOutput == "" {
		_, _ = fmt.Fprintln(os.Stdout, string(jsonBytes))
		return nil
	}

	outputDir := filepath.Dir(scoreOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(scoreOutput, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Scored %d archetype(s), top match: %s\n", len(result.AllScores), result.TopArchetypes[0].ID)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", scoreOutput)
	return nil
}
