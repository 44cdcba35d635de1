package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leomayn/planner/internal/planner"
)

var validateCatalogueCmd = &cobra.Command{
	Use:   "validate-catalogue",
	Short: "Validate a workflow catalogue file",
	Long:  "Checks a catalogue JSON file against the catalogue schema and reports every violation.",
	RunE:  runValidateCatalogue,
}

var validateCatalogueInput string

func init() {
	validateCatalogueCmd.Flags().StringVarP(&validateCatalogueInput, "in", "i", "", "Path to catalogue JSON file (required)")

	if err := validateCatalogueCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCatalogueCmd)
}

func runValidateCatalogue(_ *cobra.Command, _ []string) error {
	content, err := os.ReadFile(validateCatalogueInput)
	if err != nil {
		return fmt.Errorf("failed to read catalogue file: %w", err)
	}

	if err := planner.ValidateCatalogueJSON(content); err != nil {
		var fields planner.FieldErrors
		if errors.As(err, &fields) {
			_, _ = fmt.Fprintf(os.Stderr, "Catalogue has %d violation(s):\n", len(fields))
			for field, msg := range fields {
				_, _ = fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
		}
		return fmt.Errorf("catalogue validation failed")
	}

	cat, err := planner.LoadCatalogue(validateCatalogueInput)
	if err != nil {
		return fmt.Errorf("catalogue did not load: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Catalogue is valid: %d archetype(s)\n", len(cat.Archetypes))
	return nil
}
