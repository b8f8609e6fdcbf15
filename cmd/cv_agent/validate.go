package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON artifact against its schema",
	Long: fmt.Sprintf(`Validates a JSON file (a structured CV, gap report, verification questions or roadmap)
against the embedded JSON schema. Available schemas: %s.`, strings.Join(schemas.Names(), ", ")),
	RunE: runValidate,
}

var (
	validateSchema string
	validateInput  string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema name (required)")
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the JSON file (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if !slices.Contains(schemas.Names(), validateSchema) {
		return fmt.Errorf("unknown schema %q (available: %s)", validateSchema, strings.Join(schemas.Names(), ", "))
	}

	if err := schemas.ValidateFile(validateSchema, validateInput); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s is invalid: %w", validateInput, err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid against %s\n", validateInput, validateSchema) //nolint:errcheck
	return nil
}
