package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Errors []rules.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [rules-file]",
		Short: "Validate a rules file",
		Long: `Validate a CUE or YAML rules file without running a reconciliation.

Reports every invalid entry, not only the first. Without an argument the
configured rules file (--rules or LINENAUDIT_RULES) is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Rules
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, "no rules file given", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRules, "failed to read rules file", err)
	}
	formatter.VerboseLog("Validating %s", path)

	r, err := rules.Parse(path, data)
	if err != nil {
		if errors.Is(err, rules.ErrUnsupportedFormat) {
			return formatter.Fail(ExitCommandError, ErrCodeRules, "unsupported rules format", err)
		}
		return outputValidationErrors(formatter, []rules.ValidationError{parseFailure(err)})
	}

	if errs := rules.Validate(r); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	// Output success
	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Rules valid")
	return nil
}

// parseFailure turns a CUE or YAML error into a validation entry.
func parseFailure(err error) rules.ValidationError {
	var cErr *rules.CompileError
	if errors.As(err, &cErr) {
		return rules.ValidationError{Field: cErr.Field, Message: cErr.Error(), Code: ErrCodeRules}
	}
	return rules.ValidationError{Field: "rules", Message: err.Error(), Code: ErrCodeRules}
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []rules.ValidationError) error {
	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
