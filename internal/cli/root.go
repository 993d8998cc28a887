package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/config"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string // SQLite path or postgres:// DSN; empty uses the configuration
	Rules   string // rules file; empty uses the configuration, then the built-in rules
	EnvFile string // .env file; empty reads ./.env when present

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the linenaudit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "linenaudit",
		Short:   "Linen delivery audit",
		Version: audit.EngineVersion,
		Long: `Reconcile linen orders against supplier delivery notes.

Reads an order spreadsheet and a batch of delivery-note PDFs, reports per
article what was ordered, what was delivered and the difference, and keeps
a history of saved audits for trend analytics.

Configuration is read from .env and the environment:
  LINENAUDIT_DB         SQLite file or postgres:// DSN (default linenaudit.db)
  LINENAUDIT_RULES      rules file (.cue, .yaml)
  LINENAUDIT_LOG_LEVEL  debug | info | warn | error
Flags override the environment.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "snapshot database: SQLite path or postgres:// DSN")
	cmd.PersistentFlags().StringVar(&opts.Rules, "rules", "", "rules file (.cue, .yaml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to load (default .env)")

	// Add subcommands
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewSnapshotsCommand(opts))
	cmd.AddCommand(NewAnalyticsCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve fills unset flags from the configuration and installs the logger.
func (o *RootOptions) resolve(stderr io.Writer) error {
	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	if o.DB == "" {
		o.DB = cfg.DB
	}
	if o.Rules == "" {
		o.Rules = cfg.RulesPath
	}

	// Configure logging based on verbose flag
	level := cfg.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
	return nil
}

// Logger returns the configured logger. Commands built without the root
// command log nowhere.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// database returns the snapshot store location.
func (o *RootOptions) database() string {
	if o.DB == "" {
		return config.DefaultDB
	}
	return o.DB
}

// loadRules returns the configured rule tables, or the built-in ones.
func (o *RootOptions) loadRules() (*rules.Rules, error) {
	if o.Rules == "" {
		return rules.Default(), nil
	}
	return rules.Load(o.Rules)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
