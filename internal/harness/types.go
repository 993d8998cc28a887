package harness

import (
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/engine"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions (or the expected error) match.
	Pass bool `json:"pass"`

	// Run is the engine result. Nil when the run failed.
	Run *engine.Result `json:"run,omitempty"`

	// Snapshot is the saved snapshot when the scenario sets save.
	Snapshot *audit.Snapshot `json:"snapshot,omitempty"`

	// RunError is the fatal engine error, if any.
	RunError error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Items returns the run's audit items, or nil when the run failed.
func (r *Result) Items() []audit.AuditItem {
	if r.Run == nil {
		return nil
	}
	return r.Run.Items
}
