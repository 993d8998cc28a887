package audit

// Version constants for the persisted snapshot shape and the engine.
const (
	// SchemaVersion is the snapshot record schema version.
	SchemaVersion = "1"

	// EngineVersion is the reconciliation engine version.
	EngineVersion = "0.3.0"
)
