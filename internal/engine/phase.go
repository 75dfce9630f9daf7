package engine

// Phase tracks the orchestrator's progress through a run. Apart from
// Failed, which is reachable only when a connection cannot be opened,
// the machine always moves forward: per-table and per-row errors are
// absorbed into the report and never stop the run.
type Phase string

const (
	PhaseInit                    Phase = "init"
	PhaseSchemaEnsured           Phase = "schema_ensured"
	PhaseSourceTablesDetected    Phase = "source_tables_detected"
	PhaseCanonicalTablesMigrated Phase = "canonical_tables_migrated"
	PhaseLegacyTablesMigrated    Phase = "legacy_tables_migrated"
	PhaseVerified                Phase = "verified"
	PhaseDone                    Phase = "done"
	PhaseFailed                  Phase = "failed"
)
