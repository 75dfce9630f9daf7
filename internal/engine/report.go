package engine

// RowError records a single skipped row: its offset in source order and
// the error that caused the skip.
type RowError struct {
	Index int
	Err   error
}

// TableResult is the per-table outcome of one migration attempt.
type TableResult struct {
	Table     string
	Canonical bool
	Succeeded int
	Failed    int
	RowErrors []RowError

	// Skipped marks a table-scoped failure (introspection or read error);
	// the rest of the run continued without it.
	Skipped    bool
	SkipReason string
}

func (r *TableResult) fail(index int, err error) {
	r.Failed++
	r.RowErrors = append(r.RowErrors, RowError{Index: index, Err: err})
}

// VerificationRow compares the final row counts of one table. A count of
// -1 means the count query itself failed. Mismatches are warnings, never
// failures.
type VerificationRow struct {
	Table       string
	SourceCount int64
	TargetCount int64
}

func (v VerificationRow) Match() bool {
	return v.SourceCount >= 0 && v.SourceCount == v.TargetCount
}

// Report aggregates every table's outcome plus the final verification
// pass. It is the only artifact a run produces besides log lines.
type Report struct {
	Tables       []TableResult
	Verification []VerificationRow
}

func (r *Report) TotalSucceeded() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Succeeded
	}
	return n
}

func (r *Report) TotalFailed() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Failed
	}
	return n
}
