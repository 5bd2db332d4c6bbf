package domain

// ClassificationRun summarizes one classification batch.
// Corresponds to classification_runs table in ClickHouse.
type ClassificationRun struct {
	RunID          string  // deterministic hash, see idhash.ComputeRunID
	ProgramID      string  // program the accounts were enumerated from
	Mode           RunMode // SCAN | WATCH
	StartedAt      int64   // ms
	FinishedAt     int64   // ms
	AccountsTotal  int     // accounts fetched
	Classified     int     // accounts filed into a bucket
	OwnerMismatch  int     // discarded: foreign owner
	Empty          int     // discarded: no data
	UnknownKey     int     // discarded: unknown discriminant
	Unbucketed     int     // decoded but not filed
	DecodeErrors   int     // discarded: malformed
	RejectedURI    int     // discarded: uri filter
	Metadata       int     // metadata-by-mint entries
	Editions       int     // edition entries
	MasterEditions int     // master edition entries
}

// Discarded returns the number of accounts not filed into any bucket.
func (r *ClassificationRun) Discarded() int {
	return r.AccountsTotal - r.Classified
}
