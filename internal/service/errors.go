package service

import "errors"

// Pipeline-stage failures. Per-token send failures are never errors; they
// are counted into the job result instead.
var (
	// ErrResolution wraps storage-layer failures during target lookup.
	// Aborts the current job only.
	ErrResolution = errors.New("target resolution failed")

	// ErrLedger wraps failures to write job state. A job stuck in
	// processing has no automatic reconciliation, so these are logged
	// loudly as an operational alert condition.
	ErrLedger = errors.New("job ledger write failed")
)
