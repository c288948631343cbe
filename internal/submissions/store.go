package submissions

import "context"

// Store persists submissions in arrival order and enforces the retention
// cap at write time: Append inserts the record and discards anything that
// falls outside the cap in the same serialized operation, so no backend
// ever holds more than its configured cap.
type Store interface {
	// Append inserts one accepted submission and trims the store to its
	// retention cap.
	Append(ctx context.Context, sub Submission) error

	// Recent returns up to limit submissions, newest first. A limit of
	// zero or less falls back to DefaultRecentLimit.
	Recent(ctx context.Context, limit int) ([]Submission, error)

	// Close releases any resources held by the store.
	Close() error
}
