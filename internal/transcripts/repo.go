package transcripts

import "context"

// Repo persists analyses by id. Implementations must be safe for concurrent use.
type Repo interface {
	// Save stores the analysis, replacing any record with the same id.
	Save(ctx context.Context, analysis Analysis) error
	// GetByID returns ErrNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (Analysis, error)
}
