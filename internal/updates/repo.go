package updates

import (
	"context"
	"errors"
)

// ErrNotFound is returned for lookups with no matching log rows.
var ErrNotFound = errors.New("not found")

// Repo stores the processed-update log.
type Repo interface {
	Create(ctx context.Context, entry UpdateLog) error
	ListByJob(ctx context.Context, jobNumber string, limit int) ([]UpdateLog, error)
}
