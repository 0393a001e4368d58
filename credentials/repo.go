package credentials

import "context"

// Store persists credential records. Implementations return errors wrapping ErrNotFound when
// no record exists and ErrStoreUnavailable for every infrastructure failure.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
}
