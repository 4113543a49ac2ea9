package records

import "context"

// Gateway is the persistence boundary the store writes through. Load
// returns (nil, nil) when the target has never been saved; the store
// then starts from an empty aggregate. Implementations live under
// internal/platform/storage.
type Gateway interface {
	Load(ctx context.Context) (*AppData, error)
	Save(ctx context.Context, data *AppData) error
}
