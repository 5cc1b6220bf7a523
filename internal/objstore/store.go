package objstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the object does not exist. Permanent: retrying the
	// same path will not make it appear.
	ErrNotFound = errors.New("object not found")
)

// Store is the read side of bill storage consumed by the worker. The upload
// surface writes objects; the worker only fetches them back.
type Store interface {
	// Fetch returns the object's bytes, ErrNotFound if it does not exist,
	// or a transport error for transient I/O failures.
	Fetch(ctx context.Context, path string) ([]byte, error)
}
