// Package images stores proof-image blobs and derives their display URLs.
package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyImage is returned when a submission carries no image payload.
var ErrEmptyImage = errors.New("empty image payload")

// Store persists an opaque image blob and returns (key, displayURL).
// The URL is derived from the storage key; durability of the URL is a
// property of the chosen backend, not of the ledger.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (key string, url string, err error)
}

// NewKey generates a storage key for an uploaded blob.
func NewKey() string {
	return fmt.Sprintf("proofs/%s", uuid.NewString())
}
