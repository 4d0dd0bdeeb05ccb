// Package upload holds the storage collaborators a submitted avatar is handed
// to. The store is treated as opaque: callers provide a bucket, an object key
// and the raw bytes, and the store answers success or failure. Collision
// behavior for duplicate keys is whatever the backing store does.
package upload

import (
	"context"
	"io"
)

// Uploader writes one object into a destination bucket.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader) error
}
