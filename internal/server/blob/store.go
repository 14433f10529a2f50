// Package blob stores avatar assets in object storage. Write-only in this
// service.
package blob

import "context"

// Store writes an object under a caller-supplied key and returns a public
// locator for it. Keys follow the {identity}/{timestamp}-{filename}
// convention; there is no uniqueness check.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
