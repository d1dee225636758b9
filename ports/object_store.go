package ports

import "context"

// ObjectStore issues storage keys and signed URLs for evidence binaries.
// The binary path itself is owned by the storage provider; this layer only
// records the key it hands back.
type ObjectStore interface {
	// NewStorageKey reserves a key under which the client may upload.
	NewStorageKey(ctx context.Context, caseID, filename string) (string, error)

	// SignedURL returns a short-lived download URL for a stored object.
	SignedURL(ctx context.Context, storageKey string) (string, error)
}
