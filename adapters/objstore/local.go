package objstore

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"courtflow/ports"

	"github.com/google/uuid"
)

// LocalObjectStore is the development stand-in for the real binary storage
// provider. It only issues keys and unauthenticated URLs; the production
// deployment swaps in the provider's signed-URL implementation behind the
// same port.
type LocalObjectStore struct {
	baseURL string
	ttl     time.Duration
}

// NewLocalObjectStore creates an object store rooted at baseURL.
func NewLocalObjectStore(baseURL string) *LocalObjectStore {
	return &LocalObjectStore{baseURL: baseURL, ttl: 15 * time.Minute}
}

var _ ports.ObjectStore = (*LocalObjectStore)(nil)

// NewStorageKey reserves a key under which the client may upload.
func (s *LocalObjectStore) NewStorageKey(_ context.Context, caseID, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	return path.Join("cases", caseID, uuid.NewString()+"-"+path.Base(filename)), nil
}

// SignedURL returns a time-limited download URL for a stored object.
func (s *LocalObjectStore) SignedURL(_ context.Context, storageKey string) (string, error) {
	expires := time.Now().Add(s.ttl).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", s.baseURL, url.PathEscape(storageKey), expires), nil
}
