package blob

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// UploadPrefix is the key prefix every archived upload is stored under.
const UploadPrefix = "uploads/"

// Archive keeps a copy of every bulk upload that was committed.
type Archive struct {
	store Store
	now   func() time.Time
}

// NewArchive wraps store as an upload archive.
func NewArchive(store Store) *Archive {
	return &Archive{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Store returns the backing blob store.
func (a *Archive) Store() Store { return a.store }

// ArchiveUpload stores content under uploads/<entity>/<timestamp>-<uuid>.csv and returns the key.
func (a *Archive) ArchiveUpload(ctx context.Context, entity string, content []byte, actor string, count int) (string, error) {
	key := fmt.Sprintf("%s%s/%s-%s.csv", UploadPrefix, entity, a.now().Format("20060102T150405Z"), uuid.NewString())
	_, err := a.store.Put(ctx, key, bytes.NewReader(content), PutOptions{
		ContentType: "text/csv",
		Metadata: map[string]string{
			"actor": actor,
			"count": strconv.Itoa(count),
		},
	})
	if err != nil {
		return "", fmt.Errorf("archive upload: %w", err)
	}
	return key, nil
}

// Uploads lists archived uploads for entity, or every upload when entity is empty.
func (a *Archive) Uploads(ctx context.Context, entity string) ([]Info, error) {
	prefix := UploadPrefix
	if entity != "" {
		prefix += entity + "/"
	}
	return a.store.List(ctx, prefix)
}
