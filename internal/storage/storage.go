package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

const jsonContentType = "application/json"

// PlanArchive stores accepted plan snapshots as objects.
type PlanArchive interface {
	// PutJSON writes body under objectKey and returns the stored size.
	PutJSON(ctx context.Context, objectKey string, body []byte) (int64, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ArchiveKey builds <prefix>/<userID>/<date>/<runID>.json.
func ArchiveKey(prefix, userID, date, runID string) string {
	prefix = strings.Trim(prefix, "/")
	return path.Join(prefix, userID, date, runID+".json")
}
