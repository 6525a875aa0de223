// Package attachments stores receipt images in a Google Cloud Storage
// bucket. Transactions keep their inline base64 copy; the bucket copy is
// what the receipt-scan worker reads.
package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/google/uuid"
)

// Service provides an interface for receipt object storage operations.
// The interface enables mocking in handler and worker tests.
type Service interface {
	// Upload stores the bytes and returns the gs:// URI of the new object.
	Upload(ctx context.Context, userID, filename string, data []byte) (string, error)

	// Fetch downloads the object bytes for the given gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GCSService is the concrete Service backed by Google Cloud Storage.
// It assumes Application Default Credentials are configured.
type GCSService struct {
	bucket string
}

// NewGCSService reads the bucket name from FINANCEPRO_BUCKET.
func NewGCSService() (*GCSService, error) {
	bucket := os.Getenv("FINANCEPRO_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("FINANCEPRO_BUCKET is not set")
	}
	return &GCSService{bucket: bucket}, nil
}

// Upload writes the bytes under receipts/<userID>/<uuid>-<filename>.
func (s *GCSService) Upload(ctx context.Context, userID, filename string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	objectName := fmt.Sprintf("receipts/%s/%s-%s", userID, uuid.New().String(), path.Base(filename))

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Fetch downloads the object bytes for the given gs:// URI.
func (s *GCSService) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucketName, objectPath, err := SplitURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading bytes: %w", err)
	}
	return data, nil
}

// SplitURI splits a gs://bucket/path URI into bucket and object path.
func SplitURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename extracts the object's base filename from a gs:// URI,
// e.g. "gs://bucket/folder/recibo.jpg" yields "recibo.jpg".
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
