// Package upload copies run archives to Google Cloud Storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// Uploader stores the content of r under object.
type Uploader interface {
	Upload(ctx context.Context, object string, r io.Reader) error
}

// GCS uploads into one bucket.
type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCS creates a client with the default application credentials.
func NewGCS(ctx context.Context, bucket string, logger *zap.Logger) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload: creating storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, logger: logger}, nil
}

func (g *GCS) Upload(ctx context.Context, object string, r io.Reader) error {
	start := time.Now()
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/gzip"

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return fmt.Errorf("upload: write error: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload: close error: %w", err)
	}
	g.logger.Info("archive uploaded",
		zap.String("bucket", g.bucket),
		zap.String("object", object),
		zap.Int64("bytes", n),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName is where the file of a run is stored.
func ObjectName(prefix, runID, file string) string {
	return path.Join(prefix, runID, filepath.Base(file))
}

// File uploads the file at name with u.
func File(ctx context.Context, u Uploader, object, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return u.Upload(ctx, object, f)
}
