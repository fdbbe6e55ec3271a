// Package archive keeps a copy of every imported statement file.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/tesoro-dev/tesoro/internal/config"
)

// Archiver stores a file under name and returns where it ended up.
type Archiver interface {
	Archive(ctx context.Context, name string, r io.Reader) (string, error)
}

// New returns the archiver configured in cfg: Google Cloud Storage when a
// bucket is set, a local directory when a dir is set, nothing otherwise.
func New(ctx context.Context, cfg config.ArchiveConfig) (Archiver, error) {
	switch {
	case cfg.GCSBucket != "":
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	case cfg.Dir != "":
		return Dir(cfg.Dir), nil
	default:
		return Nop{}, nil
	}
}

// Dir archives into a local directory tree.
type Dir string

// Archive writes r to dir/name, creating parent directories as needed.
func (d Dir) Archive(ctx context.Context, name string, r io.Reader) (string, error) {
	dst := filepath.Join(string(d), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", dst, err)
	}
	return dst, nil
}

// Nop discards files.
type Nop struct{}

// Archive reads nothing and returns an empty location.
func (Nop) Archive(context.Context, string, io.Reader) (string, error) {
	return "", nil
}

// GCS archives into a Google Cloud Storage bucket. It uses Application
// Default Credentials.
type GCS struct {
	client  *storage.Client
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewGCS creates a GCS archiver. Close releases the client.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), timeout: 2 * time.Minute}, nil
}

// ObjectName returns the object key for name.
func (g *GCS) ObjectName(name string) string {
	if g.prefix == "" {
		return name
	}
	return path.Join(g.prefix, name)
}

// Archive uploads r and returns its gs:// URI.
func (g *GCS) Archive(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	object := g.ObjectName(name)
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return URI(g.bucket, object), nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// URI formats a gs:// location.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// ParseURI splits a gs:// location into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
