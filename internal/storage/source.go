package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound reports that the referenced file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// FileSource opens book files by the reference stored on the book
// record. The reference is a relative path for the local source and an
// object key for the MinIO source.
type FileSource interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, int64, error)
}

// LocalSource serves book files from a base directory on disk.
type LocalSource struct {
	basePath string
}

// NewLocalSource creates the base directory if missing.
func NewLocalSource(basePath string) (*LocalSource, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalSource{basePath: basePath}, nil
}

// Open streams a file under the base directory. References that
// escape the base directory are rejected.
func (l *LocalSource) Open(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	clean, err := safeRef(ref)
	if err != nil {
		return nil, 0, err
	}
	target := filepath.Join(l.basePath, filepath.FromSlash(clean))
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, ErrNotFound
	}
	return f, info.Size(), nil
}

func safeRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "/")
	if ref == "" {
		return "", ErrNotFound
	}
	clean := path.Clean(ref)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("storage: invalid file reference %q", ref)
	}
	return clean, nil
}

// MinioSource serves book files from a MinIO/S3 compatible bucket.
type MinioSource struct {
	client *minio.Client
	bucket string
}

// NewMinioSource connects to MinIO and checks the bucket exists.
func NewMinioSource(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioSource, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}
	return &MinioSource{client: client, bucket: bucket}, nil
}

// Open streams an object from the bucket.
func (m *MinioSource) Open(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	key, err := safeRef(ref)
	if err != nil {
		return nil, 0, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("stat object: %w", err)
	}
	return obj, info.Size, nil
}
