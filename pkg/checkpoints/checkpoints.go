// Package checkpoints reads and writes opaque model checkpoints, finds
// the most recent checkpoint in a result-directory tree, and recovers
// the configuration of a previous training run.
//
// Checkpoint contents are never interpreted here; they are byte blobs
// moved between local paths and remote URLs.
package checkpoints

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/styleml/gantrain/pkg/blobs"
)

// CacheDirName is where remote checkpoint reads are cached locally.
const CacheDirName = ".stylegan2-cache"

// IsURL reports whether fileOrURL names a remote location rather than a
// local path.
func IsURL(fileOrURL string) bool {
	return strings.HasPrefix(fileOrURL, "http://") ||
		strings.HasPrefix(fileOrURL, "https://") ||
		strings.HasPrefix(fileOrURL, "gs://")
}

// Open opens a checkpoint from a local path or a remote URL. Remote
// content is downloaded once into CacheDirName and opened from there;
// later opens of the same URL hit the cache.
func Open(ctx context.Context, fileOrURL string) (io.ReadCloser, error) {
	if !IsURL(fileOrURL) {
		f, err := os.Open(fileOrURL)
		if err != nil {
			return nil, errors.Wrapf(err, "opening checkpoint %q", fileOrURL)
		}
		return f, nil
	}
	cached, err := fetchToCache(ctx, fileOrURL)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(cached)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cached checkpoint %q", cached)
	}
	return f, nil
}

func fetchToCache(ctx context.Context, rawURL string) (string, error) {
	log := klog.FromContext(ctx)

	cachePath := filepath.Join(CacheDirName, cacheName(rawURL))
	if _, err := os.Stat(cachePath); err == nil {
		log.Info("using cached checkpoint", "url", rawURL, "path", cachePath)
		return cachePath, nil
	}
	if err := os.MkdirAll(CacheDirName, 0755); err != nil {
		return "", errors.Wrapf(err, "creating cache directory %q", CacheDirName)
	}

	if strings.HasPrefix(rawURL, "gs://") {
		bucket, key, err := splitGCSURL(rawURL)
		if err != nil {
			return "", err
		}
		store := &blobs.GCSBlobstore{Bucket: bucket}
		if err := store.Download(ctx, key, cachePath); err != nil {
			return "", err
		}
		return cachePath, nil
	}

	if err := blobs.DownloadURL(ctx, rawURL, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// cacheName keys cache entries by URL hash, keeping the basename for
// legibility.
func cacheName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	base := "checkpoint"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "." && b != "/" {
			base = b
		}
	}
	return fmt.Sprintf("%x-%s", sum[:8], base)
}

func splitGCSURL(rawURL string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(rawURL, "gs://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", errors.Errorf("malformed GCS URL %q", rawURL)
	}
	return bucket, key, nil
}

// LoadBlob reads a whole checkpoint from a local path or remote URL.
func LoadBlob(ctx context.Context, fileOrURL string) ([]byte, error) {
	r, err := Open(ctx, fileOrURL)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading checkpoint %q", fileOrURL)
	}
	return data, nil
}

// SaveBlob writes checkpoint bytes to path. The file appears
// atomically: a temp file in the destination directory is renamed into
// place only after a successful write.
func SaveBlob(path string, data []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, "checkpoint")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return errors.Wrapf(err, "writing checkpoint %q", path)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tempFile.Name(), path); err != nil {
		os.Remove(tempFile.Name())
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}
