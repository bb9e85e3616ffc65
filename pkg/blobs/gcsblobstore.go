package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// GCSBlobstore moves checkpoint blobs to and from a GCS bucket.
type GCSBlobstore struct {
	Bucket string
}

var _ Blobstore = (*GCSBlobstore)(nil)

func (j *GCSBlobstore) Upload(ctx context.Context, sourcePath string, key string) error {
	log := klog.FromContext(ctx)

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	gcsURL := "gs://" + j.Bucket + "/" + key

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	obj := client.Bucket(j.Bucket).Object(key)
	objAttrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			objAttrs = nil
			log.Info("object not found in GCS", "url", gcsURL)
			// Fallthrough to upload object
		} else {
			return fmt.Errorf("getting object attributes for %q: %w", gcsURL, err)
		}
	}
	if objAttrs != nil {
		log.Info("object already exists in GCS", "url", gcsURL)
		return nil
	}

	log.Info("uploading checkpoint to GCS", "source", sourcePath, "destination", gcsURL)

	startedAt := time.Now()
	w := obj.NewWriter(ctx)
	n, err := io.Copy(w, src)
	if err != nil {
		return fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}

	log.Info("uploaded checkpoint to GCS", "url", gcsURL, "bytes", n, "duration", time.Since(startedAt))

	return nil
}

func (j *GCSBlobstore) Download(ctx context.Context, key string, destinationPath string) error {
	log := klog.FromContext(ctx)

	gcsURL := "gs://" + j.Bucket + "/" + key

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	log.Info("downloading checkpoint from GCS", "source", gcsURL, "destination", destinationPath)

	startedAt := time.Now()
	r, err := client.Bucket(j.Bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("object %q: %w", gcsURL, os.ErrNotExist)
		}
		return fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer r.Close()

	n, err := writeToFile(ctx, r, destinationPath)
	if err != nil {
		return fmt.Errorf("downloading from GCS: %w", err)
	}

	log.Info("downloaded checkpoint from GCS", "source", gcsURL, "destination", destinationPath, "bytes", n, "duration", time.Since(startedAt))

	return nil
}
