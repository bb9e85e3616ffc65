package blobs

import "context"

type BlobReader interface {
	// If no such object exists, Download should return an error for which errors.Is(err, os.ErrNotExist) is true.
	Download(ctx context.Context, key string, destPath string) error
}

type Blobstore interface {
	BlobReader
	// Upload uploads the file at sourcePath to the blobstore under the given object key.
	// If an object with the same key already exists, Upload should do nothing and return no error.
	Upload(ctx context.Context, sourcePath string, key string) error
}
