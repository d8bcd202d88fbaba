// Package cloudwriter buffers objects in memory and uploads them to cloud
// storage when they are closed.
package cloudwriter

import "context"

type CloudWriter interface {
	Write(data []byte) (int, error)
	// Close uploads the object.
	Close() error
	// Abort drops the buffered bytes without uploading them.
	Abort() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}
