package service

import (
	"context"
	"io"
)

// ImageUpload is an uploaded file as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStorage keeps product images and resolves them to servable paths.
type ImageStorage interface {
	// Save validates and stores upload, returning its public path.
	Save(ctx context.Context, upload *ImageUpload) (string, error)

	// Delete removes a stored image by its public path. References that were
	// not produced by Save (external URLs) are ignored.
	Delete(ctx context.Context, ref string) error

	// Open streams a stored image by file name.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}
