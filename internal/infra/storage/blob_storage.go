// Package storage keeps uploaded product images in a gocloud.dev bucket.
package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"pointshop/config"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/service"
	"pointshop/internal/util"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Bucket drivers selected by uploads.bucketUrl.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// sniffLen matches the amount of data mimetype inspects by default.
const sniffLen = 3072

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
}

var storedName = regexp.MustCompile(`^[0-9a-f]{32}\.[a-z]{3,4}$`)

type blobStorage struct {
	bucket   *blob.Bucket
	prefix   string
	maxBytes int64
	logger   *slog.Logger
}

// NewBlobStorage wraps bucket. Images are served under prefix.
func NewBlobStorage(bucket *blob.Bucket, prefix string, maxBytes int64, logger *slog.Logger) service.ImageStorage {
	return &blobStorage{
		bucket:   bucket,
		prefix:   strings.TrimRight(prefix, "/"),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (s *blobStorage) Save(ctx context.Context, upload *service.ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] {
		return "", domainerrors.ErrInvalidImage.WrapMessage("extension " + ext + " is not allowed")
	}
	if upload.ContentType != "" && !isImage(upload.ContentType) {
		return "", domainerrors.ErrInvalidImage.WrapMessage("declared content type " + upload.ContentType)
	}
	if s.maxBytes > 0 && upload.Size > s.maxBytes {
		return "", s.tooLarge()
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read upload")
	}
	header = header[:n]

	detected := mimetype.Detect(header)
	if !isImage(detected.String()) {
		return "", domainerrors.ErrInvalidImage.WrapMessage("detected content type " + detected.String())
	}

	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, name, &blob.WriterOptions{ContentType: detected.String()})
	if err != nil {
		return "", errors.Wrap(err, "failed to open blob writer")
	}

	body := io.MultiReader(bytes.NewReader(header), upload.Body)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}

	written, err := io.Copy(w, body)
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = s.tooLarge()
	}
	if err != nil {
		// Cancelling before Close discards the partial object.
		cancel()
		_ = w.Close()

		return "", err
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "failed to store image")
	}

	s.logger.Debug("Stored image", slog.String("name", name), slog.Int64("bytes", written))

	return s.prefix + "/" + name, nil
}

func (s *blobStorage) Delete(ctx context.Context, ref string) error {
	name, ok := s.nameOf(ref)
	if !ok {
		return nil
	}

	err := s.bucket.Delete(ctx, name)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}

	return errors.Wrap(err, "failed to delete image")
}

func (s *blobStorage) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !storedName.MatchString(name) {
		return nil, "", domainerrors.ErrNotFound
	}

	r, err := s.bucket.NewReader(ctx, name, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, "", domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open image")
	}

	return r, r.ContentType(), nil
}

// nameOf extracts the stored name from a public path produced by Save.
func (s *blobStorage) nameOf(ref string) (string, bool) {
	name, found := strings.CutPrefix(ref, s.prefix+"/")
	if !found || name != path.Base(name) || !storedName.MatchString(name) {
		return "", false
	}

	return name, true
}

func (s *blobStorage) tooLarge() error {
	return domainerrors.ErrImageTooLarge.WithDetails("maximum size is " + util.FormatBytes(s.maxBytes))
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// StorageParams holds dependencies for ImageStorage, injected by Fx
type StorageParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewImageStorage opens the configured bucket and closes it on shutdown.
func NewImageStorage(params StorageParams) (service.ImageStorage, error) {
	cfg := params.Config.Uploads

	bucket, err := blob.OpenBucket(params.Ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open upload bucket %q", cfg.BucketURL)
	}

	params.Logger.Info("Upload bucket opened", slog.String("url", cfg.BucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return NewBlobStorage(bucket, cfg.PublicPrefix, cfg.MaxBytes, params.Logger), nil
}

// Module provides the upload storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewImageStorage),
)
