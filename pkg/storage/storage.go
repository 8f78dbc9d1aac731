// Package storage archives immutable documents in Azure Blob Storage. An
// unconfigured archive is a valid deployment: every operation then fails with
// ErrDisabled and callers decide whether that matters.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
)

// System stores and retrieves blobs by slash-separated key.
type System interface {
	// Start ensures the container exists once the lifecycle starts.
	Start(lc *lifecycle.Coordinator) error
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download opens the blob at key. The caller closes the reader. A missing
	// blob yields ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New returns the Azure archive for cfg, or the disabled archive when cfg
// has no connection string.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled() {
		logger.Info("snapshot archive disabled")
		return disabled{}, nil
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage", "container", cfg.ContainerName),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		switch {
		case err == nil:
			a.logger.Info("storage container created")
		case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
			a.logger.Info("storage container ready")
		default:
			a.logger.Error("storage container initialization failed", "error", err)
		}
	})
	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (a *azure) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case err != nil:
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	return resp.Body, nil
}

type disabled struct{}

func (disabled) Start(*lifecycle.Coordinator) error { return nil }

func (disabled) Upload(context.Context, string, io.Reader, string) error { return ErrDisabled }

func (disabled) Download(context.Context, string) (io.ReadCloser, error) { return nil, ErrDisabled }

// validateKey accepts only clean relative keys, so "a/../b", "/a" and "a//b"
// are all rejected.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) || path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
