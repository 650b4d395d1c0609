package client

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bakerlane-api/internal/config"

	"github.com/google/uuid"
)

type StorageClient interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) (bool, error)
}

type localStorageClient struct {
	dir     string
	baseURL string
}

// NewLocalStorageClient stores objects on local disk and serves them under
// baseURL.
func NewLocalStorageClient(cfg *config.Storage) (StorageClient, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &localStorageClient{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (c *localStorageClient) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}

	return c.baseURL + "/" + name, nil
}

// Delete removes the object behind url. It reports false when the url is
// not one of ours or the object is already gone.
func (c *localStorageClient) Delete(ctx context.Context, url string) (bool, error) {
	if !strings.HasPrefix(url, c.baseURL+"/") {
		return false, nil
	}

	name := path.Base(url)
	err := os.Remove(filepath.Join(c.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove object: %w", err)
	}
	return true, nil
}
