// AngelaMos | 2026
// filesystem.go

package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

// Filesystem stores blobs as flat files sharded by the first two id bytes
// to keep directory fan-out bounded.
type Filesystem struct {
	baseDir string
	cfg     config.BlobConfig
}

func NewFilesystem(cfg config.BlobConfig) (*Filesystem, error) {
	//nolint:gosec // 0755 directory permissions are intentional
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	return &Filesystem{baseDir: cfg.Dir, cfg: cfg}, nil
}

func (f *Filesystem) Store(
	_ context.Context,
	data []byte,
	kind Kind,
) (string, error) {
	if err := validate(data, kind, f.cfg); err != nil {
		return "", err
	}

	id := uuid.New().String()
	path := f.path(id)

	//nolint:gosec // 0755 directory permissions are intentional
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create shard directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	return id, nil
}

func (f *Filesystem) Retrieve(_ context.Context, id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("retrieve blob: %w", core.ErrNotFound)
	}

	//nolint:gosec // G304: path is derived from a server-generated uuid
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("retrieve blob: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("retrieve blob: %w", err)
	}

	return data, nil
}

func (f *Filesystem) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete blob: %w", core.ErrNotFound)
	}

	if err := os.Remove(f.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete blob: %w", core.ErrNotFound)
		}
		return fmt.Errorf("delete blob: %w", err)
	}

	return nil
}

func (f *Filesystem) Ping(_ context.Context) error {
	if _, err := os.Stat(f.baseDir); err != nil {
		return fmt.Errorf("blob directory unavailable: %w", err)
	}
	return nil
}

func (f *Filesystem) path(id string) string {
	shard := "00"
	if len(id) >= 2 {
		shard = id[:2]
	}
	return filepath.Join(f.baseDir, shard, id)
}
