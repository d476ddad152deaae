// AngelaMos | 2026
// blob.go

// Package blob stores opaque binary payloads (profile pictures, submitted
// documents) outside the relational schema, referenced by generated id.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

type Kind int

const (
	// KindImage accepts PNG only, matching the single-format profile
	// picture policy.
	KindImage Kind = iota
	KindDocument
)

type Store interface {
	Store(ctx context.Context, data []byte, kind Kind) (string, error)
	Retrieve(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// New builds the configured blob backend.
func New(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Backend {
	case "filesystem":
		return NewFilesystem(cfg)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

// validate rejects payloads before they hit storage. Images must decode as
// PNG within the configured pixel bounds; documents only have the size cap.
func validate(data []byte, kind Kind, cfg config.BlobConfig) error {
	maxBytes := cfg.MaxUploadMB * 1024 * 1024
	if maxBytes > 0 && len(data) > maxBytes {
		return fmt.Errorf(
			"payload exceeds %dMB: %w",
			cfg.MaxUploadMB,
			core.ErrInvalidInput,
		)
	}

	if len(data) == 0 {
		return fmt.Errorf("empty payload: %w", core.ErrInvalidInput)
	}

	if kind != KindImage {
		return nil
	}

	imgCfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not a PNG: %w", core.ErrInvalidFormat)
	}

	if cfg.MaxImageEdge > 0 &&
		(imgCfg.Width > cfg.MaxImageEdge || imgCfg.Height > cfg.MaxImageEdge) {
		return fmt.Errorf(
			"image exceeds %dpx: %w",
			cfg.MaxImageEdge,
			core.ErrInvalidFormat,
		)
	}

	return nil
}
