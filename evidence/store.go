// Package evidence stores the screenshots taken around scenario steps and hands the step
// records a key to find them again.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no evidence is stored under a key.
	ErrNotFound = errors.New("evidence not found")

	// ErrInvalidKey is returned for empty, absolute or escaping keys.
	ErrInvalidKey = errors.New("invalid evidence key")

	// ErrUnsupportedStore is returned by NewStore for an unknown store type.
	ErrUnsupportedStore = errors.New("unsupported evidence store type")
)

// Store keeps evidence blobs under slash separated keys.
type Store interface {
	// Put stores the content of r under key, replacing what was there.
	Put(ctx context.Context, key string, r io.Reader) error

	// Open returns the content stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether key holds evidence.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a location a report reader can fetch the evidence from.
	URL(ctx context.Context, key string) (string, error)
}

// Config selects and configures a Store.
type Config struct {
	Type string

	// local
	BaseDir string

	// s3
	Bucket        string
	Region        string
	Endpoint      string
	PresignExpiry time.Duration
}

// NewStore creates the Store named by cfg.Type: "local" or "s3".
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "local", "":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base dir is required for local evidence store")
		}
		return NewLocalStore(cfg.BaseDir)

	case "s3":
		s, err := NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 evidence store: %w", err)
		}
		if cfg.PresignExpiry > 0 {
			s.presignExpiry = cfg.PresignExpiry
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, cfg.Type)
	}
}

// cleanKey normalizes key and rejects keys leaving the store root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: absolute keys not allowed", ErrInvalidKey)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: key escapes the store root", ErrInvalidKey)
	}
	return cleaned, nil
}
