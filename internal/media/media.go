// Package media stores complaint attachments on local disk or in an
// S3-compatible bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"campusvoice/backend/internal/config"

	"github.com/google/uuid"
)

// Store persists attachment bodies under generated keys.
type Store interface {
	Save(ctx context.Context, filename string, body io.Reader, contentType string) (key string, err error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ObjectKey builds the key a new attachment is stored under. Only the
// extension of the client supplied name is kept.
func ObjectKey(filename string) string {
	return "complaints/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// New builds the Store selected by cfg.Backend.
func New(cfg config.Media) (Store, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.Dir, cfg.URLPrefix), nil
	case "s3":
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("media: unknown backend %q", cfg.Backend)
	}
}
