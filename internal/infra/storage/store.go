// Package storage provides durable key/value blob stores.
package storage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Store persists opaque blobs by key.
type Store interface {
	// Get returns the blob for key. The bool is false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put replaces the blob for key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend types
const (
	TypeSQLite = "sqlite"
	TypeFile   = "file"
	TypeMemory = "memory"
)

// SQLiteSettings configures the sqlite backend.
type SQLiteSettings struct {
	Path string `mapstructure:"path" default:"previewbox.db" validate:"required"`
}

// FileSettings configures the file backend.
type FileSettings struct {
	Dir string `mapstructure:"dir" default:"data" validate:"required"`
}

// Open creates the store of the given type from free-form settings.
func Open(typ string, settings map[string]any) (Store, error) {
	zlog.Debug().Msgf("storage: opening backend: type=%s settings=%+v", typ, settings)

	switch typ {
	case TypeSQLite, "":
		var s SQLiteSettings
		if err := decodeSettings(settings, &s); err != nil {
			return nil, err
		}
		return NewSQLite(s.Path)

	case TypeFile:
		var s FileSettings
		if err := decodeSettings(settings, &s); err != nil {
			return nil, err
		}
		return NewFileStore(s.Dir)

	case TypeMemory:
		return NewMemoryStore(), nil

	default:
		return nil, errors.Newf("unsupported storage type: %s", typ)
	}
}

func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
