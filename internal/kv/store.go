// Package kv defines the string-keyed JSON persistence contract used by the
// rating cache, the comment log and the favorites set, together with the
// in-memory and Redis backends. The durable SQLite backend lives in the repo
// package.
//
// Backends only move raw bytes. Typed access goes through GetJSON and
// SetJSON, which own the JSON codec and the "never fail a read" rule: a
// missing key, a backend fault, or a malformed blob all yield the caller's
// fallback.
package kv

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned by backends that cannot be reached.
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is the persistence contract. Set overwrites the whole value for key
// and is atomic from the caller's perspective. Get reports found=false for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (raw []byte, found bool, err error)
	Set(ctx context.Context, key string, raw []byte) error
}

// GetJSON decodes the value stored under key into a T. It returns fallback
// when the key is missing, when the backend fails, or when the stored blob
// does not decode as a T. It never returns an error.
func GetJSON[T any](ctx context.Context, s Store, key string, fallback T) T {
	v, err := LoadJSON(ctx, s, key, fallback)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv get failed; using fallback")
		return fallback
	}
	return v
}

// LoadJSON is GetJSON for read-modify-write callers: a missing key or a
// malformed blob still yields fallback, but a backend failure is returned so
// the caller does not overwrite data it could not read.
func LoadJSON[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return fallback, err
	}
	if !found || len(raw) == 0 {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv value malformed; using fallback")
		return fallback, nil
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}
