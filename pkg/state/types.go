package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrVersionMismatch reports a save against a snapshot that changed since it
// was loaded.
var ErrVersionMismatch = errors.New("state: version mismatch")

// Ref identifies one persisted snapshot: a form, optionally narrowed to one
// session of that form.
type Ref struct {
	FormID    string
	SessionID string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	// Version is the number of saves applied to the snapshot, 0 when it has
	// never been saved.
	Version    int64             `json:"version"`
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference. Save must fail with
// ErrVersionMismatch when meta.Version is not the stored version.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Mutator changes a loaded snapshot in place.
type Mutator[T any] func(*T) error

// MutateOption adjusts a single Mutate call.
type MutateOption func(*mutateConfig)

type mutateConfig struct {
	expect    int64
	hasExpect bool
}

// ExpectVersion makes Mutate fail with ErrVersionMismatch, before fn runs, when
// the loaded snapshot is not at version. Callers that cache a snapshot use it
// to detect writes made since their last save.
func ExpectVersion(version int64) MutateOption {
	return func(cfg *mutateConfig) {
		cfg.expect = version
		cfg.hasExpect = true
	}
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	form := strings.TrimSpace(r.FormID)
	if form == "" {
		return "", fmt.Errorf("state: form id is required")
	}
	session := strings.TrimSpace(r.SessionID)
	if session == "" {
		return fmt.Sprintf("form/%s", form), nil
	}
	return fmt.Sprintf("form/%s/session/%s", form, session), nil
}

// Mutate loads the snapshot for ref, applies fn, and saves the result against
// the loaded version. A missing snapshot starts from the zero value at
// version 0.
func Mutate[T any](ctx context.Context, store Store[T], ref Ref, fn Mutator[T], opts ...MutateOption) (T, Meta, error) {
	var zero T
	if store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load form %q: %w", ref.FormID, err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}

	var cfg mutateConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.hasExpect && loadedMeta.Version != cfg.expect {
		return zero, loadedMeta, fmt.Errorf("%w: form %q expected version %d, got %d", ErrVersionMismatch, ref.FormID, cfg.expect, loadedMeta.Version)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}

	savedMeta, err := store.Save(ctx, ref, snapshot, loadedMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save form %q: %w", ref.FormID, err)
	}
	return snapshot, savedMeta, nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
