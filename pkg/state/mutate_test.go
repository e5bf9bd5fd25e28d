package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-formstate/pkg/state"
)

type mutateStore[T any] struct {
	loadSnapshot T
	loadMeta     state.Meta
	loadOK       bool
	loadErr      error

	saveCalls  int
	savedMeta  state.Meta
	savedValue T
	saveErr    error
}

func (s *mutateStore[T]) Load(_ context.Context, _ state.Ref) (T, state.Meta, bool, error) {
	var zero T
	if s.loadErr != nil {
		return zero, state.Meta{}, false, s.loadErr
	}
	return s.loadSnapshot, s.loadMeta, s.loadOK, nil
}

func (s *mutateStore[T]) Save(_ context.Context, _ state.Ref, snapshot T, meta state.Meta) (state.Meta, error) {
	s.saveCalls++
	s.savedMeta = meta
	s.savedValue = snapshot
	if s.saveErr != nil {
		return state.Meta{}, s.saveErr
	}
	meta.Version++
	return meta, nil
}

func TestMutateSavesAgainstLoadedVersion(t *testing.T) {
	store := &mutateStore[draft]{
		loadSnapshot: draft{Title: "Trip"},
		loadMeta:     state.Meta{Version: 3},
		loadOK:       true,
	}

	got, meta, err := state.Mutate[draft](context.Background(), store, state.Ref{FormID: "trip"}, func(d *draft) error {
		d.Tasks = append(d.Tasks, "Pack")
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if store.savedMeta.Version != 3 {
		t.Fatalf("expected save against version 3, got %d", store.savedMeta.Version)
	}
	if meta.Version != 4 {
		t.Fatalf("expected returned version 4, got %d", meta.Version)
	}
	if len(got.Tasks) != 1 || store.savedValue.Tasks[0] != "Pack" {
		t.Fatalf("unexpected mutated value %+v", got)
	}
}

func TestMutateStartsFromZeroWhenMissing(t *testing.T) {
	store := &mutateStore[draft]{loadSnapshot: draft{Title: "stale"}, loadMeta: state.Meta{Version: 9}}
	_, _, err := state.Mutate[draft](context.Background(), store, state.Ref{FormID: "trip"}, func(d *draft) error {
		if d.Title != "" {
			t.Fatalf("expected zero snapshot, got %+v", d)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if store.savedMeta.Version != 0 {
		t.Fatalf("missing snapshot should save against version 0, got %d", store.savedMeta.Version)
	}
}

func TestMutatorErrorDoesNotSave(t *testing.T) {
	boom := errors.New("title is required")
	store := &mutateStore[draft]{loadOK: true}
	_, _, err := state.Mutate[draft](context.Background(), store, state.Ref{FormID: "trip"}, func(*draft) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Fatalf("expected no save calls, got %d", store.saveCalls)
	}
}

func TestMutateWrapsStoreErrors(t *testing.T) {
	loadErr := errors.New("load failed")
	_, _, err := state.Mutate[draft](context.Background(), &mutateStore[draft]{loadErr: loadErr}, state.Ref{FormID: "trip"}, func(*draft) error { return nil })
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}

	_, _, err = state.Mutate[draft](context.Background(), &mutateStore[draft]{saveErr: state.ErrVersionMismatch}, state.Ref{FormID: "trip"}, func(*draft) error { return nil })
	if !errors.Is(err, state.ErrVersionMismatch) {
		t.Fatalf("expected wrapped version mismatch, got %v", err)
	}

	if _, _, err := state.Mutate[draft](context.Background(), nil, state.Ref{FormID: "trip"}, func(*draft) error { return nil }); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestMutateAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[draft]()
	ref := state.Ref{FormID: "trip"}
	for i := 0; i < 3; i++ {
		if _, _, err := state.Mutate[draft](ctx, store, ref, func(d *draft) error {
			d.Tasks = append(d.Tasks, "t")
			return nil
		}); err != nil {
			t.Fatalf("mutate %d: %v", i, err)
		}
	}
	snapshot, meta, _, _ := store.Load(ctx, ref)
	if len(snapshot.Tasks) != 3 || meta.Version != 3 {
		t.Fatalf("expected 3 tasks at version 3, got %d at %d", len(snapshot.Tasks), meta.Version)
	}
}

func TestMutateExpectVersion(t *testing.T) {
	store := &mutateStore[draft]{loadSnapshot: draft{Title: "Trip"}, loadMeta: state.Meta{Version: 2}, loadOK: true}
	called := false
	_, meta, err := state.Mutate[draft](context.Background(), store, state.Ref{FormID: "trip"}, func(*draft) error {
		called = true
		return nil
	}, state.ExpectVersion(1))
	if !errors.Is(err, state.ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	if called || store.saveCalls != 0 {
		t.Fatalf("expected no mutation or save, called=%v saves=%d", called, store.saveCalls)
	}
	if meta.Version != 2 {
		t.Fatalf("expected loaded version 2, got %d", meta.Version)
	}

	_, meta, err = state.Mutate[draft](context.Background(), store, state.Ref{FormID: "trip"}, func(d *draft) error {
		d.Title = "Trip 2"
		return nil
	}, state.ExpectVersion(2))
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if meta.Version != 3 || store.savedValue.Title != "Trip 2" {
		t.Fatalf("expected Trip 2 at version 3, got %q at %d", store.savedValue.Title, meta.Version)
	}

	missing := &mutateStore[draft]{}
	if _, _, err := state.Mutate[draft](context.Background(), missing, state.Ref{FormID: "trip"}, func(*draft) error { return nil }, state.ExpectVersion(0)); err != nil {
		t.Fatalf("missing snapshot is at version 0: %v", err)
	}
}
