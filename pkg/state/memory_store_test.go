package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-formstate/pkg/state"
)

type draft struct {
	Title string
	Tasks []string
}

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name    string
		ref     state.Ref
		want    string
		wantErr bool
	}{
		{name: "form only", ref: state.Ref{FormID: "trip"}, want: "form/trip"},
		{name: "form and session", ref: state.Ref{FormID: "trip", SessionID: "s1"}, want: "form/trip/session/s1"},
		{name: "trimmed", ref: state.Ref{FormID: " trip ", SessionID: " "}, want: "form/trip"},
		{name: "missing form", ref: state.Ref{SessionID: "s1"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got identifier %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("identifier: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[draft]()
	ref := state.Ref{FormID: "trip", SessionID: "s1"}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%t err=%v", ok, err)
	}

	meta, err := store.Save(ctx, ref, draft{Title: "Trip"}, state.Meta{Extra: map[string]string{"by": "test"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.Version != 1 {
		t.Fatalf("expected version 1, got %d", meta.Version)
	}
	if meta.SnapshotID == "" || meta.UpdatedAt.IsZero() {
		t.Fatalf("expected snapshot id and timestamp, got %+v", meta)
	}

	snapshot, loaded, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if snapshot.Title != "Trip" {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if loaded.SnapshotID != meta.SnapshotID || loaded.Extra["by"] != "test" {
		t.Fatalf("unexpected loaded meta %+v", loaded)
	}

	loaded.Extra["by"] = "changed"
	_, again, _, _ := store.Load(ctx, ref)
	if again.Extra["by"] != "test" {
		t.Fatalf("stored meta should not alias loaded copies")
	}

	second, err := store.Save(ctx, ref, draft{Title: "Trip 2"}, loaded)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Version != 2 || second.SnapshotID == meta.SnapshotID {
		t.Fatalf("expected bumped version and new snapshot id, got %+v", second)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}
}

func TestMemoryStoreRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[draft]()
	ref := state.Ref{FormID: "trip"}

	if _, err := store.Save(ctx, ref, draft{Title: "a"}, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := store.Save(ctx, ref, draft{Title: "b"}, state.Meta{})
	if !errors.Is(err, state.ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	snapshot, _, _, _ := store.Load(ctx, ref)
	if snapshot.Title != "a" {
		t.Fatalf("rejected save must not change the snapshot, got %+v", snapshot)
	}
}

func TestMemoryStoreInvalidRef(t *testing.T) {
	store := state.NewMemoryStore[draft]()
	if _, err := store.Save(context.Background(), state.Ref{}, draft{}, state.Meta{}); err == nil {
		t.Fatalf("expected error for empty ref")
	}
	if _, _, _, err := store.Load(context.Background(), state.Ref{}); err == nil {
		t.Fatalf("expected error for empty ref")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[draft]()
	ref := state.Ref{FormID: "trip"}
	if _, err := store.Save(ctx, ref, draft{}, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, ok, _ := store.Load(ctx, ref); ok {
		t.Fatalf("expected snapshot to be gone")
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}
