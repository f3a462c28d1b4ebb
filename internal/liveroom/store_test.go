package liveroom

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := RoomKey(uuid.New())

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("missing key returned %+v, want nil", got)
	}

	in := &RoomState{Count: 200, TargetEnd: 170, DeliveredIDs: []string{"a"}}
	if err := store.Set(ctx, key, in); err != nil {
		t.Fatal(err)
	}

	got, err = store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Count != 200 || got.TargetEnd != 170 || len(got.DeliveredIDs) != 1 {
		t.Fatalf("got %+v, want stored state back", got)
	}

	if err := store.Clear(ctx, key); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("cleared key returned %+v, want nil", got)
	}
}

func TestMemoryStoreCopiesState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := RoomKey(uuid.New())

	in := &RoomState{Count: 50, DeliveredIDs: []string{"a", "b"}}
	if err := store.Set(ctx, key, in); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's slice must not leak into the stored copy.
	in.DeliveredIDs[0] = "mutated"
	in.Count = 1

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 50 || got.DeliveredIDs[0] != "a" {
		t.Fatalf("stored state was aliased: %+v", got)
	}

	// And mutating a returned copy must not corrupt the store.
	got.DeliveredIDs[1] = "mutated"
	again, err := store.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if again.DeliveredIDs[1] != "b" {
		t.Fatalf("returned state was aliased: %+v", again)
	}
}
