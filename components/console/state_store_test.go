package console

import (
	"context"
	"testing"

	"github.com/goliatone/go-admin-console/components/listing"
)

func TestInMemoryStateStoreRoundTrip(t *testing.T) {
	store := NewInMemoryStateStore()
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u1"}

	state := listing.NewState(20).WithFilter("status", "active")
	if err := store.SaveState(ctx, viewer, ScreenUsers, state); err != nil {
		t.Fatalf("SaveState returned error: %v", err)
	}
	state.Criteria.Filters["status"] = "mutated"

	got, ok, err := store.LoadState(ctx, viewer, ScreenUsers)
	if err != nil || !ok {
		t.Fatalf("expected stored state, ok=%v err=%v", ok, err)
	}
	if got.Criteria.Filters["status"] != "active" {
		t.Fatalf("stored state shares filters with caller: %v", got.Criteria.Filters)
	}
	if got.Pagination.Limit != 20 {
		t.Fatalf("expected limit 20, got %d", got.Pagination.Limit)
	}

	if _, ok, _ := store.LoadState(ctx, viewer, ScreenProducts); ok {
		t.Fatalf("expected no state for another screen")
	}
	if _, ok, _ := store.LoadState(ctx, ViewerContext{UserID: "u2"}, ScreenUsers); ok {
		t.Fatalf("expected no state for another viewer")
	}

	if err := store.DeleteState(ctx, viewer, ScreenUsers); err != nil {
		t.Fatalf("DeleteState returned error: %v", err)
	}
	if _, ok, _ := store.LoadState(ctx, viewer, ScreenUsers); ok {
		t.Fatalf("expected state removed")
	}
}

func TestInMemoryStateStoreRejectsAnonymous(t *testing.T) {
	store := NewInMemoryStateStore()
	if err := store.SaveState(context.Background(), ViewerContext{}, ScreenUsers, listing.NewState(10)); err == nil {
		t.Fatalf("expected error saving without user id")
	}
}
