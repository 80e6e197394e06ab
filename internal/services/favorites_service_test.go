package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

func seedFavorites(t *testing.T, s kv.Store, ids ...string) {
	t.Helper()
	if err := kv.SetJSON(context.Background(), s, favoritesKey, ids); err != nil {
		t.Fatalf("seed favorites: %v", err)
	}
}

func TestFavorites_ToggleScenario(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	seedFavorites(t, store, "p1", "p2")
	svc := NewFavoritesService(store)

	got, err := svc.Toggle(ctx, "p1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p2"}) {
		t.Fatalf("after first toggle = %v; want [p2]", got)
	}

	got, err = svc.Toggle(ctx, "p1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p2", "p1"}) {
		t.Fatalf("after second toggle = %v; want [p2 p1]", got)
	}
	if !reflect.DeepEqual(svc.List(ctx), got) {
		t.Fatalf("persisted set %v differs from returned %v", svc.List(ctx), got)
	}
}

func TestFavorites_DoubleToggleRestoresMembership(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(kv.NewMemory())

	for _, id := range []string{"a", "b"} {
		before := svc.IsFavorite(ctx, id)
		if _, err := svc.Toggle(ctx, id); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if svc.IsFavorite(ctx, id) == before {
			t.Fatalf("first toggle of %q did not flip membership", id)
		}
		if _, err := svc.Toggle(ctx, id); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if svc.IsFavorite(ctx, id) != before {
			t.Fatalf("double toggle of %q did not restore membership", id)
		}
	}
}

func TestFavorites_DeduplicatesStoredSet(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	seedFavorites(t, store, "p1", "p2", "p1", "p3", "p2")
	svc := NewFavoritesService(store)

	if got := svc.List(ctx); !reflect.DeepEqual(got, []string{"p1", "p2", "p3"}) {
		t.Fatalf("List = %v; want [p1 p2 p3]", got)
	}
	// Removing p1 removes every stored copy.
	got, err := svc.Toggle(ctx, "p1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p2", "p3"}) {
		t.Fatalf("Toggle = %v; want [p2 p3]", got)
	}
}

func TestFavorites_MalformedOrUnreadableIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	store.Put(favoritesKey, []byte(`"p1"`))
	svc := NewFavoritesService(store)
	if got := svc.List(ctx); len(got) != 0 {
		t.Fatalf("List malformed = %v; want empty", got)
	}

	store.FailGets = true
	if svc.IsFavorite(ctx, "p1") {
		t.Fatalf("IsFavorite on failing store should be false")
	}
	if _, err := svc.Toggle(ctx, "p1"); !errors.Is(err, ErrStorage) {
		t.Fatalf("Toggle on failing reads: expected ErrStorage, got %v", err)
	}
}

func TestFavorites_ToggleWriteFailureKeepsPrevious(t *testing.T) {
	store := kv.NewMemory()
	seedFavorites(t, store, "p1")
	store.FailSets = true
	svc := NewFavoritesService(store)

	got, err := svc.Toggle(context.Background(), "p2")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !reflect.DeepEqual(got, []string{"p1"}) {
		t.Fatalf("on failure Toggle returned %v; want previous [p1]", got)
	}
}

func TestFavorites_ToggleRejectsEmptyID(t *testing.T) {
	if _, err := NewFavoritesService(kv.NewMemory()).Toggle(context.Background(), " "); !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("expected ErrInvalidListing, got %v", err)
	}
}

func TestFavorites_FilterListings(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	seedFavorites(t, store, "p3", "p1", "gone")
	svc := NewFavoritesService(store)

	catalog := []domain.Listing{
		{ID: "p1", Title: "Loft"},
		{ID: "p2", Title: "Studio"},
		{ID: "p3", Title: "Cottage"},
	}
	got := svc.FilterListings(ctx, catalog)
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
		t.Fatalf("FilterListings = %+v; want [p1 p3] in catalog order", got)
	}
}
