// Package services – FavoritesService
//
// This file implements the favorites set: an ordered list of listing ids
// stored whole under "favs:v1". Every mutation rewrites the full list.
//
// Toggle is not idempotent (two toggles restore the original membership) and
// there is no protection against concurrent toggles: the last write wins.
// Callers that need exactly-once toggles de-duplicate upstream, e.g. with an
// Idempotency-Key at the HTTP layer.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

// FavoritesService reads and toggles the favorites set.
type FavoritesService struct {
	Store kv.Store
}

// NewFavoritesService returns a FavoritesService over store.
func NewFavoritesService(store kv.Store) *FavoritesService {
	return &FavoritesService{Store: store}
}

// List returns the favorite listing ids in stored order, duplicates removed.
// An unreadable or malformed set is empty.
func (s *FavoritesService) List(ctx context.Context) []string {
	return dedupe(kv.GetJSON(ctx, s.Store, favoritesKey, []string{}))
}

// IsFavorite reports whether listingID is in the set.
func (s *FavoritesService) IsFavorite(ctx context.Context, listingID string) bool {
	for _, id := range s.List(ctx) {
		if id == listingID {
			return true
		}
	}
	return false
}

// Toggle removes listingID when present and appends it otherwise, then writes
// the whole resulting set. It returns the new set.
//
// On a storage failure it returns ErrStorage (wrapped) and the set as it was
// read, so callers can keep showing the previous state.
func (s *FavoritesService) Toggle(ctx context.Context, listingID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FavoritesService.Toggle")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", listingID))

	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, ErrInvalidListing
	}

	raw, err := kv.LoadJSON(ctx, s.Store, favoritesKey, []string{})
	if err != nil {
		return nil, fmt.Errorf("%w: read favorites: %v", ErrStorage, err)
	}
	current := dedupe(raw)

	next := make([]string, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == listingID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, listingID)
	}

	if err := kv.SetJSON(ctx, s.Store, favoritesKey, next); err != nil {
		storeWriteFailures.WithLabelValues("favs").Inc()
		return current, fmt.Errorf("%w: write favorites: %v", ErrStorage, err)
	}
	log.Debug().Str("listing_id", listingID).Bool("favorite", !removed).Msg("favorite toggled")
	return next, nil
}

// FilterListings returns the catalog entries that are favorites, in catalog
// order.
func (s *FavoritesService) FilterListings(ctx context.Context, catalog []domain.Listing) []domain.Listing {
	favs := s.List(ctx)
	set := make(map[string]struct{}, len(favs))
	for _, id := range favs {
		set[id] = struct{}{}
	}
	out := make([]domain.Listing, 0, len(favs))
	for _, l := range catalog {
		if _, ok := set[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
