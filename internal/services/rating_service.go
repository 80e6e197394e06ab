// Package services – RatingService
//
// This file implements the rating cache: an average per listing derived from
// the listing's comment log and memoized under "avgRating:<listingId>".
//
// Semantics:
//   - A listing with no comments has no rating. That is reported as a nil
//     *float64, never as 0.
//   - Averages are rounded to one decimal, half away from zero.
//   - A present cache entry is trusted; reads never re-validate it against
//     the log. Every mutation goes through CommentService.Add, which
//     recomputes the entry from the updated log, and Reload repairs an entry
//     left stale by a crash between the two writes.
//   - Storage faults are never returned. A failed read behaves like a miss;
//     a failed write still returns the computed value.
package services

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

// RatingService derives and caches average ratings.
type RatingService struct {
	// Store holds both the comment logs and the cached averages.
	Store kv.Store
}

// NewRatingService returns a RatingService over store.
func NewRatingService(store kv.Store) *RatingService {
	return &RatingService{Store: store}
}

// Average returns the mean rating of comments rounded to one decimal place
// (half away from zero), or nil when comments is empty.
//
// The mean is scaled before dividing so that exact halves such as 4.25 or
// 4.35 are not perturbed by float representation: 17/4 → 42.5 → 4.3.
func Average(comments []domain.Comment) *float64 {
	if len(comments) == 0 {
		return nil
	}
	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	avg := math.Round(float64(sum)*10/float64(len(comments))) / 10
	return &avg
}

// GetAverageRating returns the average rating for listingID.
//
// A cached numeric value is returned unchanged. Otherwise the comment log is
// read: an empty log yields nil and writes nothing; a non-empty log is
// averaged, the value is written to the cache (best effort) and returned.
func (s *RatingService) GetAverageRating(ctx context.Context, listingID string) *float64 {
	ctx, span := tracer.Start(ctx, "RatingService.GetAverageRating")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", listingID))

	if cached := kv.GetJSON[*float64](ctx, s.Store, avgKey(listingID), nil); cached != nil && !math.IsNaN(*cached) {
		ratingLookups.WithLabelValues("hit").Inc()
		return cached
	}

	comments := kv.GetJSON(ctx, s.Store, commentsKey(listingID), []domain.Comment{})
	avg := Average(comments)
	if avg == nil {
		ratingLookups.WithLabelValues("empty").Inc()
		return nil
	}

	ratingLookups.WithLabelValues("miss").Inc()
	s.write(ctx, listingID, avg)
	return avg
}

// GetAverageRatings resolves several listings, one lookup per distinct id.
// Results are independent; a fault on one id does not affect the others.
func (s *RatingService) GetAverageRatings(ctx context.Context, listingIDs []string) map[string]*float64 {
	out := make(map[string]*float64, len(listingIDs))
	for _, id := range listingIDs {
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = s.GetAverageRating(ctx, id)
	}
	return out
}

// InvalidateOrRecompute refreshes the cache entry for listingID from
// updatedLog, which must be the log as just written by the caller. The log
// is not re-read. An empty log stores an explicit null marker so no stale
// average survives.
func (s *RatingService) InvalidateOrRecompute(ctx context.Context, listingID string, updatedLog []domain.Comment) *float64 {
	ctx, span := tracer.Start(ctx, "RatingService.InvalidateOrRecompute")
	defer span.End()
	span.SetAttributes(
		attribute.String("listing.id", listingID),
		attribute.Int("comments.count", len(updatedLog)),
	)

	avg := Average(updatedLog)
	s.write(ctx, listingID, avg)
	return avg
}

// Reload recomputes the cache entry for listingID from the persisted log.
// Hosts call it whenever they choose to refresh (on appear, on an interval,
// on demand); it is also how a stale entry left by a crash is repaired.
func (s *RatingService) Reload(ctx context.Context, listingID string) *float64 {
	comments, err := kv.LoadJSON(ctx, s.Store, commentsKey(listingID), []domain.Comment{})
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listingID).Msg("rating reload skipped; comment log unreadable")
		return s.GetAverageRating(ctx, listingID)
	}
	return s.InvalidateOrRecompute(ctx, listingID, comments)
}

func (s *RatingService) write(ctx context.Context, listingID string, avg *float64) {
	if err := kv.SetJSON(ctx, s.Store, avgKey(listingID), avg); err != nil {
		storeWriteFailures.WithLabelValues("avgRating").Inc()
		log.Warn().Err(err).Str("listing_id", listingID).Msg("rating cache write failed")
	}
}
