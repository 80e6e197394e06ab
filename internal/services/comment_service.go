// Package services – CommentService
//
// This file implements the per-listing comment log. Logs are stored whole
// under "comments:<listingId>", newest first, and are append-only: there is
// no edit or delete. Each successful Add rewrites the log and then refreshes
// the rating cache from the log it just wrote, so the caller gets the new
// average for immediate display.
//
// The log write and the cache write are two independent store operations.
// If the process dies between them the cache is stale until the next
// RatingService.Reload.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

// AnonymousUser is recorded when a comment is submitted without a name.
const AnonymousUser = "anonymous"

// CommentService reads and appends listing comment logs.
type CommentService struct {
	Store   kv.Store
	Ratings *RatingService

	// MaxTextRunes caps the comment body; <= 0 disables the check.
	MaxTextRunes int

	now   func() time.Time
	newID func() string
}

// NewCommentService returns a CommentService writing through store and
// refreshing ratings.
func NewCommentService(store kv.Store, ratings *RatingService) *CommentService {
	return &CommentService{
		Store:        store,
		Ratings:      ratings,
		MaxTextRunes: 2000,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// NewComment is the caller-supplied part of a comment.
type NewComment struct {
	User   string
	Rating int
	Text   string
}

// List returns the comment log for listingID, newest first. A missing,
// unreadable or malformed log is an empty log.
func (s *CommentService) List(ctx context.Context, listingID string) []domain.Comment {
	return kv.GetJSON(ctx, s.Store, commentsKey(listingID), []domain.Comment{})
}

// Add validates in, prepends it to the listing's log, persists the log and
// refreshes the rating cache. It returns the stored comment and the new
// average.
//
// Errors:
//   - ErrInvalidListing, ErrInvalidRating, ErrTextTooLong for bad input.
//   - ErrStorage (wrapped) when the current log cannot be read or the new log
//     cannot be written; nothing was recorded in that case.
//
// A failed cache write is not an error: the average is still returned.
func (s *CommentService) Add(ctx context.Context, listingID string, in NewComment) (domain.Comment, *float64, error) {
	ctx, span := tracer.Start(ctx, "CommentService.Add")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", listingID))

	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return domain.Comment{}, nil, ErrInvalidListing
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return domain.Comment{}, nil, ErrInvalidRating
	}
	text := strings.TrimSpace(norm.NFC.String(in.Text))
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return domain.Comment{}, nil, ErrTextTooLong
	}
	user := normalizeName(in.User)
	if user == "" {
		user = AnonymousUser
	}

	// Read strictly: overwriting a log we failed to read would lose it.
	current, err := kv.LoadJSON(ctx, s.Store, commentsKey(listingID), []domain.Comment{})
	if err != nil {
		return domain.Comment{}, nil, fmt.Errorf("%w: read comments: %v", ErrStorage, err)
	}

	c := domain.Comment{
		ID:        s.newID(),
		User:      user,
		Rating:    in.Rating,
		Text:      text,
		CreatedAt: s.now().UnixMilli(),
	}
	updated := make([]domain.Comment, 0, len(current)+1)
	updated = append(updated, c)
	updated = append(updated, current...)

	if err := kv.SetJSON(ctx, s.Store, commentsKey(listingID), updated); err != nil {
		storeWriteFailures.WithLabelValues("comments").Inc()
		return domain.Comment{}, nil, fmt.Errorf("%w: write comments: %v", ErrStorage, err)
	}

	avg := s.Ratings.InvalidateOrRecompute(ctx, listingID, updated)
	log.Debug().
		Str("listing_id", listingID).
		Str("comment_id", c.ID).
		Int("rating", c.Rating).
		Int("log_len", len(updated)).
		Msg("comment added")
	return c, avg, nil
}

// Find returns the comment with id from listingID's log.
func (s *CommentService) Find(ctx context.Context, listingID, id string) (domain.Comment, bool) {
	for _, c := range s.List(ctx, listingID) {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Comment{}, false
}

// normalizeName converts to NFC, collapses whitespace runs to a single space
// and trims the ends.
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
