// Package handlers implements the host bridge endpoints: ratings, comments,
// favorites and directions. Handlers validate input, call the services and
// map service errors to the ErrorResponse envelope.
//
// Mutations accept an Idempotency-Key. The first execution is recorded per
// (device, scope, key); a retry is answered from the record with
// Idempotency-Replayed: true.
package handlers

import (
	"context"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/navigation"
	"github.com/tbourn/go-rental-core/internal/services"
)

// RatingService is the rating cache as seen by the handlers.
type RatingService interface {
	GetAverageRating(ctx context.Context, listingID string) *float64
	GetAverageRatings(ctx context.Context, listingIDs []string) map[string]*float64
	Reload(ctx context.Context, listingID string) *float64
}

// CommentService is the comment log as seen by the handlers.
type CommentService interface {
	List(ctx context.Context, listingID string) []domain.Comment
	Add(ctx context.Context, listingID string, in services.NewComment) (domain.Comment, *float64, error)
	Find(ctx context.Context, listingID, id string) (domain.Comment, bool)
}

// FavoritesService is the favorites set as seen by the handlers.
type FavoritesService interface {
	List(ctx context.Context) []string
	IsFavorite(ctx context.Context, listingID string) bool
	Toggle(ctx context.Context, listingID string) ([]string, error)
	FilterListings(ctx context.Context, catalog []domain.Listing) []domain.Listing
}

// Catalog looks up listings from the host-supplied catalog.
type Catalog interface {
	Listings() []domain.Listing
	Get(id string) (domain.Listing, bool)
}

// IdempotencyRecorder stores the outcome of a first execution.
type IdempotencyRecorder interface {
	Record(ctx context.Context, deviceID, scope, key, resourceID string, status int) error
}

// Deps are the collaborators of Handlers. Catalog and Idempotency may be nil.
type Deps struct {
	Ratings     RatingService
	Comments    CommentService
	Favorites   FavoritesService
	Catalog     Catalog
	Idempotency IdempotencyRecorder
	// Navigation supplies the default platform and provider; its Launcher
	// is replaced per request.
	Navigation navigation.Resolver
}

// Handlers groups the endpoints.
type Handlers struct {
	ratings  RatingService
	comments CommentService
	favs     FavoritesService
	catalog  Catalog
	idem     IdempotencyRecorder
	nav      navigation.Resolver

	// launcherFor builds the launcher for a directions request from the
	// schemes the host reports as installed.
	launcherFor func(schemes ...string) navigation.Launcher
}

// New returns Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		ratings:  d.Ratings,
		comments: d.Comments,
		favs:     d.Favorites,
		catalog:  d.Catalog,
		idem:     d.Idempotency,
		nav:      d.Navigation,
		launcherFor: func(schemes ...string) navigation.Launcher {
			return navigation.NewReported(schemes...)
		},
	}
}
