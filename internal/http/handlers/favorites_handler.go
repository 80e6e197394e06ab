package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/http/middleware"
	"github.com/tbourn/go-rental-core/internal/services"
)

// FavoritesResponse is the favorites set in stored order. Listings is
// filled, in catalog order, when expand=listings is requested.
type FavoritesResponse struct {
	IDs      []string         `json:"ids" example:"p2,p1"`
	Listings []domain.Listing `json:"listings,omitempty"`
}

// FavoriteResponse is the membership of one listing, plus the whole set
// after a toggle.
type FavoriteResponse struct {
	ListingID string   `json:"listing_id" example:"p1"`
	Favorite  bool     `json:"favorite" example:"true"`
	IDs       []string `json:"ids,omitempty"`
}

// ListFavorites godoc
// @ID          listFavorites
// @Summary     List favorite listings
// @Tags        Favorites
// @Produce     json
// @Param       expand  query  string  false  "Set to 'listings' to include catalog entries"
// @Success     200  {object} handlers.FavoritesResponse
// @Router      /favorites [get]
func (h *Handlers) ListFavorites(c *gin.Context) {
	ctx := c.Request.Context()
	resp := FavoritesResponse{IDs: h.favs.List(ctx)}
	if c.Query("expand") == "listings" && h.catalog != nil {
		resp.Listings = h.favs.FilterListings(ctx, h.catalog.Listings())
	}
	ok(c, http.StatusOK, resp)
}

// GetFavorite godoc
// @ID          getFavorite
// @Summary     Is a listing a favorite
// @Tags        Favorites
// @Produce     json
// @Param       id   path  string  true  "Listing ID"  example(p1)
// @Success     200  {object} handlers.FavoriteResponse
// @Router      /favorites/{id} [get]
func (h *Handlers) GetFavorite(c *gin.Context) {
	id := c.Param("id")
	ok(c, http.StatusOK, FavoriteResponse{ListingID: id, Favorite: h.favs.IsFavorite(c.Request.Context(), id)})
}

// ToggleFavorite godoc
// @ID          toggleFavorite
// @Summary     Toggle a listing's favorite membership
// @Description Removes the listing when present, appends it otherwise. Concurrent toggles are last-write-wins.
// @Description Supports Idempotency-Key: a retry returns the current set without toggling again.
// @Tags        Favorites
// @Produce     json
// @Param       id               path    string  true   "Listing ID"  example(p1)
// @Param       Idempotency-Key  header  string  false  "Retry key"
// @Param       X-Device-ID      header  string  false  "Calling device"
// @Success     200  {object} handlers.FavoriteResponse
// @Failure     404  {object} handlers.ErrorResponse "Listing not in catalog"
// @Failure     503  {object} handlers.ErrorResponse "Favorites could not be saved"
// @Router      /favorites/{id}/toggle [post]
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if middleware.IsReplay(c) {
		replayed(c)
		ids := h.favs.List(ctx)
		ok(c, http.StatusOK, FavoriteResponse{ListingID: id, Favorite: contains(ids, id), IDs: ids})
		return
	}
	if !h.knownListing(id) {
		fail(c, http.StatusNotFound, ErrCodeUnknownListing, "listing not in catalog")
		return
	}

	ids, err := h.favs.Toggle(ctx, id)
	switch {
	case errors.Is(err, services.ErrInvalidListing):
		fail(c, http.StatusBadRequest, ErrCodeInvalidListing, err.Error())
		return
	case errors.Is(err, services.ErrStorage):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorage, "favorites were not saved")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	h.remember(c, "", http.StatusOK)
	ok(c, http.StatusOK, FavoriteResponse{ListingID: id, Favorite: contains(ids, id), IDs: ids})
}

// knownListing is true when no catalog is loaded or the catalog has id.
func (h *Handlers) knownListing(id string) bool {
	if h.catalog == nil || len(h.catalog.Listings()) == 0 {
		return true
	}
	_, found := h.catalog.Get(id)
	return found
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
