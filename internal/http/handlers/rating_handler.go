package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxBatchIDs = 200

// RatingResponse is the display average of one listing. Average is null
// when the listing has no reviews, which is distinct from a 0 average.
type RatingResponse struct {
	ListingID  string   `json:"listing_id" example:"p1"`
	Average    *float64 `json:"average" example:"4.3"`
	HasReviews bool     `json:"has_reviews" example:"true"`
}

func ratingResponse(id string, avg *float64) RatingResponse {
	return RatingResponse{ListingID: id, Average: avg, HasReviews: avg != nil}
}

// BatchRatingRequest lists the listings to resolve.
type BatchRatingRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// BatchRatingResponse maps listing id to average (null when unrated).
type BatchRatingResponse struct {
	Ratings map[string]*float64 `json:"ratings"`
}

// GetRating godoc
// @ID          getRating
// @Summary     Average rating of a listing
// @Description Served from the rating cache; derived from the comment log and cached on a miss.
// @Tags        Ratings
// @Produce     json
// @Param       id   path  string  true  "Listing ID"  example(p1)
// @Success     200  {object} handlers.RatingResponse
// @Router      /listings/{id}/rating [get]
func (h *Handlers) GetRating(c *gin.Context) {
	id := c.Param("id")
	ok(c, http.StatusOK, ratingResponse(id, h.ratings.GetAverageRating(c.Request.Context(), id)))
}

// GetRatings godoc
// @ID          getRatings
// @Summary     Average ratings of several listings
// @Description Each id is resolved independently; duplicates are collapsed. At most 200 ids.
// @Tags        Ratings
// @Accept      json
// @Produce     json
// @Param       body body     handlers.BatchRatingRequest true "Listing ids"
// @Success     200  {object} handlers.BatchRatingResponse
// @Failure     400  {object} handlers.ErrorResponse
// @Router      /listings/rating [post]
func (h *Handlers) GetRatings(c *gin.Context) {
	var req BatchRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids must be a non-empty array")
		return
	}
	if len(req.IDs) > maxBatchIDs {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "too many ids")
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	ok(c, http.StatusOK, BatchRatingResponse{Ratings: h.ratings.GetAverageRatings(c.Request.Context(), ids)})
}

// ReloadRating godoc
// @ID          reloadRating
// @Summary     Recompute a listing's cached rating
// @Description Rebuilds the cache entry from the persisted comment log.
// @Tags        Ratings
// @Produce     json
// @Param       id   path  string  true  "Listing ID"  example(p1)
// @Success     200  {object} handlers.RatingResponse
// @Router      /listings/{id}/rating/reload [post]
func (h *Handlers) ReloadRating(c *gin.Context) {
	id := c.Param("id")
	ok(c, http.StatusOK, ratingResponse(id, h.ratings.Reload(c.Request.Context(), id)))
}
