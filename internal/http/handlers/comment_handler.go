package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/http/middleware"
	"github.com/tbourn/go-rental-core/internal/services"
	"github.com/tbourn/go-rental-core/internal/utils"
)

const (
	defaultCommentLimit = 50
	maxCommentLimit     = 200
)

// AddCommentRequest is the body of a comment submission.
type AddCommentRequest struct {
	User   string `json:"user" example:"Dana"`
	Rating int    `json:"rating" example:"4"`
	Text   string `json:"text" example:"Quiet street, great light."`
}

// AddCommentResponse carries the stored comment and the listing's new
// average for immediate display.
type AddCommentResponse struct {
	Comment domain.Comment `json:"comment"`
	Average *float64       `json:"average" example:"4.3"`
}

// ListCommentsResponse is a window of a listing's log, newest first.
type ListCommentsResponse struct {
	ListingID string           `json:"listing_id" example:"p1"`
	Comments  []domain.Comment `json:"comments"`
	Total     int              `json:"total" example:"12"`
}

// ListComments godoc
// @ID          listComments
// @Summary     List a listing's comments
// @Description Newest first. A listing with no comments returns an empty list.
// @Tags        Comments
// @Produce     json
// @Param       id      path   string  true   "Listing ID"  example(p1)
// @Param       limit   query  int     false  "Max comments (1..200)"  default(50)
// @Param       offset  query  int     false  "Comments to skip"       default(0)
// @Success     200  {object} handlers.ListCommentsResponse
// @Router      /listings/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	id := c.Param("id")
	limit := utils.Clamp(utils.AtoiDefault(c.Query("limit"), defaultCommentLimit), 1, maxCommentLimit)
	offset := utils.AtoiDefault(c.Query("offset"), 0)

	all := h.comments.List(c.Request.Context(), id)
	ok(c, http.StatusOK, ListCommentsResponse{
		ListingID: id,
		Comments:  utils.Window(all, offset, limit),
		Total:     len(all),
	})
}

// AddComment godoc
// @ID          addComment
// @Summary     Submit a comment with a rating
// @Description Prepends the comment to the listing's log and refreshes the cached average.
// @Description Supports Idempotency-Key: a retry returns the originally created comment.
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       id               path    string  true   "Listing ID"  example(p1)
// @Param       Idempotency-Key  header  string  false  "Retry key"   example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       X-Device-ID      header  string  false  "Calling device"
// @Param       body             body    handlers.AddCommentRequest true "Comment"
// @Success     201  {object} handlers.AddCommentResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid rating or text"
// @Failure     503  {object} handlers.ErrorResponse "Comment log unavailable"
// @Router      /listings/{id}/comments [post]
func (h *Handlers) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if rec, isReplay := middleware.ReplayFrom(c); isReplay {
		if prev, found := h.comments.Find(ctx, id, rec.ResourceID); found {
			replayed(c)
			ok(c, http.StatusCreated, AddCommentResponse{Comment: prev, Average: h.ratings.GetAverageRating(ctx, id)})
			return
		}
		middleware.LoggerFrom(c).Warn().Str("comment_id", rec.ResourceID).Msg("replayed comment missing from log")
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cm, avg, err := h.comments.Add(ctx, id, services.NewComment{User: req.User, Rating: req.Rating, Text: req.Text})
	switch {
	case errors.Is(err, services.ErrInvalidRating):
		fail(c, http.StatusBadRequest, ErrCodeInvalidRating, err.Error())
		return
	case errors.Is(err, services.ErrTextTooLong):
		fail(c, http.StatusBadRequest, ErrCodeTextTooLong, err.Error())
		return
	case errors.Is(err, services.ErrInvalidListing):
		fail(c, http.StatusBadRequest, ErrCodeInvalidListing, err.Error())
		return
	case errors.Is(err, services.ErrStorage):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorage, "comment was not saved")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, fmt.Sprintf("add comment: %v", err))
		return
	}

	h.remember(c, cm.ID, http.StatusCreated)
	ok(c, http.StatusCreated, AddCommentResponse{Comment: cm, Average: avg})
}

// remember records the first execution of an idempotent request.
func (h *Handlers) remember(c *gin.Context, resourceID string, status int) {
	if h.idem == nil {
		return
	}
	key, scope, has := middleware.GetIdempotencyKey(c)
	if !has {
		return
	}
	if err := h.idem.Record(c.Request.Context(), middleware.DeviceFrom(c), scope, key, resourceID, status); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency record failed")
	}
}
