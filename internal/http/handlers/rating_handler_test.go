package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestGetRating_AbsentIsNullNotZero(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/listings/p9/rating", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"average":null`) {
		t.Fatalf("absent rating must serialize as null: %s", w.Body.String())
	}
	if r := decode[RatingResponse](t, w); r.HasReviews || r.ListingID != "p9" {
		t.Fatalf("unexpected %+v", r)
	}
}

func TestRatings_AfterComments(t *testing.T) {
	f := newFixture(t)
	for _, rating := range []int{3, 5, 4} {
		if w := f.do(t, http.MethodPost, "/listings/p1/comments", AddCommentRequest{Rating: rating}); w.Code != http.StatusCreated {
			t.Fatalf("add: %d %s", w.Code, w.Body.String())
		}
	}

	r := decode[RatingResponse](t, f.do(t, http.MethodGet, "/listings/p1/rating", nil))
	if r.Average == nil || *r.Average != 4.0 || !r.HasReviews {
		t.Fatalf("rating = %+v", r)
	}

	batch := decode[BatchRatingResponse](t, f.do(t, http.MethodPost, "/listings/rating", BatchRatingRequest{IDs: []string{"p1", " ", "p2", "p1"}}))
	if len(batch.Ratings) != 2 || *batch.Ratings["p1"] != 4.0 || batch.Ratings["p2"] != nil {
		t.Fatalf("batch = %+v", batch.Ratings)
	}

	reload := decode[RatingResponse](t, f.do(t, http.MethodPost, "/listings/p1/rating/reload", nil))
	if reload.Average == nil || *reload.Average != 4.0 {
		t.Fatalf("reload = %+v", reload)
	}
}

func TestGetRatings_BadRequests(t *testing.T) {
	f := newFixture(t)
	expectError(t, f.do(t, http.MethodPost, "/listings/rating", `{"ids":[]}`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, f.do(t, http.MethodPost, "/listings/rating", `not json`), http.StatusBadRequest, ErrCodeBadRequest)

	ids := make([]string, maxBatchIDs+1)
	for i := range ids {
		ids[i] = "p"
	}
	expectError(t, f.do(t, http.MethodPost, "/listings/rating", BatchRatingRequest{IDs: ids}), http.StatusBadRequest, ErrCodeBadRequest)
}
