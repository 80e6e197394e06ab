package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rental-core/internal/catalog"
	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/http/middleware"
	"github.com/tbourn/go-rental-core/internal/kv"
	"github.com/tbourn/go-rental-core/internal/navigation"
	"github.com/tbourn/go-rental-core/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// memIdem is an in-memory idempotency store shared by the lookup and the
// handlers' recorder.
type memIdem struct {
	mu   sync.Mutex
	recs map[string]middleware.Replay
}

func (m *memIdem) Record(_ context.Context, device, scope, key, resourceID string, status int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[device+"|"+scope+"|"+key] = middleware.Replay{ResourceID: resourceID, Status: status}
	return nil
}

func (m *memIdem) lookup(_ context.Context, device, scope, key string, _ time.Time) (middleware.Replay, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[device+"|"+scope+"|"+key]
	return r, ok, nil
}

type fixture struct {
	store *kv.Memory
	idem  *memIdem
	r     *gin.Engine
	h     *Handlers
}

func newFixture(t *testing.T, listings ...domain.Listing) *fixture {
	t.Helper()
	store := kv.NewMemory()
	ratings := services.NewRatingService(store)
	idem := &memIdem{recs: map[string]middleware.Replay{}}

	var cat Catalog
	if len(listings) > 0 {
		c, err := catalog.New(listings)
		if err != nil {
			t.Fatalf("catalog: %v", err)
		}
		cat = c
	}

	h := New(Deps{
		Ratings:     ratings,
		Comments:    services.NewCommentService(store, ratings),
		Favorites:   services.NewFavoritesService(store),
		Catalog:     cat,
		Idempotency: idem,
		Navigation:  navigation.Resolver{Platform: navigation.PlatformIOS, Preferred: navigation.ProviderAuto},
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Device())
	r.GET("/listings/:id/rating", h.GetRating)
	r.POST("/listings/rating", h.GetRatings)
	r.POST("/listings/:id/rating/reload", h.ReloadRating)
	r.GET("/listings/:id/comments", h.ListComments)
	r.POST("/listings/:id/comments",
		middleware.Idempotent(middleware.IdempotencyOptions{}, middleware.ScopeByParam("comments:", "id"), idem.lookup),
		h.AddComment)
	r.GET("/favorites", h.ListFavorites)
	r.GET("/favorites/:id", h.GetFavorite)
	r.POST("/favorites/:id/toggle",
		middleware.Idempotent(middleware.IdempotencyOptions{}, middleware.ScopeByParam("favs:", "id"), idem.lookup),
		h.ToggleFavorite)
	r.POST("/directions", h.Directions)

	return &fixture{store: store, idem: idem, r: r, h: h}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, isStr := body.(string); isStr {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	e := decode[ErrorResponse](t, w)
	if e.Code != code || e.RequestID == "" {
		t.Fatalf("error = %+v, want code %q with request id", e, code)
	}
}
