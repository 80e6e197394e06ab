package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

// Persisted key layout.
const (
	favoritesKey     = "favs:v1"
	commentKeyPrefix = "comments:"
	avgKeyPrefix     = "avgRating:"
)

func commentsKey(listingID string) string { return commentKeyPrefix + listingID }
func avgKey(listingID string) string      { return avgKeyPrefix + listingID }

var tracer = otel.Tracer("github.com/tbourn/go-rental-core/internal/services")

var (
	// ratingLookups counts GetAverageRating outcomes: hit (served from the
	// cache), miss (derived from the log and cached) or empty (no comments).
	ratingLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_cache_lookups_total",
			Help: "Average rating lookups by cache outcome.",
		},
		[]string{"result"},
	)

	// storeWriteFailures counts best-effort writes that did not persist.
	storeWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_write_failures_total",
			Help: "Key-value writes that failed, by key namespace.",
		},
		[]string{"namespace"},
	)
)

func init() {
	prometheus.MustRegister(ratingLookups, storeWriteFailures)
}
