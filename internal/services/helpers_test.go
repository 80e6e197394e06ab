package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-rental-core/internal/domain"
	"github.com/tbourn/go-rental-core/internal/kv"
)

var errKeyFault = errors.New("forced key fault")

// keyFaultStore fails writes to keys with the given prefix and passes
// everything else through to the wrapped store.
type keyFaultStore struct {
	kv.Store
	failSetPrefix string
}

func (s *keyFaultStore) Set(ctx context.Context, key string, raw []byte) error {
	if s.failSetPrefix != "" && strings.HasPrefix(key, s.failSetPrefix) {
		return errKeyFault
	}
	return s.Store.Set(ctx, key, raw)
}

func seedComments(t *testing.T, s kv.Store, listingID string, ratings ...int) []domain.Comment {
	t.Helper()
	log := make([]domain.Comment, 0, len(ratings))
	for i, r := range ratings {
		log = append(log, domain.Comment{ID: listingID + "-" + string(rune('a'+i)), User: "u", Rating: r})
	}
	if err := kv.SetJSON(context.Background(), s, commentsKey(listingID), log); err != nil {
		t.Fatalf("seed comments: %v", err)
	}
	return log
}

func mustAvg(t *testing.T, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("average = nil; want %v", want)
	}
	if *got != want {
		t.Fatalf("average = %v; want %v", *got, want)
	}
}
