// Package catalog loads the static listing catalog supplied by the host.
// The core never writes it; favorites and directions only look listings up.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tbourn/go-rental-core/internal/domain"
)

// ErrInvalidCatalog is returned for a catalog with a blank or repeated id.
var ErrInvalidCatalog = errors.New("catalog: invalid listing")

// Catalog is an immutable, ordered set of listings.
type Catalog struct {
	listings []domain.Listing
	byID     map[string]int
}

// New indexes listings by their trimmed id, rejecting blank or duplicate
// ids.
func New(listings []domain.Listing) (*Catalog, error) {
	c := &Catalog{
		listings: append([]domain.Listing(nil), listings...),
		byID:     make(map[string]int, len(listings)),
	}
	for i, l := range c.listings {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, id)
		}
		c.listings[i].ID = id
		c.byID[id] = i
	}
	return c, nil
}

// Load reads a JSON array of listings from path. An empty path yields an
// empty catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return New(nil)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var listings []domain.Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return New(listings)
}

// Listings returns the listings in catalog order.
func (c *Catalog) Listings() []domain.Listing {
	return append([]domain.Listing(nil), c.listings...)
}

// Get looks a listing up by id.
func (c *Catalog) Get(id string) (domain.Listing, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Listing{}, false
	}
	return c.listings[i], true
}

// Len is the number of listings.
func (c *Catalog) Len() int { return len(c.listings) }
