// Package navigation turns a destination into an ordered chain of map
// application URIs and walks that chain against the host's launcher: probe
// each native app, open the first one that is installed, and fall back to a
// web URL that is opened without probing.
//
// The resolver keeps no state between calls and never retries beyond the
// chain.
package navigation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDestination is returned for a destination with no usable variant.
var ErrInvalidDestination = errors.New("navigation: invalid destination")

type destKind uint8

const (
	byCoordinate destKind = iota + 1
	byAddress
)

// Destination is either a coordinate or a street address, each with an
// optional label. Build one with ByCoordinate or ByAddress; the zero value
// is invalid.
type Destination struct {
	kind    destKind
	lat     float64
	lng     float64
	address string
	label   string
}

// ByCoordinate returns a coordinate destination.
func ByCoordinate(lat, lng float64, label string) Destination {
	return Destination{kind: byCoordinate, lat: lat, lng: lng, label: strings.TrimSpace(label)}
}

// ByAddress returns an address destination.
func ByAddress(address, label string) Destination {
	return Destination{kind: byAddress, address: strings.TrimSpace(address), label: strings.TrimSpace(label)}
}

// IsAddress reports whether d is the address variant.
func (d Destination) IsAddress() bool { return d.kind == byAddress }

// Coordinate returns the coordinate of a coordinate destination.
func (d Destination) Coordinate() (lat, lng float64, ok bool) {
	return d.lat, d.lng, d.kind == byCoordinate
}

// Address returns the address of an address destination.
func (d Destination) Address() (string, bool) {
	return d.address, d.kind == byAddress
}

// Label returns the optional label.
func (d Destination) Label() string { return d.label }

// Validate reports whether d can be resolved.
func (d Destination) Validate() error {
	switch d.kind {
	case byAddress:
		if d.address == "" {
			return fmt.Errorf("%w: empty address", ErrInvalidDestination)
		}
	case byCoordinate:
		if math.IsNaN(d.lat) || math.IsNaN(d.lng) || d.lat < -90 || d.lat > 90 || d.lng < -180 || d.lng > 180 {
			return fmt.Errorf("%w: coordinate out of range", ErrInvalidDestination)
		}
	default:
		return fmt.Errorf("%w: no variant set", ErrInvalidDestination)
	}
	return nil
}

// point is the bare "lat,lng" or address, without the label.
func (d Destination) point() string {
	if d.kind == byAddress {
		return d.address
	}
	return formatFloat(d.lat) + "," + formatFloat(d.lng)
}

// query is the human query: the point followed by " (label)" when labelled.
func (d Destination) query() string {
	q := d.point()
	if d.label != "" {
		q += " (" + d.label + ")"
	}
	return q
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
