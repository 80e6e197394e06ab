package navigation

import "strings"

// Kind tells whether a candidate targets an installed app or the web.
type Kind string

const (
	KindApp Kind = "app"
	KindWeb Kind = "web"
)

// Candidate is one step of the fallback chain.
type Candidate struct {
	Provider Provider `json:"provider"`
	Kind     Kind     `json:"kind"`
	URI      string   `json:"uri"`
	// Probe is false only for the terminal web fallback, which is opened
	// directly.
	Probe bool `json:"probe"`
}

// Plan returns the ordered candidate chain for d. The last candidate is
// always a web URL with Probe=false.
//
// Ordering:
//   - explicit google: the Google app for the platform, then Google web.
//   - explicit apple on iOS: Apple Maps, then Apple Maps web. On Android
//     there is no Apple Maps, so apple behaves like google.
//   - auto on iOS: Apple Maps, then the Google app, then Google web.
//   - auto on Android: the Google app, then Google web.
//
// An explicit preference never falls back to the other provider.
func Plan(d Destination, opts Options) ([]Candidate, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	u := buildURIs(d, opts.Mode)

	googleApp := Candidate{Provider: ProviderGoogle, Kind: KindApp, URI: u.googleAndroid, Probe: true}
	if opts.Platform == PlatformIOS {
		googleApp.URI = u.googleIOS
	}
	googleWeb := Candidate{Provider: ProviderGoogle, Kind: KindWeb, URI: u.googleWeb}
	appleApp := Candidate{Provider: ProviderApple, Kind: KindApp, URI: u.appleApp, Probe: true}
	appleWeb := Candidate{Provider: ProviderApple, Kind: KindWeb, URI: u.appleWeb}

	switch {
	case opts.Preferred == ProviderApple && opts.Platform == PlatformIOS:
		return []Candidate{appleApp, appleWeb}, nil
	case opts.Preferred == ProviderAuto && opts.Platform == PlatformIOS:
		return []Candidate{appleApp, googleApp, googleWeb}, nil
	default:
		return []Candidate{googleApp, googleWeb}, nil
	}
}

type uriSet struct {
	googleIOS     string
	googleAndroid string
	googleWeb     string
	appleApp      string
	appleWeb      string
}

func buildURIs(d Destination, mode Mode) uriSet {
	q := encodeComponent(d.query())

	// google.navigation takes the bare point: an encoded address without the
	// label, or the raw "lat,lng".
	nav := d.point()
	if d.IsAddress() {
		nav = encodeComponent(nav)
	}

	return uriSet{
		googleIOS:     "comgooglemaps://?daddr=" + q + "&directionsmode=" + string(mode),
		googleAndroid: "google.navigation:q=" + nav + "&mode=" + mode.letter(),
		googleWeb:     "https://www.google.com/maps/dir/?api=1&destination=" + q + "&travelmode=" + string(mode),
		appleApp:      "maps://?daddr=" + q + "&dirflg=" + mode.appleFlag(),
		appleWeb:      "https://maps.apple.com/?daddr=" + q + "&dirflg=" + mode.appleFlag(),
	}
}

// encodeComponent percent-encodes s the way URI components are encoded by
// browsers' encodeURIComponent: everything except A-Z a-z 0-9 and
// - _ . ! ~ * ' ( ) is written as %XX of its UTF-8 bytes.
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
