package navigation

import (
	"context"
	"strings"
	"testing"
)

func TestReported_ProbesFromReportedSchemes(t *testing.T) {
	r := NewReported("comgooglemaps://", " MAPS ")
	ctx := context.Background()

	cases := map[string]bool{
		"comgooglemaps://?daddr=x": true,
		"maps://?daddr=x":          true,
		"google.navigation:q=x":    false,
		"https://www.google.com/":  true,
		"no-scheme":                false,
	}
	for uri, want := range cases {
		if got, err := r.CanOpenURL(ctx, uri); got != want || err != nil {
			t.Fatalf("CanOpenURL(%q) = %v, %v; want %v", uri, got, err, want)
		}
	}
	if err := r.OpenURL(ctx, "google.navigation:q=x"); err == nil {
		t.Fatalf("opening an unreported scheme should fail")
	}
}

func TestReported_DrivesResolver(t *testing.T) {
	ctx := context.Background()
	d := ByAddress("1 Infinite Loop", "")

	// Nothing reported on iOS auto: Apple Maps and Google app are skipped.
	none := NewReported()
	res, err := NewResolver(none, PlatformIOS).Open(ctx, d, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !res.UsedFallback() || !strings.HasPrefix(res.Opened.URI, "https://www.google.com/maps/dir/") {
		t.Fatalf("expected google web fallback, got %+v", res.Opened)
	}
	if got := none.Opened(); len(got) != 1 || got[0] != res.Opened.URI {
		t.Fatalf("Opened() = %v", got)
	}

	// Google app reported: it wins over the web URL.
	gm := NewReported("comgooglemaps")
	res, err = NewResolver(gm, PlatformIOS).Open(ctx, d, Options{Preferred: ProviderGoogle})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if res.UsedFallback() || !strings.HasPrefix(res.Opened.URI, "comgooglemaps://") {
		t.Fatalf("expected the google app, got %+v", res.Opened)
	}
}
