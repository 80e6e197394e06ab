package navigation

import (
	"context"
	"errors"
	"math"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

// fakeLauncher answers probes from installed and fails opens listed in
// failOpen. It records every call in order.
type fakeLauncher struct {
	installed map[string]bool // keyed by scheme prefix
	probeErr  map[string]error
	failOpen  map[string]error
	calls     []string
}

func (f *fakeLauncher) match(m map[string]bool, uri string) bool {
	for prefix, v := range m {
		if strings.HasPrefix(uri, prefix) {
			return v
		}
	}
	return false
}

func (f *fakeLauncher) CanOpenURL(_ context.Context, uri string) (bool, error) {
	f.calls = append(f.calls, "probe "+uri)
	for prefix, err := range f.probeErr {
		if strings.HasPrefix(uri, prefix) {
			return false, err
		}
	}
	return f.match(f.installed, uri), nil
}

func (f *fakeLauncher) OpenURL(_ context.Context, uri string) error {
	f.calls = append(f.calls, "open "+uri)
	for prefix, err := range f.failOpen {
		if strings.HasPrefix(uri, prefix) {
			return err
		}
	}
	return nil
}

func uris(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URI
	}
	return out
}

func TestEncodeComponent(t *testing.T) {
	cases := map[string]string{
		"1 Main St (Home)":  "1%20Main%20St%20(Home)",
		"25.03,121.56":      "25.03%2C121.56",
		"a&b=c/d?e#f":       "a%26b%3Dc%2Fd%3Fe%23f",
		"-_.!~*'()":         "-_.!~*'()",
		"台北":                "%E5%8F%B0%E5%8C%97",
		"100% sure + ready": "100%25%20sure%20%2B%20ready",
	}
	for in, want := range cases {
		if got := encodeComponent(in); got != want {
			t.Errorf("encodeComponent(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestPlan_AddressWalkingAutoAndroid(t *testing.T) {
	d := ByAddress("1 Main St", "Home")
	got, err := Plan(d, Options{Preferred: ProviderAuto, Mode: ModeWalking, Platform: PlatformAndroid})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{
		"google.navigation:q=1%20Main%20St&mode=w",
		"https://www.google.com/maps/dir/?api=1&destination=1%20Main%20St%20(Home)&travelmode=walking",
	}
	if !reflect.DeepEqual(uris(got), want) {
		t.Fatalf("Plan = %v; want %v", uris(got), want)
	}
	if !got[0].Probe || got[1].Probe || got[1].Kind != KindWeb {
		t.Fatalf("unexpected probe/kind flags: %+v", got)
	}
}

func TestPlan_AutoIOSOrder(t *testing.T) {
	got, err := Plan(ByCoordinate(25.0330, 121.5654, ""), Options{Platform: PlatformIOS})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{
		"maps://?daddr=25.033%2C121.5654&dirflg=d",
		"comgooglemaps://?daddr=25.033%2C121.5654&directionsmode=driving",
		"https://www.google.com/maps/dir/?api=1&destination=25.033%2C121.5654&travelmode=driving",
	}
	if !reflect.DeepEqual(uris(got), want) {
		t.Fatalf("Plan = %v; want %v", uris(got), want)
	}
}

func TestPlan_ExplicitPreferenceNoCrossProvider(t *testing.T) {
	d := ByCoordinate(1.5, -2.25, "Cabin")
	cases := []struct {
		name string
		opts Options
		want []string
	}{
		{
			"google ios",
			Options{Preferred: ProviderGoogle, Mode: ModeTransit, Platform: PlatformIOS},
			[]string{
				"comgooglemaps://?daddr=1.5%2C-2.25%20(Cabin)&directionsmode=transit",
				"https://www.google.com/maps/dir/?api=1&destination=1.5%2C-2.25%20(Cabin)&travelmode=transit",
			},
		},
		{
			"google android",
			Options{Preferred: ProviderGoogle, Mode: ModeBicycling, Platform: PlatformAndroid},
			[]string{
				"google.navigation:q=1.5,-2.25&mode=b",
				"https://www.google.com/maps/dir/?api=1&destination=1.5%2C-2.25%20(Cabin)&travelmode=bicycling",
			},
		},
		{
			"apple ios",
			Options{Preferred: ProviderApple, Mode: ModeWalking, Platform: PlatformIOS},
			[]string{
				"maps://?daddr=1.5%2C-2.25%20(Cabin)&dirflg=w",
				"https://maps.apple.com/?daddr=1.5%2C-2.25%20(Cabin)&dirflg=w",
			},
		},
		{
			"apple android behaves as google",
			Options{Preferred: ProviderApple, Platform: PlatformAndroid},
			[]string{
				"google.navigation:q=1.5,-2.25&mode=d",
				"https://www.google.com/maps/dir/?api=1&destination=1.5%2C-2.25%20(Cabin)&travelmode=driving",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Plan(d, tc.opts)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if !reflect.DeepEqual(uris(got), tc.want) {
				t.Fatalf("Plan = %v; want %v", uris(got), tc.want)
			}
		})
	}
}

func TestPlan_UnknownModeDefaultsToDriving(t *testing.T) {
	got, err := Plan(ByAddress("Main", ""), Options{Mode: "hovercraft", Platform: PlatformAndroid})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.HasSuffix(got[0].URI, "&mode=d") || !strings.HasSuffix(got[1].URI, "&travelmode=driving") {
		t.Fatalf("expected driving encodings, got %v", uris(got))
	}
}

func TestPlan_WebFallbackIsValidHTTPS(t *testing.T) {
	dests := []Destination{
		ByAddress("Rue de l'Église 5, Genève", "Chez moi & co"),
		ByCoordinate(-33.8688, 151.2093, "Sydney #1"),
		ByAddress("100% Road", ""),
	}
	for _, d := range dests {
		for _, p := range []Platform{PlatformIOS, PlatformAndroid} {
			for _, pref := range []Provider{ProviderAuto, ProviderGoogle, ProviderApple} {
				chain, err := Plan(d, Options{Preferred: pref, Platform: p})
				if err != nil {
					t.Fatalf("Plan: %v", err)
				}
				last := chain[len(chain)-1]
				u, err := url.Parse(last.URI)
				if err != nil || u.Scheme != "https" || u.Host == "" {
					t.Fatalf("fallback %q is not a valid https URL (err=%v)", last.URI, err)
				}
				key := "destination"
				if last.Provider == ProviderApple {
					key = "daddr"
				}
				if got := u.Query().Get(key); got != d.query() {
					t.Fatalf("fallback %s=%q; want %q", key, got, d.query())
				}
			}
		}
	}
}

func TestPlan_InvalidDestination(t *testing.T) {
	for _, d := range []Destination{{}, ByAddress("   ", "x"), ByCoordinate(91, 0, ""), ByCoordinate(math.NaN(), 0, "")} {
		if _, err := Plan(d, Options{}); !errors.Is(err, ErrInvalidDestination) {
			t.Fatalf("Plan(%+v) err = %v; want ErrInvalidDestination", d, err)
		}
	}
}

func TestDestination_Accessors(t *testing.T) {
	a := ByAddress(" 1 Main St ", " Home ")
	if addr, ok := a.Address(); !ok || addr != "1 Main St" || a.Label() != "Home" || !a.IsAddress() {
		t.Fatalf("unexpected address destination: %+v", a)
	}
	if _, _, ok := a.Coordinate(); ok {
		t.Fatalf("address destination must not report a coordinate")
	}
	c := ByCoordinate(1, 2, "")
	if lat, lng, ok := c.Coordinate(); !ok || lat != 1 || lng != 2 {
		t.Fatalf("unexpected coordinate destination: %+v", c)
	}
	if _, ok := c.Address(); ok || c.IsAddress() {
		t.Fatalf("coordinate destination must not report an address")
	}
}

func TestParsers(t *testing.T) {
	if ParseProvider(" Google ") != ProviderGoogle || ParseProvider("") != ProviderAuto || ParseProvider("bing") != ProviderAuto {
		t.Fatalf("ParseProvider mismatch")
	}
	if ParseMode("WALKING") != ModeWalking || ParseMode("") != ModeDriving {
		t.Fatalf("ParseMode mismatch")
	}
	if ParsePlatform("iOS") != PlatformIOS || ParsePlatform("web") != PlatformAndroid {
		t.Fatalf("ParsePlatform mismatch")
	}
}

func TestOpen_AutoIOS_FallsThroughToSecondaryApp(t *testing.T) {
	l := &fakeLauncher{installed: map[string]bool{"comgooglemaps://": true}}
	r := NewResolver(l, PlatformIOS)

	res, err := r.Open(context.Background(), ByAddress("1 Main St", ""), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if res.Opened.URI != "comgooglemaps://?daddr=1%20Main%20St&directionsmode=driving" || res.UsedFallback() {
		t.Fatalf("opened %q (fallback=%v); want google app", res.Opened.URI, res.UsedFallback())
	}
	wantCalls := []string{
		"probe maps://?daddr=1%20Main%20St&dirflg=d",
		"probe comgooglemaps://?daddr=1%20Main%20St&directionsmode=driving",
		"open comgooglemaps://?daddr=1%20Main%20St&directionsmode=driving",
	}
	if !reflect.DeepEqual(l.calls, wantCalls) {
		t.Fatalf("calls = %v; want %v", l.calls, wantCalls)
	}
	if res.Attempts[0].Outcome != OutcomeNotInstalled || res.Attempts[1].Outcome != OutcomeOpened {
		t.Fatalf("unexpected attempts: %+v", res.Attempts)
	}
}

func TestOpen_AutoIOS_NothingInstalled_UsesWebWithoutProbe(t *testing.T) {
	l := &fakeLauncher{}
	r := NewResolver(l, PlatformIOS)

	res, err := r.Open(context.Background(), ByCoordinate(10, 20, ""), Options{Mode: ModeWalking})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !res.UsedFallback() || !strings.HasPrefix(res.Opened.URI, "https://www.google.com/maps/dir/") {
		t.Fatalf("expected google web fallback, got %+v", res.Opened)
	}
	for _, c := range l.calls {
		if strings.HasPrefix(c, "probe https://") {
			t.Fatalf("web fallback must not be probed: %v", l.calls)
		}
	}
	if len(l.calls) != 3 {
		t.Fatalf("calls = %v; want 2 probes and 1 open", l.calls)
	}
}

func TestOpen_ProbeErrorAndLaunchErrorAdvance(t *testing.T) {
	l := &fakeLauncher{
		installed: map[string]bool{"comgooglemaps://": true},
		probeErr:  map[string]error{"maps://": errors.New("probe boom")},
		failOpen:  map[string]error{"comgooglemaps://": errors.New("launch boom")},
	}
	r := NewResolver(l, PlatformIOS)

	res, err := r.Open(context.Background(), ByAddress("x", ""), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !res.UsedFallback() {
		t.Fatalf("expected web fallback, got %+v", res.Opened)
	}
	got := []Outcome{res.Attempts[0].Outcome, res.Attempts[1].Outcome, res.Attempts[2].Outcome}
	want := []Outcome{OutcomeProbeFailed, OutcomeLaunchFailed, OutcomeOpened}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("outcomes = %v; want %v", got, want)
	}
}

func TestOpen_ExplicitGoogle_InstalledOpensApp(t *testing.T) {
	l := &fakeLauncher{installed: map[string]bool{"google.navigation:": true}}
	r := NewResolver(l, PlatformAndroid)

	res, err := r.Open(context.Background(), ByAddress("1 Main St", "Home"), Options{Preferred: ProviderGoogle, Mode: ModeWalking})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if res.Opened.URI != "google.navigation:q=1%20Main%20St&mode=w" {
		t.Fatalf("opened %q", res.Opened.URI)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("attempts = %+v; want one", res.Attempts)
	}
}

func TestOpen_TerminalFailureSurfacesOnce(t *testing.T) {
	boom := errors.New("no browser")
	l := &fakeLauncher{failOpen: map[string]error{"https://": boom}}
	r := NewResolver(l, PlatformAndroid)

	_, err := r.Open(context.Background(), ByAddress("x", ""), Options{})
	if !errors.Is(err, ErrNavigationFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v; want ErrNavigationFailed wrapping launcher error", err)
	}
	var te *TerminalError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TerminalError, got %T", err)
	}
	if !strings.HasPrefix(te.URI, "https://www.google.com/") || len(te.Attempts) != 2 {
		t.Fatalf("unexpected terminal error: %+v", te)
	}
	opens := 0
	for _, c := range l.calls {
		if strings.HasPrefix(c, "open https://") {
			opens++
		}
	}
	if opens != 1 {
		t.Fatalf("web fallback opened %d times; want exactly 1", opens)
	}
}

func TestOpen_InvalidDestinationTouchesNothing(t *testing.T) {
	l := &fakeLauncher{}
	_, err := NewResolver(l, PlatformIOS).Open(context.Background(), Destination{}, Options{})
	if !errors.Is(err, ErrInvalidDestination) {
		t.Fatalf("err = %v; want ErrInvalidDestination", err)
	}
	if len(l.calls) != 0 {
		t.Fatalf("launcher called for invalid destination: %v", l.calls)
	}
}

func TestResolver_OptionsOverrideDefaults(t *testing.T) {
	r := NewResolver(&fakeLauncher{}, PlatformIOS)
	chain, err := r.Plan(ByAddress("x", ""), Options{Platform: PlatformAndroid})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.HasPrefix(chain[0].URI, "google.navigation:") {
		t.Fatalf("explicit platform should win over resolver default, got %v", uris(chain))
	}
}
