package navigation

import (
	"context"
	"strings"
	"sync"
)

// Reported is a Launcher for hosts that cannot be called back: the host
// reports up front which URL schemes it can open, probes are answered from
// that set and OpenURL only records the URI the host should launch.
//
// https is always openable. Safe for concurrent use.
type Reported struct {
	schemes map[string]struct{}

	mu     sync.Mutex
	opened []string
}

// NewReported returns a Reported launcher for the given schemes
// (e.g. "comgooglemaps", "maps", "google.navigation"), case-insensitive.
func NewReported(schemes ...string) *Reported {
	set := make(map[string]struct{}, len(schemes)+1)
	for _, s := range schemes {
		s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(s, "://")))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	set["https"] = struct{}{}
	return &Reported{schemes: set}
}

// CanOpenURL reports whether uri's scheme was reported.
func (r *Reported) CanOpenURL(_ context.Context, uri string) (bool, error) {
	_, ok := r.schemes[scheme(uri)]
	return ok, nil
}

// OpenURL records uri. It fails for schemes that were not reported.
func (r *Reported) OpenURL(_ context.Context, uri string) error {
	if _, ok := r.schemes[scheme(uri)]; !ok {
		return ErrNavigationFailed
	}
	r.mu.Lock()
	r.opened = append(r.opened, uri)
	r.mu.Unlock()
	return nil
}

// Opened returns the URIs recorded by OpenURL, in order.
func (r *Reported) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}

func scheme(uri string) string {
	i := strings.IndexByte(uri, ':')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(uri[:i])
}
