package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key on mutations
// (comment submission, favorite toggle).
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set on responses served from a stored record.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// Replay is what a previous execution of the same (device, scope, key)
// produced.
type Replay struct {
	ResourceID string
	Status     int
}

// IdempotencyLookup finds a still-valid record for (deviceID, scope, key).
// Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, deviceID, scope, key string, now time.Time) (Replay, bool, error)

// ScopeFunc names the resource a mutation touches, e.g. "comments:p1".
type ScopeFunc func(*gin.Context) string

// ScopeByParam scopes keys to prefix + the value of a route parameter.
func ScopeByParam(prefix, param string) ScopeFunc {
	return func(c *gin.Context) string { return prefix + c.Param(param) }
}

// ScopeByRoute maps registered route patterns (c.FullPath()) to a scope
// prefix followed by the :id parameter. Routes not in the map are unscoped,
// which lets Idempotent run globally ahead of the rate limiter.
func ScopeByRoute(prefixes map[string]string) ScopeFunc {
	return func(c *gin.Context) string {
		p, ok := prefixes[c.FullPath()]
		if !ok {
			return ""
		}
		return p + c.Param("id")
	}
}

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	MaxLen  int            // default 200
	Pattern *regexp.Regexp // default ^[A-Za-z0-9._~\-:]+$
}

// Idempotent validates an optional Idempotency-Key on scoped routes and
// stashes it with the route's scope. When lookup finds a prior result the
// request is marked as a replay and bypasses the rate limiter. Handlers
// decide how to answer a replay; this middleware never writes a body.
func Idempotent(opts IdempotencyOptions, scope ScopeFunc, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		sc := ""
		if scope != nil {
			sc = scope(c)
		}
		// Unscoped routes (reads) ignore the header.
		if key == "" || (scope != nil && sc == "") {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, sc)

		if lookup != nil {
			rec, found, err := lookup(c.Request.Context(), DeviceFrom(c), sc, key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("scope", sc).Msg("idempotency lookup failed")
			case found:
				c.Set(ctxKeyIdemReplay, rec)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key and its scope.
func GetIdempotencyKey(c *gin.Context) (key, scope string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	return key, c.GetString(ctxKeyIdemScope), key != ""
}

// ReplayFrom returns the stored record when the request is a replay.
func ReplayFrom(c *gin.Context) (Replay, bool) {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return Replay{}, false
	}
	r, ok := v.(Replay)
	return r, ok
}

// IsReplay reports whether Idempotent found a prior result.
func IsReplay(c *gin.Context) bool {
	_, ok := ReplayFrom(c)
	return ok
}
