package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNavigationFailed is matched by every error Open returns once the chain
// is exhausted.
var ErrNavigationFailed = errors.New("navigation: could not open directions")

// Launcher is the host platform's URI primitive pair.
type Launcher interface {
	// CanOpenURL asks whether an installed app handles uri, without opening it.
	CanOpenURL(ctx context.Context, uri string) (bool, error)
	// OpenURL hands uri to the platform.
	OpenURL(ctx context.Context, uri string) error
}

// Outcome describes what happened to one candidate.
type Outcome string

const (
	OutcomeOpened       Outcome = "opened"
	OutcomeNotInstalled Outcome = "not_installed"
	OutcomeProbeFailed  Outcome = "probe_failed"
	OutcomeLaunchFailed Outcome = "launch_failed"
)

// Attempt records one step of a resolution.
type Attempt struct {
	Candidate Candidate
	Outcome   Outcome
	Err       error
}

// Result is the trace of a successful resolution.
type Result struct {
	// Opened is the candidate that was launched.
	Opened   Candidate
	Attempts []Attempt
}

// UsedFallback reports whether the web fallback was opened.
func (r Result) UsedFallback() bool { return !r.Opened.Probe }

// TerminalError is returned when the web fallback itself cannot be opened.
type TerminalError struct {
	URI      string
	Err      error
	Attempts []Attempt
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("%v: open %s: %v", ErrNavigationFailed, e.URI, e.Err)
}

// Unwrap exposes both ErrNavigationFailed and the launcher's error.
func (e *TerminalError) Unwrap() []error { return []error{ErrNavigationFailed, e.Err} }

var navAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "navigation_attempts_total",
		Help: "Navigation candidates attempted, by provider, kind and outcome.",
	},
	[]string{"provider", "kind", "outcome"},
)

func init() {
	prometheus.MustRegister(navAttempts)
}

var tracer = otel.Tracer("github.com/tbourn/go-rental-core/internal/navigation")

// Resolver walks candidate chains against a Launcher.
type Resolver struct {
	Launcher Launcher
	// Platform is used when Options.Platform is empty.
	Platform Platform
	// Preferred is used when Options.Preferred is empty.
	Preferred Provider
}

// NewResolver returns a Resolver for the host platform.
func NewResolver(l Launcher, platform Platform) *Resolver {
	return &Resolver{Launcher: l, Platform: platform, Preferred: ProviderAuto}
}

// Plan is the package-level Plan with the resolver's defaults applied.
func (r *Resolver) Plan(d Destination, opts Options) ([]Candidate, error) {
	return Plan(d, r.withDefaults(opts))
}

// Open resolves d: each probed candidate is checked with CanOpenURL and, if
// installed, opened. A negative probe, a probe error or a launch error moves
// on to the next candidate. The final web candidate is opened without a
// probe; if that fails, Open returns a *TerminalError.
func (r *Resolver) Open(ctx context.Context, d Destination, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "Resolver.Open")
	defer span.End()

	chain, err := r.Plan(d, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	var attempts []Attempt
	for i, c := range chain {
		if i == len(chain)-1 {
			if err := r.Launcher.OpenURL(ctx, c.URI); err != nil {
				attempts = append(attempts, record(c, OutcomeLaunchFailed, err))
				span.SetStatus(codes.Error, err.Error())
				log.Warn().Err(err).Str("uri", c.URI).Msg("navigation web fallback failed")
				return Result{Attempts: attempts}, &TerminalError{URI: c.URI, Err: err, Attempts: attempts}
			}
			attempts = append(attempts, record(c, OutcomeOpened, nil))
			span.SetAttributes(attribute.String("nav.opened", c.URI), attribute.Bool("nav.fallback", true))
			return Result{Opened: c, Attempts: attempts}, nil
		}

		ok, err := r.Launcher.CanOpenURL(ctx, c.URI)
		switch {
		case err != nil:
			attempts = append(attempts, record(c, OutcomeProbeFailed, err))
			continue
		case !ok:
			attempts = append(attempts, record(c, OutcomeNotInstalled, nil))
			continue
		}
		if err := r.Launcher.OpenURL(ctx, c.URI); err != nil {
			attempts = append(attempts, record(c, OutcomeLaunchFailed, err))
			continue
		}
		attempts = append(attempts, record(c, OutcomeOpened, nil))
		span.SetAttributes(attribute.String("nav.opened", c.URI), attribute.Bool("nav.fallback", false))
		return Result{Opened: c, Attempts: attempts}, nil
	}

	// Plan never returns an empty chain.
	return Result{}, ErrNavigationFailed
}

func (r *Resolver) withDefaults(opts Options) Options {
	if opts.Platform == "" {
		opts.Platform = r.Platform
	}
	if opts.Preferred == "" {
		opts.Preferred = r.Preferred
	}
	return opts
}

func record(c Candidate, o Outcome, err error) Attempt {
	navAttempts.WithLabelValues(string(c.Provider), string(c.Kind), string(o)).Inc()
	log.Debug().Str("uri", c.URI).Str("outcome", string(o)).Err(err).Msg("navigation attempt")
	return Attempt{Candidate: c, Outcome: o, Err: err}
}
