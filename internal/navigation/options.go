package navigation

import "strings"

// Provider selects which map provider to prefer.
type Provider string

const (
	ProviderAuto   Provider = "auto"
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// ParseProvider maps a string to a Provider; unknown or empty is auto.
func ParseProvider(s string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGoogle:
		return ProviderGoogle
	case ProviderApple:
		return ProviderApple
	default:
		return ProviderAuto
	}
}

// Mode is the travel mode.
type Mode string

const (
	ModeDriving   Mode = "driving"
	ModeWalking   Mode = "walking"
	ModeTransit   Mode = "transit"
	ModeBicycling Mode = "bicycling"
)

// ParseMode maps a string to a Mode; unknown or empty is driving.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWalking, ModeTransit, ModeBicycling, ModeDriving:
		return m
	default:
		return ModeDriving
	}
}

// letter is the single-character code used by google.navigation.
func (m Mode) letter() string { return string(m[0]) }

// appleFlag is the Apple Maps dirflg value: walking or driving.
func (m Mode) appleFlag() string {
	if m == ModeWalking {
		return "w"
	}
	return "d"
}

// Platform is the host operating system family.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// ParsePlatform maps a string to a Platform. Anything other than "ios" is
// treated as android, the family without a platform-native map app.
func ParsePlatform(s string) Platform {
	if strings.EqualFold(strings.TrimSpace(s), string(PlatformIOS)) {
		return PlatformIOS
	}
	return PlatformAndroid
}

// Options controls candidate selection.
type Options struct {
	Preferred Provider
	Mode      Mode
	Platform  Platform
}

func (o Options) normalized() Options {
	o.Preferred = ParseProvider(string(o.Preferred))
	o.Mode = ParseMode(string(o.Mode))
	o.Platform = ParsePlatform(string(o.Platform))
	return o
}
