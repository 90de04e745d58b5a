package voterid

import (
	"strconv"
	"strings"
)

// FallbackPrefix tags fingerprints produced by the degraded path so they
// stay distinguishable from primary fingerprints in logs and analytics.
const FallbackPrefix = "fallback-"

// Fingerprinter is the primary fingerprinting mechanism (a rich
// environment-probing library on real clients). It may be unavailable.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// Signals are the coarse environment attributes the fallback hash is built
// from. They are stable for a given device/browser profile.
type Signals struct {
	UserAgent      string
	Language       string
	ScreenWidth    int
	ScreenHeight   int
	ColorDepth     int
	TimezoneOffset int
}

// ComputeFingerprint asks the primary mechanism first and falls back to a
// deterministic hash over the coarse signals when it is absent or fails.
// Either way the result is stable across repeated calls in an unchanged
// environment. This is a casual-abuse deterrent, not a security boundary:
// it can collide across devices and a motivated user can evade it.
func ComputeFingerprint(provider Fingerprinter, signals Signals) string {
	if provider != nil {
		if value, err := provider.Fingerprint(); err == nil && len(value) > 0 {
			return value
		}
	}
	return FallbackFingerprint(signals)
}

// FallbackFingerprint folds the joined signals through a 32-bit hash and
// renders it in base36. The scheme intentionally matches what web clients
// compute when their fingerprinting library fails to load, so degraded
// identifiers remain comparable across client implementations.
func FallbackFingerprint(signals Signals) string {
	joined := strings.Join([]string{
		signals.UserAgent,
		signals.Language,
		strconv.Itoa(signals.ScreenWidth),
		strconv.Itoa(signals.ScreenHeight),
		strconv.Itoa(signals.ColorDepth),
		strconv.Itoa(signals.TimezoneOffset),
	}, "|")

	var hash int32
	for _, char := range joined {
		hash = (hash << 5) - hash + int32(char)
	}
	value := int64(hash)
	if value < 0 {
		value = -value
	}

	return FallbackPrefix + strconv.FormatInt(value, 36)
}
