package domain

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Known feature flag names.
const (
	FeatureArchive       = "archive"
	FeaturePunishments   = "punishments"
	FeatureDiscordNotify = "discordNotify"
)

var featureDefaults = map[string]bool{
	FeatureArchive:       true,
	FeaturePunishments:   true,
	FeatureDiscordNotify: true,
}

// Features is a flat map of named booleans. Absent names fall back to the
// platform defaults; unknown names default to off.
type Features map[string]bool

// Enabled reports whether the named feature is on.
func (f Features) Enabled(name string) bool {
	if f != nil {
		if v, ok := f[name]; ok {
			return v
		}
	}
	return featureDefaults[name]
}

// DefaultFeatures returns a fresh copy of the platform defaults.
func DefaultFeatures() Features {
	out := make(Features, len(featureDefaults))
	for k, v := range featureDefaults {
		out[k] = v
	}
	return out
}

// ParseFeatures decodes the stored flag JSON. Malformed input returns the
// defaults together with a non-nil error so the caller can log the
// occurrence; it never propagates a parse failure into request handling.
func ParseFeatures(raw datatypes.JSON) (Features, error) {
	if len(raw) == 0 {
		return DefaultFeatures(), nil
	}

	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return DefaultFeatures(), err
	}
	if flags == nil {
		return DefaultFeatures(), nil
	}
	return Features(flags), nil
}
