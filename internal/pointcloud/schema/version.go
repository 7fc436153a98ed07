package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a "major.minor" node format version.
type Version struct {
	Major int
	Minor int
}

// LegacyPositionVersion is the last format that stores positions as
// absolute float32 values; anything newer stores quantized uint32 values.
var LegacyPositionVersion = Version{Major: 1, Minor: 3}

// ParseVersion parses "<major>[.<minor>]". A missing minor part is 0.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	majorStr, minorStr, hasMinor := strings.Cut(s, ".")

	major, err := strconv.Atoi(majorStr)
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	minor := 0
	if hasMinor {
		minor, err = strconv.Atoi(minorStr)
		if err != nil || minor < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
	}
	return Version{Major: major, Minor: minor}, nil
}

// MustParseVersion is ParseVersion that panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// compare returns -1, 0 or 1 comparing (major, minor) lexicographically.
func (v Version) compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major > o.Major {
			return 1
		}
		return -1
	case v.Minor > o.Minor:
		return 1
	case v.Minor < o.Minor:
		return -1
	}
	return 0
}

// NewerThan reports whether v is strictly greater than o.
func (v Version) NewerThan(o Version) bool {
	return v.compare(o) > 0
}

// EqualOrHigher reports whether v >= o.
func (v Version) EqualOrHigher(o Version) bool {
	return v.compare(o) >= 0
}

// UpTo reports whether v <= o.
func (v Version) UpTo(o Version) bool {
	return !v.NewerThan(o)
}

// QuantizedPositions reports whether records of this version store
// positions as scaled uint32 values.
func (v Version) QuantizedPositions() bool {
	return v.NewerThan(LegacyPositionVersion)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
