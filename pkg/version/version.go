// Package version provides library version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the library version.
const Current = "1.0"

// Version represents a parsed "major.minor" version.
type Version struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	major, minor, found := strings.Cut(s, ".")
	if !found {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	maj, err := strconv.ParseUint(major, 10, 16)
	if err != nil || major == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}
	min, err := strconv.ParseUint(minor, 10, 16)
	if err != nil || minor == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}
	return Version{Major: uint16(maj), Minor: uint16(min)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether the other version has the same major
// version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}
