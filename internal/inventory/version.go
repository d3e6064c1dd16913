package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CurrentSchemaVersion is the document schema this build reads and writes.
// Bump the major component when a change breaks older readers.
var CurrentSchemaVersion = SchemaVersion{Major: 1, Minor: 0, Patch: 0}

var schemaVersionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([\w.-]+))?(?:\+([\w.-]+))?$`)

// SchemaVersion is a MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] version.
type SchemaVersion struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// ParseSchemaVersion parses s. Leading zeros are accepted.
func ParseSchemaVersion(s string) (SchemaVersion, error) {
	m := schemaVersionPattern.FindStringSubmatch(s)
	if m == nil {
		return SchemaVersion{}, &InvalidFormatError{Value: s}
	}

	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return SchemaVersion{}, &InvalidFormatError{Value: s}
		}
		nums[i] = n
	}

	return SchemaVersion{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: m[4],
		Build:      m[5],
	}, nil
}

// MustParseSchemaVersion is like ParseSchemaVersion but panics on error.
func MustParseSchemaVersion(s string) SchemaVersion {
	v, err := ParseSchemaVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical form.
func (v SchemaVersion) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		b.WriteString("-")
		b.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		b.WriteString("+")
		b.WriteString(v.Build)
	}
	return b.String()
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
//
// A version with a prerelease sorts before the same version without one.
// Two prereleases compare as whole strings, not per dot-separated identifier
// as full SemVer would. Build metadata never affects ordering.
func (v SchemaVersion) Compare(other SchemaVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.Prerelease == other.Prerelease:
		return 0
	case v.Prerelease == "":
		return 1
	case other.Prerelease == "":
		return -1
	}
	return strings.Compare(v.Prerelease, other.Prerelease)
}

// Less reports whether v sorts before other.
func (v SchemaVersion) Less(other SchemaVersion) bool {
	return v.Compare(other) < 0
}

// IsCompatible reports whether a document at version actual can be read by
// code expecting version expected. Only the major component matters.
func IsCompatible(actual, expected SchemaVersion) bool {
	return actual.Major == expected.Major
}

// CheckCompatible returns a *SchemaIncompatibleError when actual cannot be
// read by code expecting expected.
func CheckCompatible(actual, expected SchemaVersion) error {
	if !IsCompatible(actual, expected) {
		return &SchemaIncompatibleError{Expected: expected, Actual: actual}
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v SchemaVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *SchemaVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseSchemaVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
