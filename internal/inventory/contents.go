package inventory

import (
	"fmt"
	"strings"
)

// PackageContents records which parts of an item's original package are
// present.
type PackageContents uint8

const (
	ContentsDevice PackageContents = 1 << iota
	ContentsBox
	ContentsManual
	ContentsMedia
	ContentsCables

	// ContentsLoose is the bare device.
	ContentsLoose = ContentsDevice
	// ContentsComplete is everything the item shipped with.
	ContentsComplete = ContentsDevice | ContentsBox | ContentsManual | ContentsMedia | ContentsCables
)

var contentsNames = []struct {
	flag PackageContents
	name string
}{
	{ContentsDevice, "device"},
	{ContentsBox, "box"},
	{ContentsManual, "manual"},
	{ContentsMedia, "media"},
	{ContentsCables, "cables"},
}

// Has reports whether every flag in other is set.
func (c PackageContents) Has(other PackageContents) bool {
	return c&other == other
}

// String renders the flags as a "+"-joined list, or "complete"/"none".
func (c PackageContents) String() string {
	if c == 0 {
		return "none"
	}
	if c == ContentsComplete {
		return "complete"
	}
	var parts []string
	for _, n := range contentsNames {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParsePackageContents reads the String form back. Names are
// case-insensitive and "" means none.
func ParsePackageContents(s string) (PackageContents, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none":
		return 0, nil
	case "complete":
		return ContentsComplete, nil
	case "loose":
		return ContentsLoose, nil
	}
	var c PackageContents
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		found := false
		for _, n := range contentsNames {
			if n.name == part {
				c |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown package contents %q", part)
		}
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c PackageContents) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *PackageContents) UnmarshalText(text []byte) error {
	parsed, err := ParsePackageContents(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
