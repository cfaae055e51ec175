package preset

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeID lower-cases s, collapses every run of characters outside
// [a-z0-9] into a single '-', and trims leading and trailing '-'.
// The result may be empty.
func NormalizeID(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// UniqueID derives an id from name that taken reports as free. An empty
// normalized name falls back to "custom"; collisions get -2, -3, ...
func UniqueID(name string, taken func(string) bool) string {
	base := NormalizeID(name)
	if base == "" {
		base = "custom"
	}
	id := base
	for n := 2; taken(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// FileName is the download name for a preset: its normalized name with a
// .conf extension.
func FileName(p Preset) string {
	base := NormalizeID(p.Name)
	if base == "" {
		base = "ghostty-config"
	}
	return base + ".conf"
}
