// Package envconf applies environment variable overrides to configuration
// fields. Each setter leaves the field untouched when the variable name is
// empty, the variable is unset, or its value does not parse.
package envconf

import (
	"os"
	"strconv"
	"strings"
)

func get(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// String overrides dst with the value of name.
func String(dst *string, name string) {
	if v, ok := get(name); ok {
		*dst = v
	}
}

// Int overrides dst with the integer value of name.
func Int(dst *int, name string) {
	if v, ok := get(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Bool overrides dst with the boolean value of name.
func Bool(dst *bool, name string) {
	if v, ok := get(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List overrides dst with the comma-separated value of name, dropping
// empty entries.
func List(dst *[]string, name string) {
	v, ok := get(name)
	if !ok {
		return
	}
	out := make([]string, 0, strings.Count(v, ",")+1)
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// Default sets dst to def when dst is the zero value.
func Default[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

// Overlay copies src into dst when src is not the zero value.
func Overlay[T comparable](dst *T, src T) {
	var zero T
	if src != zero {
		*dst = src
	}
}
