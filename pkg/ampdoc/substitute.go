package ampdoc

import (
	"regexp"
	"sort"
	"strings"
)

var markerPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.\-]+)\}\}`)

// Marker returns the literal placeholder text for a token name.
func Marker(name string) string {
	return "{{" + name + "}}"
}

// Substitute replaces every occurrence of {{name}} with values[name].
//
// Keys are applied in sorted order so the output is deterministic. Markers
// whose name has no entry in values are left untouched.
func Substitute(template string, values map[string]string) string {
	if template == "" || len(values) == 0 {
		return template
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, Marker(k), values[k])
	}
	return out
}

// UnresolvedTokens lists the distinct marker names still present in doc,
// sorted alphabetically.
func UnresolvedTokens(doc string) []string {
	matches := markerPattern.FindAllStringSubmatch(doc, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	sort.Strings(names)
	return names
}
