package domain

import (
	"strconv"
	"strings"
)

// ParsePosition decodes a WKT point string of the form "POINT(lon lat)"
// into a (latitude, longitude) pair. The prefix match is case-insensitive
// and surrounding whitespace is ignored.
//
// Parsing is best-effort: empty input, a missing POINT prefix, malformed
// parentheses, a wrong token count, or non-numeric tokens all yield
// ok=false rather than an error. Malformed geometry degrades to "no
// position" instead of aborting ingestion.
func ParsePosition(text string) (lat, lon float64, ok bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, 0, false
	}
	if !strings.HasPrefix(strings.ToUpper(s), "POINT") {
		return 0, 0, false
	}

	open := strings.Index(s, "(")
	closing := strings.Index(s, ")")
	if open < 0 || closing < open {
		return 0, 0, false
	}

	tokens := strings.Fields(s[open+1 : closing])
	if len(tokens) != 2 {
		return 0, 0, false
	}

	// WKT stores longitude first; we return latitude first.
	lon, errLon := strconv.ParseFloat(tokens[0], 64)
	lat, errLat := strconv.ParseFloat(tokens[1], 64)
	if errLon != nil || errLat != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
