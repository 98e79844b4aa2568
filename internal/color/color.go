// Package color decides whether a page background counts as light, which
// drives the light/dark text contrast on public pages.
package color

import (
	"math"
	"strconv"
	"strings"
)

// IsLight reports whether the given hex color (#RGB or #RRGGBB, hash
// optional) has a relative luminance above 0.5. Unparseable or absent
// colors count as dark, which is the safe fallback for light text on the
// default background.
func IsLight(hex string) bool {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return false
	}
	lum := 0.2126*linearize(r) + 0.7152*linearize(g) + 0.0722*linearize(b)
	return lum > 0.5
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64(v>>16&0xff) / 255
	g = float64(v>>8&0xff) / 255
	b = float64(v&0xff) / 255
	return r, g, b, true
}

// linearize applies the sRGB gamma expansion per ITU-R BT.709.
func linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
