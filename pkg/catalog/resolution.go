package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

func FormatResolution(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// ParseResolution splits a "WxH" string. Anything other than exactly two integer
// components separated by a single 'x' is rejected.
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q: want WxH", s)
	}
	if width, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("resolution %q: width: %w", s, err)
	}
	if height, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("resolution %q: height: %w", s, err)
	}
	return width, height, nil
}
