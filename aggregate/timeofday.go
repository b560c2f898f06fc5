package aggregate

import (
	"regexp"
	"strconv"
	"strings"

	"go-patrol/types"
)

// hourPattern finds the hour in "9", "09:30", "2:15 PM" or "1430".
var hourPattern = regexp.MustCompile(`\b(\d{1,2})(?::?\d{2})?\b`)

// TimeOfDay buckets a free-text time. The second return is false when the
// text has neither an hour nor an AM/PM marker.
func TimeOfDay(s string) (string, bool) {
	upper := strings.ToUpper(s)
	am := strings.Contains(upper, "AM")
	pm := strings.Contains(upper, "PM")

	hour, ok := parseHour(upper)
	switch {
	case ok && pm && hour < 12:
		hour += 12
	case ok && am && hour == 12:
		hour = 0
	case !ok && am:
		return types.Morning, true
	case !ok && pm:
		return types.Afternoon, true
	case !ok:
		return "", false
	}

	switch {
	case hour < 12:
		return types.Morning, true
	case hour < 18:
		return types.Afternoon, true
	default:
		return types.Evening, true
	}
}

func parseHour(s string) (int, bool) {
	m := hourPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h > 23 {
		return 0, false
	}
	return h, true
}
