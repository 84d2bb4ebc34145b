package session

import (
	"regexp"
	"strconv"
)

var durationRegexp = regexp.MustCompile(`^(\d+)(\w+)`)

// DurationSeconds recodes a duration string into seconds, "2h" -> 7200.
// Unparseable input and unknown units yield 0, never an error.
func DurationSeconds(duration string) int {
	m := durationRegexp.FindStringSubmatch(duration)
	if m == nil {
		return 0
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}

	switch m[2] {
	case "m":
		return 60 * n
	case "h":
		return 3600 * n
	}

	return 0
}
