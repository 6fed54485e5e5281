package youtube

import (
	"strconv"
	"strings"
)

// parseISODuration converts the API's ISO 8601 duration strings
// ("PT1H2M3S", "P1DT2H") to whole seconds. Returns 0 for anything it
// cannot parse; feed durations are advisory until a detail fetch
// confirms them.
func parseISODuration(s string) int64 {
	if !strings.HasPrefix(s, "P") {
		return 0
	}
	s = s[1:]

	var days, hours, minutes, seconds int64
	inTime := false
	num := ""

	for _, r := range s {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9':
			num += string(r)
		default:
			n, err := strconv.ParseInt(num, 10, 64)
			if err != nil {
				return 0
			}
			num = ""
			switch {
			case r == 'D':
				days = n
			case r == 'H' && inTime:
				hours = n
			case r == 'M' && inTime:
				minutes = n
			case r == 'S' && inTime:
				seconds = n
			default:
				// Years, months, or misplaced designators never appear in
				// video durations.
				return 0
			}
		}
	}

	return days*86400 + hours*3600 + minutes*60 + seconds
}
