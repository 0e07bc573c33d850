package tabulate

import "strings"

// auto disables a window marker
const auto = "auto"

// Window returns the lines from the first one containing start up to, but
// not including, the first later one containing end. An empty or "auto"
// marker leaves that side open. When start is never found nothing is
// returned.
func Window(lines []string, start, end string) []string {
	start = marker(start)
	end = marker(end)

	from := 0
	if start != "" {
		from = -1
		for i, line := range lines {
			if strings.Contains(line, start) {
				from = i
				break
			}
		}
		if from < 0 {
			return nil
		}
	}

	to := len(lines)
	if end != "" {
		for i := from + 1; i < len(lines); i++ {
			if strings.Contains(lines[i], end) {
				to = i
				break
			}
		}
	}
	return lines[from:to]
}

func marker(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, auto) {
		return ""
	}
	return s
}
