package format

import "strings"

const emphasisMarker = "**"

// ParseInline splits s into plain and emphasized runs. An opener without a
// matching closer is kept as literal text. Empty runs are never emitted.
func ParseInline(s string) []Run {
	var runs []Run
	rest := s
	for rest != "" {
		open := strings.Index(rest, emphasisMarker)
		if open < 0 {
			break
		}
		afterOpen := rest[open+len(emphasisMarker):]
		closeAt := strings.Index(afterOpen, emphasisMarker)
		if closeAt < 0 {
			break
		}
		runs = appendRun(runs, rest[:open], false)
		runs = appendRun(runs, afterOpen[:closeAt], true)
		rest = afterOpen[closeAt+len(emphasisMarker):]
	}
	return appendRun(runs, rest, false)
}

func appendRun(runs []Run, text string, emphasized bool) []Run {
	if text == "" {
		return runs
	}
	return append(runs, Run{Text: text, Emphasized: emphasized})
}
