package upstream

import "strings"

// CleanReply normalizes upstream reply text: a literal speaker label
// ("진우:" plus optional whitespace) is stripped only when it opens the
// string, emoji are removed, and surrounding whitespace is trimmed.
func CleanReply(speakerName, reply string) string {
	if speakerName != "" {
		if rest, ok := strings.CutPrefix(reply, speakerName+":"); ok {
			reply = strings.TrimLeft(rest, " \t")
		}
	}
	return strings.TrimSpace(stripEmoji(reply))
}

// stripEmoji removes the emoji blocks the reply service is known to emit:
// emoticons, misc symbols and pictographs, transport, regional indicators,
// and the two dingbat/symbol ranges.
func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F600 && r <= 0x1F64F:
			return -1
		case r >= 0x1F300 && r <= 0x1F5FF:
			return -1
		case r >= 0x1F680 && r <= 0x1F6FF:
			return -1
		case r >= 0x1F1E0 && r <= 0x1F1FF:
			return -1
		case r >= 0x2600 && r <= 0x26FF:
			return -1
		case r >= 0x2700 && r <= 0x27BF:
			return -1
		}
		return r
	}, s)
}
