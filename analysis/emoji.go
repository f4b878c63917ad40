package analysis

// emojiRanges covers the blocks chat exports actually emit: the main emoji
// plane plus miscellaneous symbols and dingbats.
var emojiRanges = []struct{ lo, hi rune }{
	{0x1F300, 0x1F9FF},
	{0x1FA70, 0x1FAFF},
	{0x2600, 0x27BF},
}

func isEmoji(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// EmojiStats counts every emoji code point across non-system message content.
// The mapping is unordered.
func EmojiStats(records []MessageRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		if r.IsSystem {
			continue
		}
		for _, ru := range r.Content {
			if isEmoji(ru) {
				out[string(ru)]++
			}
		}
	}
	return out
}
