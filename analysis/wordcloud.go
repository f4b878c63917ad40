package analysis

import (
	"regexp"
	"sort"
	"strings"
)

const (
	wordCloudLimit = 50
	minWordRunes   = 4
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// stopWords lists frequent words that add no signal to the cloud. Only words
// long enough to pass minWordRunes need to appear here.
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "just": {}, "what": {},
	"your": {}, "from": {}, "they": {}, "will": {}, "would": {}, "about": {},
	"there": {}, "their": {}, "when": {}, "been": {}, "were": {}, "which": {},
	"then": {}, "them": {}, "than": {}, "some": {}, "because": {}, "like": {},
	"http": {}, "https": {},
}

// WordCloud tokenizes message content (case-folded) and returns the top words
// by frequency. Ties keep first-seen order. Media placeholders and system
// notices are skipped.
func WordCloud(records []MessageRecord) []WordCloudItem {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.IsSystem || r.MediaType != "" {
			continue
		}
		for _, w := range wordPattern.FindAllString(strings.ToLower(r.Content), -1) {
			if len([]rune(w)) < minWordRunes {
				continue
			}
			if _, skip := stopWords[w]; skip {
				continue
			}
			if _, ok := counts[w]; !ok {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	items := make([]WordCloudItem, 0, len(order))
	for _, w := range order {
		items = append(items, WordCloudItem{Text: w, Value: counts[w]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Value > items[j].Value
	})
	if len(items) > wordCloudLimit {
		items = items[:wordCloudLimit]
	}
	return items
}
