package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/quietfield/chatlens/analysis/fileutils"
)

const (
	// replyWindow bounds how many following messages can count as replies to
	// one message. Exports carry no thread structure, so proximity is the
	// only attribution signal available.
	replyWindow = 5

	viralLimit     = 5
	reactionWeight = 2

	replyExcerptRunes = 120
	linkContextRunes  = 200
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// repliesTo collects the non-system messages from other senders within the
// lookahead window after records[i].
func repliesTo(records []MessageRecord, i int) []MessageRecord {
	var replies []MessageRecord
	for j := i + 1; j < len(records) && len(replies) < replyWindow; j++ {
		if records[j].IsSystem {
			continue
		}
		if records[j].Sender == records[i].Sender {
			continue
		}
		replies = append(replies, records[j])
	}
	return replies
}

// ViralMessages ranks messages by engagement: reactions weigh double, replies
// within the lookahead window count once each. Messages with zero engagement
// are skipped; ties keep transcript order.
func ViralMessages(records []MessageRecord) []ViralMessage {
	var items []ViralMessage
	for i, r := range records {
		if r.IsSystem {
			continue
		}
		replies := repliesTo(records, i)
		score := r.ReactionCount*reactionWeight + len(replies)
		if score == 0 {
			continue
		}

		excerpts := make([]string, 0, len(replies))
		for _, rep := range replies {
			excerpts = append(excerpts, fileutils.Truncate(rep.Content, replyExcerptRunes))
		}
		items = append(items, ViralMessage{
			Sender:    r.Sender,
			Content:   r.Content,
			Date:      dateKey(r.Timestamp),
			Reactions: r.ReactionCount,
			Replies:   excerpts,
			Score:     score,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if len(items) > viralLimit {
		items = items[:viralLimit]
	}
	return items
}

// SharedLinks extracts URLs from message content. Each unique URL's first
// occurrence records the surrounding message as context plus the replies and
// reactions attributable to it within the lookahead window; links rank by
// combined engagement descending, ties in transcript order.
func SharedLinks(records []MessageRecord) []SharedLink {
	seen := make(map[string]struct{})
	var links []SharedLink
	for i, r := range records {
		if r.IsSystem {
			continue
		}
		for _, u := range urlPattern.FindAllString(r.Content, -1) {
			u = strings.TrimRight(u, ".,;:!?)>\"'")
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}

			links = append(links, SharedLink{
				URL:           u,
				Sender:        r.Sender,
				Date:          dateKey(r.Timestamp),
				Context:       fileutils.Truncate(r.Content, linkContextRunes),
				ReplyCount:    len(repliesTo(records, i)),
				ReactionCount: r.ReactionCount,
			})
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].ReplyCount+links[i].ReactionCount > links[j].ReplyCount+links[j].ReactionCount
	})
	return links
}
