package analysis

import (
	"sort"
	"time"
)

// DayBucket groups one calendar day's non-system messages in transcript order.
type DayBucket struct {
	Day      time.Time
	Key      string
	Messages []MessageRecord
}

// GroupByDay buckets non-system messages by calendar date. Buckets are ordered
// by each date's first occurrence in the transcript, not by calendar order;
// callers needing calendar order sort on Day explicitly.
func GroupByDay(records []MessageRecord) []DayBucket {
	idx := make(map[string]int)
	var buckets []DayBucket
	for _, r := range records {
		if r.IsSystem {
			continue
		}
		k := dateKey(r.Timestamp)
		i, ok := idx[k]
		if !ok {
			i = len(buckets)
			idx[k] = i
			buckets = append(buckets, DayBucket{Day: dayOf(r.Timestamp), Key: k})
		}
		buckets[i].Messages = append(buckets[i].Messages, r)
	}
	return buckets
}

// ActivityByDate counts non-system messages per calendar date.
func ActivityByDate(records []MessageRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		if r.IsSystem {
			continue
		}
		out[dateKey(r.Timestamp)]++
	}
	return out
}

// TopContributors ranks aliases by message count, descending; ties keep the
// alias first-seen order.
func TopContributors(records []MessageRecord) []UserActivity {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.IsSystem || r.Sender == "" {
			continue
		}
		if _, ok := counts[r.Sender]; !ok {
			order = append(order, r.Sender)
		}
		counts[r.Sender]++
	}

	out := make([]UserActivity, 0, len(order))
	for _, name := range order {
		out = append(out, UserActivity{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
