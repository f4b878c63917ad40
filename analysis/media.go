package analysis

import "sort"

const mostReactedLimit = 5

// BuildMediaStats summarizes media placeholder messages: counts and integer
// percentages by type, senders ranked by media count, and the most-reacted
// media items. Empty input yields zeroed stats, never an error.
func BuildMediaStats(records []MessageRecord) MediaStats {
	st := MediaStats{
		CountsByType: make(map[string]int),
		Percentages:  make(map[string]int),
	}

	sharerCounts := make(map[string]int)
	var sharerOrder []string
	var items []MediaItem

	for _, r := range records {
		if r.IsSystem || r.MediaType == "" {
			continue
		}
		st.Total++
		st.CountsByType[string(r.MediaType)]++
		if r.Sender != "" {
			if _, ok := sharerCounts[r.Sender]; !ok {
				sharerOrder = append(sharerOrder, r.Sender)
			}
			sharerCounts[r.Sender]++
		}
		items = append(items, MediaItem{
			Sender:    r.Sender,
			Type:      string(r.MediaType),
			Date:      dateKey(r.Timestamp),
			Reactions: r.ReactionCount,
		})
	}

	st.Percentages = percentagesOf(st.CountsByType, st.Total)

	st.TopSharers = make([]UserActivity, 0, len(sharerOrder))
	for _, name := range sharerOrder {
		st.TopSharers = append(st.TopSharers, UserActivity{Name: name, Count: sharerCounts[name]})
	}
	sort.SliceStable(st.TopSharers, func(i, j int) bool {
		return st.TopSharers[i].Count > st.TopSharers[j].Count
	})

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Reactions > items[j].Reactions
	})
	if len(items) > mostReactedLimit {
		items = items[:mostReactedLimit]
	}
	st.MostReacted = items

	return st
}

// percentagesOf computes integer percentages that sum to exactly 100 via
// largest-remainder rounding. Remainder ties break on type name so the result
// is deterministic.
func percentagesOf(counts map[string]int, total int) map[string]int {
	out := make(map[string]int, len(counts))
	if total == 0 {
		return out
	}

	type share struct {
		key       string
		floor     int
		remainder int
	}
	shares := make([]share, 0, len(counts))
	allocated := 0
	for key, c := range counts {
		f := c * 100 / total
		shares = append(shares, share{key: key, floor: f, remainder: c*100 - f*total})
		allocated += f
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].key < shares[j].key
	})

	left := 100 - allocated
	for i := range shares {
		p := shares[i].floor
		if left > 0 {
			p++
			left--
		}
		out[shares[i].key] = p
	}
	return out
}
