package analysis

import (
	"testing"
	"time"
)

func mediaAt(ts time.Time, sender string, kind MediaType, reactions int) MessageRecord {
	return MessageRecord{
		Timestamp:     ts,
		Sender:        sender,
		Content:       string(kind) + " omitted",
		MediaType:     kind,
		ReactionCount: reactions,
	}
}

func TestBuildMediaStats_CountsAndSharers(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	records := []MessageRecord{
		mediaAt(d, "Alice", MediaImage, 0),
		mediaAt(d, "Alice", MediaImage, 5),
		mediaAt(d, "Bob", MediaVideo, 2),
		msgAt(d, "Carol", "plain text, not media"),
		{Timestamp: d, Content: "notice", IsSystem: true},
	}

	st := BuildMediaStats(records)
	if st.Total != 3 {
		t.Fatalf("Total=%d, want 3", st.Total)
	}
	if st.CountsByType["image"] != 2 || st.CountsByType["video"] != 1 {
		t.Fatalf("CountsByType=%v", st.CountsByType)
	}
	if len(st.TopSharers) != 2 || st.TopSharers[0].Name != "Alice" || st.TopSharers[0].Count != 2 {
		t.Fatalf("TopSharers=%v", st.TopSharers)
	}
	if len(st.MostReacted) == 0 || st.MostReacted[0].Reactions != 5 {
		t.Fatalf("MostReacted=%v", st.MostReacted)
	}
}

func TestBuildMediaStats_PercentagesSumToHundred(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	records := []MessageRecord{
		mediaAt(d, "Alice", MediaImage, 0),
		mediaAt(d, "Bob", MediaVideo, 0),
		mediaAt(d, "Carol", MediaAudio, 0),
	}

	st := BuildMediaStats(records)
	sum := 0
	for _, p := range st.Percentages {
		sum += p
	}
	if sum != 100 {
		t.Fatalf("percentages=%v sum to %d, want 100", st.Percentages, sum)
	}
	// Equal remainders break ties on type name, so audio takes the leftover.
	if st.Percentages["audio"] != 34 || st.Percentages["image"] != 33 || st.Percentages["video"] != 33 {
		t.Fatalf("percentages=%v, want audio=34 image=33 video=33", st.Percentages)
	}
}

func TestBuildMediaStats_Empty(t *testing.T) {
	t.Parallel()

	st := BuildMediaStats(nil)
	if st.Total != 0 || len(st.Percentages) != 0 || len(st.TopSharers) != 0 || len(st.MostReacted) != 0 {
		t.Fatalf("stats=%+v, want zeroed", st)
	}
}
