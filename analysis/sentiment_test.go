package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quietfield/chatlens/analysis/provider"
)

// fakeClient scripts provider responses for tests.
type fakeClient struct {
	fn func(ctx context.Context, req provider.Request) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, req provider.Request) (string, error) {
	return f.fn(ctx, req)
}

func dayBucket(day time.Time, msgs ...MessageRecord) DayBucket {
	return DayBucket{Day: day, Key: dateKey(day), Messages: msgs}
}

func TestScoreSentiment_OutputSortedByCalendarDate(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	// Buckets arrive in first-occurrence order; earlier days finish last.
	buckets := []DayBucket{
		dayBucket(d3, msgAt(d3, "A", "x")),
		dayBucket(d1, msgAt(d1, "A", "y")),
		dayBucket(d2, msgAt(d2, "A", "z")),
	}
	client := &fakeClient{fn: func(ctx context.Context, req provider.Request) (string, error) {
		time.Sleep(time.Duration(len(req.Input)%7) * time.Millisecond)
		return `{"sentiment": 0.5, "rationale": "steady"}`, nil
	}}

	got := ScoreSentiment(context.Background(), client, buckets, 3, nil)
	if len(got) != 3 {
		t.Fatalf("scores=%d, want 3", len(got))
	}
	want := []string{"1/1/24", "1/2/24", "1/3/24"}
	for i, w := range want {
		if got[i].Date != w {
			t.Fatalf("order=%v, want %v", got, want)
		}
	}
}

func TestScoreSentiment_OutOfRangeScoreIsNeutral(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{fn: func(ctx context.Context, req provider.Request) (string, error) {
		return `{"sentiment": 3.5, "rationale": "way too happy"}`, nil
	}}

	got := ScoreSentiment(context.Background(), client, []DayBucket{dayBucket(d, msgAt(d, "A", "hi"))}, 1, nil)
	if len(got) != 1 {
		t.Fatalf("scores=%d, want 1", len(got))
	}
	if got[0].Sentiment != 0 || got[0].Rationale != "" {
		t.Fatalf("score=%+v, want neutral fallback", got[0])
	}
}

func TestScoreSentiment_ClientFailureIsNeutral(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeClient{fn: func(ctx context.Context, req provider.Request) (string, error) {
		return "", errors.New("model unavailable")
	}}

	got := ScoreSentiment(context.Background(), client, []DayBucket{dayBucket(d, msgAt(d, "A", "hi"))}, 1, nil)
	if len(got) != 1 || got[0].Sentiment != 0 || got[0].Date != "1/1/24" {
		t.Fatalf("scores=%+v, want one neutral entry for the day", got)
	}
}

func TestScoreSentiment_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	const limit = 2
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	client := &fakeClient{fn: func(ctx context.Context, req provider.Request) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return `{"sentiment": 0, "rationale": ""}`, nil
	}}

	var buckets []DayBucket
	for i := 0; i < 8; i++ {
		d := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		buckets = append(buckets, dayBucket(d, msgAt(d, "A", fmt.Sprintf("msg %d", i))))
	}

	got := ScoreSentiment(context.Background(), client, buckets, limit, nil)
	if len(got) != len(buckets) {
		t.Fatalf("scores=%d, want %d", len(got), len(buckets))
	}
	if peak > limit {
		t.Fatalf("peak in-flight=%d, want <= %d", peak, limit)
	}
}

func TestScoreSentiment_EmptyBuckets(t *testing.T) {
	t.Parallel()

	client := &fakeClient{fn: func(ctx context.Context, req provider.Request) (string, error) {
		t.Fatalf("client called for empty input")
		return "", nil
	}}
	if got := ScoreSentiment(context.Background(), client, nil, 1, nil); got != nil {
		t.Fatalf("scores=%v, want nil", got)
	}
}

func TestMoodExtremes_PicksHighestAndLowest(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	buckets := []DayBucket{
		dayBucket(d1, msgAt(d1, "A", "meh")),
		dayBucket(d2,
			msgAt(d2, "A", "best day ever"),
			MessageRecord{Timestamp: d2, Sender: "B", Content: "image omitted", MediaType: MediaImage},
			msgAt(d2, "B", "truly great"),
		),
		dayBucket(d3, msgAt(d3, "A", "awful news")),
	}
	scores := []DaySentiment{
		{Date: "1/1/24", Sentiment: 0.1},
		{Date: "1/2/24", Sentiment: 0.9},
		{Date: "1/3/24", Sentiment: -0.7},
	}

	hi, lo := MoodExtremes(scores, buckets)
	if hi == nil || lo == nil {
		t.Fatalf("extremes nil: %v %v", hi, lo)
	}
	if hi.Date != "1/2/24" || hi.Sentiment != 0.9 {
		t.Fatalf("happiest=%+v", hi)
	}
	if lo.Date != "1/3/24" || lo.Sentiment != -0.7 {
		t.Fatalf("saddest=%+v", lo)
	}
	if len(hi.Excerpts) != 2 {
		t.Fatalf("excerpts=%v, want the two text messages only", hi.Excerpts)
	}
}

func TestMoodExtremes_Empty(t *testing.T) {
	t.Parallel()

	hi, lo := MoodExtremes(nil, nil)
	if hi != nil || lo != nil {
		t.Fatalf("extremes=%v,%v, want nils", hi, lo)
	}
}
