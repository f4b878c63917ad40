package analysis

import (
	"fmt"
	"testing"
	"time"
)

func TestWordCloud_CountsAndFilters(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	records := []MessageRecord{
		msgAt(d, "Alice", "Pizza night PIZZA party"),
		msgAt(d, "Bob", "pizza was so good"),
		{Timestamp: d, Content: "Alice created this group", IsSystem: true},
		{Timestamp: d, Sender: "Bob", Content: "image omitted", MediaType: MediaImage},
	}

	items := WordCloud(records)
	if len(items) == 0 || items[0].Text != "pizza" || items[0].Value != 3 {
		t.Fatalf("items=%v, want pizza/3 first", items)
	}
	for _, it := range items {
		if it.Text == "was" || it.Text == "so" {
			t.Fatalf("short word %q survived the length filter", it.Text)
		}
		if it.Text == "this" {
			t.Fatalf("stop word leaked into the cloud")
		}
		if it.Text == "image" || it.Text == "omitted" {
			t.Fatalf("media placeholder tokenized: %v", items)
		}
	}
}

func TestWordCloud_CapsAtFifty(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	var records []MessageRecord
	for i := 0; i < 60; i++ {
		records = append(records, msgAt(d, "Alice", fmt.Sprintf("word%04d", i)))
	}
	items := WordCloud(records)
	if len(items) != 50 {
		t.Fatalf("items=%d, want 50", len(items))
	}
}

func TestWordCloud_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	records := []MessageRecord{
		msgAt(d, "Alice", "zebra apple"),
	}
	items := WordCloud(records)
	if len(items) != 2 || items[0].Text != "zebra" || items[1].Text != "apple" {
		t.Fatalf("items=%v, want zebra before apple", items)
	}
}
