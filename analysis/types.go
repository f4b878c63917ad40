package analysis

import "time"

// ResultSchemaVersion tags cached results. Bump it whenever AnalysisResult's
// serialized shape changes so stale cache entries force recomputation.
const ResultSchemaVersion = 2

// MediaType tags messages whose content is a media placeholder.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
	MediaSticker  MediaType = "sticker"
	MediaGIF      MediaType = "gif"

	// MediaOther covers generic placeholders ("<Media omitted>") where the
	// export does not say what kind of media was sent.
	MediaOther MediaType = "media"
)

// MessageRecord is one parsed unit of the transcript. Records are created once
// by Parse and never mutated afterwards; each pipeline run owns its own slice.
type MessageRecord struct {
	Timestamp     time.Time
	Sender        string
	Content       string
	IsSystem      bool
	MediaType     MediaType
	ReactionCount int
}

// WordCloudItem is one entry of word_cloud_data.
type WordCloudItem struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// UserActivity is one row of most_active_users (and of media top-sharer lists).
type UserActivity struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DaySentiment is one day's model-scored mood, in [-1, 1].
type DaySentiment struct {
	Date      string  `json:"date"`
	Sentiment float64 `json:"sentiment"`
	Rationale string  `json:"rationale,omitempty"`
}

// DayExcerpt is the happiest or saddest scored day plus a few sample lines.
type DayExcerpt struct {
	Date      string   `json:"date"`
	Sentiment float64  `json:"sentiment"`
	Excerpts  []string `json:"excerpts"`
}

// ViralMessage is a message ranked highly by reactions and nearby replies.
type ViralMessage struct {
	Sender    string   `json:"sender"`
	Content   string   `json:"content"`
	Date      string   `json:"date"`
	Reactions int      `json:"reactions"`
	Replies   []string `json:"replies"`
	Score     int      `json:"score"`
}

// SharedLink is one extracted URL plus the engagement attributed to it.
type SharedLink struct {
	URL           string `json:"url"`
	Sender        string `json:"sender"`
	Date          string `json:"date"`
	Context       string `json:"context"`
	ReplyCount    int    `json:"reply_count"`
	ReactionCount int    `json:"reaction_count"`
}

// MediaItem is one media message, kept for most-reacted rankings.
type MediaItem struct {
	Sender    string `json:"sender"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Reactions int    `json:"reactions"`
}

// MediaStats summarizes media placeholder messages by type and sender.
type MediaStats struct {
	Total        int            `json:"total"`
	CountsByType map[string]int `json:"counts_by_type"`
	// Percentages are integer percentages per type, summing to 100 whenever
	// Total > 0 (largest-remainder rounding).
	Percentages map[string]int `json:"percentages"`
	TopSharers  []UserActivity `json:"top_sharers"`
	MostReacted []MediaItem    `json:"most_reacted"`
}

// MessageCategory is one model-detected topical cluster.
type MessageCategory struct {
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	ImpactScore  float64  `json:"impact_score"`
	Participants []string `json:"participants"`
	Context      string   `json:"context"`
}

// AnalysisResult is the single artifact handed to the rendering layer. Field
// names and shapes are a contract the renderer depends on verbatim; do not
// rename them without bumping ResultSchemaVersion.
//
// Every numeric aggregate is derived purely from the anonymized records;
// sentiment scores, categories, and the narrative strings come from the
// external model and are merged in without re-derivation.
type AnalysisResult struct {
	ActivityByDate    map[string]int    `json:"activity_by_date"`
	WordCloudData     []WordCloudItem   `json:"word_cloud_data"`
	EmojiStats        map[string]int    `json:"emoji_stats"`
	MostActiveUsers   []UserActivity    `json:"most_active_users"`
	SentimentOverTime []DaySentiment    `json:"sentiment_over_time"`
	HappiestDay       *DayExcerpt       `json:"happiest_day,omitempty"`
	SaddestDay        *DayExcerpt       `json:"saddest_day,omitempty"`
	ViralMessages     []ViralMessage    `json:"viral_messages"`
	SharedLinks       []SharedLink      `json:"shared_links"`
	MediaStats        MediaStats        `json:"media_stats"`
	MessageCategories []MessageCategory `json:"message_categories"`
	HolidayGreeting   string            `json:"holiday_greeting"`
	Poem              string            `json:"poem"`
	MemorableMoments  []string          `json:"memorable_moments"`
}
