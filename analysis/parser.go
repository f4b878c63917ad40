package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a transcript the pipeline cannot work with at all. It is
// the only fatal error class: everything downstream degrades instead.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse transcript: " + e.Reason
}

// controlChars matches the unicode direction marks, zero-width characters, and
// non-breaking spaces WhatsApp sprinkles around phone numbers and system
// notices. They are stripped from every line before format matching.
var controlChars = regexp.MustCompile("[\u200b-\u200f\u202a-\u202f\u00a0\ufeff]+")

// lineFormat is one supported "timestamp - sender: content" export shape.
// Formats are tried in slice order; the first line that matches one locks that
// format for the remainder of the transcript.
type lineFormat struct {
	name    string
	pattern *regexp.Regexp // group 1: timestamp, group 2: rest of the line
	layouts []string       // time layouts tried in order against group 1
}

var lineFormats = []lineFormat{
	{
		name:    "bracket-24h",
		pattern: regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}(?::\d{2})?)\] (.+)$`),
		layouts: []string{
			"2/1/2006, 15:04:05",
			"2/1/06, 15:04:05",
			"2/1/2006, 15:04",
			"2/1/06, 15:04",
		},
	},
	{
		name:    "dash-12h",
		pattern: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}(?::\d{2})? [AP]M) - (.+)$`),
		layouts: []string{
			"1/2/06, 3:04 PM",
			"1/2/2006, 3:04 PM",
			"1/2/06, 3:04:05 PM",
			"1/2/2006, 3:04:05 PM",
		},
	},
	{
		name:    "dash-24h",
		pattern: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}(?::\d{2})?) - (.+)$`),
		layouts: []string{
			"1/2/06, 15:04",
			"1/2/2006, 15:04",
			"1/2/06, 15:04:05",
			"1/2/2006, 15:04:05",
		},
	},
}

// reactionSuffix is the optional inline reaction annotation, e.g. "(3 reactions)".
var reactionSuffix = regexp.MustCompile(`\s*\((\d+) reactions?\)$`)

// mediaPlaceholders are matched by fixed substring, most specific first.
var mediaPlaceholders = []struct {
	substr string
	kind   MediaType
}{
	{"image omitted", MediaImage},
	{"video omitted", MediaVideo},
	{"audio omitted", MediaAudio},
	{"document omitted", MediaDocument},
	{"sticker omitted", MediaSticker},
	{"GIF omitted", MediaGIF},
	{"<Media omitted>", MediaOther},
}

// Parse turns raw transcript text into ordered message records. It is total:
// lines that match no format fold into the previous message's content, lines
// before the first recognized message are dropped, and empty input yields an
// empty slice. Callers that require at least one message check afterwards.
func Parse(raw string) []MessageRecord {
	var (
		records []MessageRecord
		format  *lineFormat
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		line = controlChars.ReplaceAllString(line, "")

		ts, rest, ok := matchLine(&format, line)
		if !ok {
			if len(records) > 0 && strings.TrimSpace(line) != "" {
				records[len(records)-1].Content += "\n" + line
			}
			continue
		}
		records = append(records, buildRecord(ts, rest))
	}
	return records
}

// matchLine tries the locked format, or all formats if none is locked yet. A
// line that looks like a timestamp but parses under no configured layout is a
// continuation, never a hard error.
func matchLine(format **lineFormat, line string) (time.Time, string, bool) {
	if *format != nil {
		f := *format
		if m := f.pattern.FindStringSubmatch(line); m != nil {
			if ts, err := parseTimestamp(f.layouts, m[1]); err == nil {
				return ts, m[2], true
			}
		}
		return time.Time{}, "", false
	}

	for i := range lineFormats {
		f := &lineFormats[i]
		m := f.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := parseTimestamp(f.layouts, m[1])
		if err != nil {
			continue
		}
		*format = f
		return ts, m[2], true
	}
	return time.Time{}, "", false
}

func parseTimestamp(layouts []string, s string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func buildRecord(ts time.Time, rest string) MessageRecord {
	sender, content, ok := strings.Cut(rest, ": ")
	if !ok {
		// Timestamp with no "sender:" delimiter, e.g. "Alice joined using
		// this group's invite link".
		return MessageRecord{Timestamp: ts, Content: strings.TrimSpace(rest), IsSystem: true}
	}

	sender = strings.TrimSpace(sender)
	content = strings.TrimSpace(content)
	if isSystemText(content) {
		return MessageRecord{Timestamp: ts, Sender: sender, Content: content, IsSystem: true}
	}

	rec := MessageRecord{Timestamp: ts, Sender: sender, Content: content}
	if m := reactionSuffix.FindStringSubmatch(rec.Content); m != nil {
		rec.ReactionCount, _ = strconv.Atoi(m[1])
		rec.Content = strings.TrimSpace(strings.TrimSuffix(rec.Content, m[0]))
	}
	rec.MediaType = mediaTypeOf(rec.Content)
	return rec
}

// isSystemText recognizes membership/security notices that the export
// attributes to a sender but that no person actually typed.
func isSystemText(content string) bool {
	switch {
	case strings.HasSuffix(content, "created this group"),
		strings.HasSuffix(content, "joined using this group's invite link"),
		strings.HasSuffix(content, "changed their phone number"),
		strings.HasPrefix(content, "Your security code with"),
		strings.HasPrefix(content, "Messages and calls are end-to-end encrypted"):
		return true
	case content == "This message was deleted", content == "You deleted this message":
		return true
	case strings.Contains(content, " added "),
		strings.Contains(content, " removed "),
		strings.HasSuffix(content, " left"):
		// Membership notices: "X added Y", "X removed Y", "X left".
		return true
	}
	return false
}

func mediaTypeOf(content string) MediaType {
	for _, p := range mediaPlaceholders {
		if strings.Contains(content, p.substr) {
			return p.kind
		}
	}
	return ""
}
