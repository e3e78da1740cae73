package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ContentType is the tagged variant of a catalog record.
type ContentType string

const (
	// ContentTypeVideoLink is an embeddable video reference. The media itself is never downloaded.
	ContentTypeVideoLink ContentType = "video_link"
	// ContentTypeText is scraped article text.
	ContentTypeText ContentType = "text"
)

// ParseContentType accepts the persisted names plus the short aliases used by batch files.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ContentTypeVideoLink), "video", "youtube":
		return ContentTypeVideoLink, nil
	case string(ContentTypeText), "article":
		return ContentTypeText, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// Level is a CEFR proficiency tag.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists the closed CEFR enumeration from least to most advanced.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Valid reports whether l is one of the six CEFR levels.
func (l Level) Valid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

// ParseLevel validates s against the CEFR enumeration. Matching is exact.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q (want one of A1, A2, B1, B2, C1, C2)", ErrInvalidLevel, s)
	}
	return l, nil
}

// TimestampLayout is the fixed-width UTC layout used to persist created_at.
// Fixed width keeps lexical and chronological order identical.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a persisted created_at value.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ContentRecord is the unit of the catalog.
type ContentRecord struct {
	ID        string      `json:"id"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	SourceURL string      `json:"source_url"`
	EmbedURL  *string     `json:"embed_url"`
	Level     Level       `json:"level"`
	// Duration is in seconds; nil when unknown.
	Duration *int `json:"duration"`
	// Transcript holds the video transcript or, for text, the article body.
	Transcript *string   `json:"transcript"`
	Tags       []string  `json:"tags"`
	Channel    *string   `json:"channel"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the record invariants that must hold before persistence.
func (r *ContentRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.SourceURL) == "" {
		return fmt.Errorf("%w: source_url is required", ErrInvalidRecord)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, r.Level)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidRecord)
	}

	switch r.Type {
	case ContentTypeVideoLink:
		if r.EmbedURL == nil {
			return fmt.Errorf("%w: video_link requires embed_url", ErrInvalidRecord)
		}
		u, err := url.Parse(*r.EmbedURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%w: malformed embed_url %q", ErrInvalidRecord, *r.EmbedURL)
		}
	case ContentTypeText:
		if r.EmbedURL != nil {
			return fmt.Errorf("%w: text must not carry embed_url", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, r.Type)
	}
	return nil
}

// JoinTags serializes tags the way the catalog stores them.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags reverses JoinTags. The empty string decodes to an empty list.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// ParseTagList splits user input on commas and trims each label.
// Empty labels are dropped; order and duplicates are kept.
func ParseTagList(s string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// Stats is the aggregate view of the catalog.
type Stats struct {
	Total  int64 `json:"total"`
	Videos int64 `json:"videos"`
	Text   int64 `json:"text"`
	// TotalDuration sums present durations in seconds. Zero when none is known.
	TotalDuration int64 `json:"total_duration"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
