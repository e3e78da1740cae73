package video

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"content-curator/pkg/domain"
)

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Text string `xml:",chardata"`
}

// Transcript returns the caption text of video id in the first configured
// language that has a track. The second result is false when no transcript
// could be obtained; the cause is only logged.
func (r *Resolver) Transcript(ctx context.Context, id string) (string, bool) {
	text, err := r.fetchTranscript(ctx, id)
	if err != nil {
		r.logger.Debug("transcript unavailable", zap.String("id", id), zap.Error(err))
		return "", false
	}
	return text, true
}

func (r *Resolver) fetchTranscript(ctx context.Context, id string) (string, error) {
	page, err := r.fetchWatchPage(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}

	tracks := page.captionTracks()
	if len(tracks) == 0 {
		return "", fmt.Errorf("%w: no caption tracks", domain.ErrTranscriptUnavailable)
	}
	track, ok := pickTrack(tracks, r.languages)
	if !ok {
		return "", fmt.Errorf("%w: no track in %s", domain.ErrTranscriptUnavailable, strings.Join(r.languages, ", "))
	}

	trackURL, err := r.resolveTrackURL(track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}

	resp, err := r.page.Fetch(ctx, trackURL, maxTimedTextBytes)
	if err != nil {
		return "", fmt.Errorf("%w: timed text: %v", domain.ErrTranscriptUnavailable, err)
	}

	text, err := joinTimedText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}
	return text, nil
}

// resolveTrackURL makes relative caption URLs absolute against the watch base.
func (r *Resolver) resolveTrackURL(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse caption url: %w", err)
	}
	if ref.IsAbs() {
		return raw, nil
	}
	base, err := url.Parse(r.watchBase)
	if err != nil {
		return "", fmt.Errorf("parse watch base: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// joinTimedText concatenates the <text> segments of a timed-text document
// with single spaces.
func joinTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timed text: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Segments are HTML-escaped inside the XML escaping.
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty timed text")
	}
	return strings.Join(parts, " "), nil
}
