package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const playerResponseMarker = "ytInitialPlayerResponse"

type playerResponse struct {
	VideoDetails *struct {
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	// Kind is "asr" for auto-generated tracks.
	Kind string `json:"kind"`
}

// watchPage is the parsed watch page. player is nil when the page does not
// embed a player response.
type watchPage struct {
	player *playerResponse
	doc    *goquery.Document
}

func parseWatchPage(body []byte) (*watchPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	page := &watchPage{doc: doc}

	if raw := extractPlayerJSON(body); raw != nil {
		var player playerResponse
		if err := json.Unmarshal(raw, &player); err == nil {
			page.player = &player
		}
	}
	return page, nil
}

// extractPlayerJSON finds `ytInitialPlayerResponse = {...}` in the page
// scripts and returns the object literal.
func extractPlayerJSON(body []byte) []byte {
	rest := body
	for {
		idx := bytes.Index(rest, []byte(playerResponseMarker))
		if idx < 0 {
			return nil
		}
		rest = rest[idx+len(playerResponseMarker):]
		tail := bytes.TrimLeft(rest, " \t\r\n")
		if len(tail) == 0 || tail[0] != '=' {
			continue
		}
		tail = bytes.TrimLeft(tail[1:], " \t\r\n")
		if obj := balancedObject(tail); obj != nil {
			return obj
		}
	}
}

// balancedObject returns the JSON object at the start of b, or nil when b
// does not start with a complete one.
func balancedObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// duration reads the length from the player response, then from the
// itemprop=duration microdata.
func (p *watchPage) duration() (int, error) {
	if p.player != nil && p.player.VideoDetails != nil {
		if secs, err := strconv.Atoi(p.player.VideoDetails.LengthSeconds); err == nil && secs > 0 {
			return secs, nil
		}
	}
	if content, ok := p.doc.Find(`meta[itemprop="duration"]`).First().Attr("content"); ok {
		return parseISODuration(content)
	}
	return 0, errors.New("duration not found in watch page")
}

func (p *watchPage) captionTracks() []captionTrack {
	if p.player == nil || p.player.Captions == nil {
		return nil
	}
	return p.player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 time duration such as PT1H2M3S to seconds.
func parseISODuration(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil || s == "PT" {
		return 0, errors.New("malformed ISO-8601 duration " + strconv.Quote(s))
	}
	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, err
		}
		total += n * unit
	}
	return total, nil
}

// pickTrack walks languages in order. For each code a manual track beats an
// auto-generated one.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		var auto *captionTrack
		for i := range tracks {
			t := tracks[i]
			if !strings.EqualFold(t.LanguageCode, lang) || t.BaseURL == "" {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	return captionTrack{}, false
}
