package video

import (
	"fmt"
	"regexp"
	"strings"

	"content-curator/pkg/domain"
)

// idMatchers are consulted in order; the first match wins.
var idMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`^([0-9A-Za-z_-]{11})$`),
}

// ExtractID returns the 11-character video id carried by ref. ref may be a
// watch URL, a short youtu.be link, an embed URL or a bare id.
func ExtractID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, re := range idMatchers {
		if m := re.FindStringSubmatch(ref); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidReference, ref)
}
