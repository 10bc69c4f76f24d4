package media

import (
	"errors"
	"fmt"
	u "net/url"
	"regexp"
	"strings"
)

var (
	errEmptyTitle   = errors.New("part title is empty after normalization")
	errVideoQuality = errors.New("video quality not available for this part")
	errAudioQuality = errors.New("audio quality not available for this part")
)

var (
	bvidRegex = regexp.MustCompile(`(BV[0-9A-Za-z]{10})`)
	avidRegex = regexp.MustCompile(`\b(av\d+)\b`)
)

// ExtractVideoID pulls the stable video identifier (bvid or avid) out of a
// watch-page URL. Bare ids are accepted too.
func ExtractVideoID(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("empty URL")
	}
	if m := bvidRegex.FindString(trimmed); m != "" && !strings.Contains(trimmed, "/") {
		return m, nil
	}
	parsed, err := u.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Host != "" &&
		!strings.HasSuffix(parsed.Host, "bilibili.com") &&
		!strings.HasSuffix(parsed.Host, "b23.tv") {
		return "", fmt.Errorf("unsupported host: %s", parsed.Host)
	}
	if m := bvidRegex.FindString(parsed.Path); m != "" {
		return m, nil
	}
	if m := avidRegex.FindString(parsed.Path); m != "" {
		return m, nil
	}
	if m := bvidRegex.FindString(trimmed); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("no video id found in %q", rawURL)
}
