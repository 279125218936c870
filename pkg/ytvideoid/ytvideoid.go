// Package ytvideoid extracts YouTube video identifiers from user-supplied
// URLs or bare ids.
package ytvideoid

import (
	"fmt"
	"regexp"
)

var (
	urlRe    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu(?:\.be/|be\.com/(?:embed/|watch\?v=))([A-Za-z0-9_-]+)`)
	bareIdRe = regexp.MustCompile(`^([A-Za-z0-9_-]+)$`)
)

// Extract returns the video id contained in raw, accepting youtu.be links,
// youtube.com watch/embed links and bare ids. The second return value is
// false when raw matches none of those shapes.
func Extract(raw string) (string, bool) {
	if m := urlRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	if m := bareIdRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	return "", false
}

// ThumbnailURL returns the standard thumbnail location for a video id.
func ThumbnailURL(videoId string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId)
}
