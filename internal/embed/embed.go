// Package embed converts user-supplied music and video URLs into URLs
// suitable for iframe embedding. Absence of an embed is a normal outcome,
// not a failure: callers fall back to rendering a plain link.
package embed

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform is the declared type of a link. The conversion switch is
// exhaustive over these values; anything unknown yields no embed.
type Platform string

const (
	Spotify    Platform = "SPOTIFY"
	AppleMusic Platform = "APPLE_MUSIC"
	SoundCloud Platform = "SOUNDCLOUD"
	YouTube    Platform = "YOUTUBE"
	Instagram  Platform = "INSTAGRAM"
	TikTok     Platform = "TIKTOK"
	Facebook   Platform = "FACEBOOK"
	Twitter    Platform = "TWITTER"
	Generic    Platform = "GENERIC"
	Tour       Platform = "TOUR"
)

// Valid reports whether p is one of the declared platform tags.
func (p Platform) Valid() bool {
	switch p {
	case Spotify, AppleMusic, SoundCloud, YouTube, Instagram, TikTok,
		Facebook, Twitter, Generic, Tour:
		return true
	}
	return false
}

// Spotify paths look like /artist/<id>, optionally behind a locale
// segment such as /intl-pt.
var spotifyPath = regexp.MustCompile(`^(?:/intl-[a-zA-Z-]+)?/(artist|album|track|playlist)/([a-zA-Z0-9]+)`)

// ConvertToEmbed maps an external URL plus its declared platform to an
// embeddable URL. The second return is false when the platform/URL
// combination has no embed form. Malformed URLs never cause an error.
func ConvertToEmbed(rawURL string, platform Platform) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}

	// Already-embedded URLs pass through unchanged so the conversion is
	// idempotent.
	if isEmbedURL(u) {
		return rawURL, true
	}

	switch platform {
	case Spotify:
		return spotifyEmbed(u)
	case YouTube:
		return youtubeEmbed(u)
	case SoundCloud:
		return soundcloudEmbed(u, rawURL)
	case AppleMusic:
		return appleMusicEmbed(u)
	}
	return "", false
}

func isEmbedURL(u *url.URL) bool {
	if strings.Contains(u.Path, "/embed/") {
		return true
	}
	if strings.Contains(u.Host, "w.soundcloud.com") && strings.HasPrefix(u.Path, "/player") {
		return true
	}
	return u.Host == "embed.music.apple.com"
}

func spotifyEmbed(u *url.URL) (string, bool) {
	if !strings.Contains(u.Host, "spotify.com") {
		return "", false
	}
	m := spotifyPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return "https://open.spotify.com/embed/" + m[1] + "/" + m[2] + "?utm_source=generator&theme=0", true
}

func youtubeEmbed(u *url.URL) (string, bool) {
	var id string
	switch {
	case strings.Contains(u.Host, "youtube.com"):
		id = u.Query().Get("v")
	case u.Host == "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	}
	if id == "" {
		return "", false
	}
	return "https://www.youtube.com/embed/" + id, true
}

func soundcloudEmbed(u *url.URL, rawURL string) (string, bool) {
	if !strings.Contains(u.Host, "soundcloud.com") {
		return "", false
	}
	// Fixed player options; parameter order matters to the widget docs,
	// so the query is assembled by hand.
	return "https://w.soundcloud.com/player/?url=" + url.QueryEscape(rawURL) +
		"&color=%23ff5500&auto_play=false&hide_related=false&show_comments=true" +
		"&show_user=true&show_reposts=false&show_teaser=true&visual=true", true
}

func appleMusicEmbed(u *url.URL) (string, bool) {
	if !strings.Contains(u.Host, "music.apple.com") {
		return "", false
	}
	out := *u
	out.Host = strings.Replace(u.Host, "music.apple.com", "embed.music.apple.com", 1)
	return out.String(), true
}
