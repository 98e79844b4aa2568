package embed

import "testing"

func TestConvertToEmbed(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		platform Platform
		want     string
		wantOK   bool
	}{
		{
			name:     "spotify artist",
			url:      "https://open.spotify.com/artist/3TVXtAsR1Inumwj472S9r4",
			platform: Spotify,
			want:     "https://open.spotify.com/embed/artist/3TVXtAsR1Inumwj472S9r4?utm_source=generator&theme=0",
			wantOK:   true,
		},
		{
			name:     "spotify artist with locale prefix",
			url:      "https://open.spotify.com/intl-pt/artist/3TVXtAsR1Inumwj472S9r4",
			platform: Spotify,
			want:     "https://open.spotify.com/embed/artist/3TVXtAsR1Inumwj472S9r4?utm_source=generator&theme=0",
			wantOK:   true,
		},
		{
			name:     "spotify track",
			url:      "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			platform: Spotify,
			want:     "https://open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC?utm_source=generator&theme=0",
			wantOK:   true,
		},
		{
			name:     "spotify wrong host",
			url:      "https://example.com/artist/3TVXtAsR1Inumwj472S9r4",
			platform: Spotify,
			wantOK:   false,
		},
		{
			name:     "spotify unsupported path",
			url:      "https://open.spotify.com/show/abc123",
			platform: Spotify,
			wantOK:   false,
		},
		{
			name:     "youtube watch URL",
			url:      "https://youtube.com/watch?v=dQw4w9WgXcQ",
			platform: YouTube,
			want:     "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantOK:   true,
		},
		{
			name:     "youtube short URL",
			url:      "https://youtu.be/dQw4w9WgXcQ",
			platform: YouTube,
			want:     "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantOK:   true,
		},
		{
			name:     "youtube missing video id",
			url:      "https://www.youtube.com/feed/subscriptions",
			platform: YouTube,
			wantOK:   false,
		},
		{
			name:     "soundcloud track",
			url:      "https://soundcloud.com/artist/track",
			platform: SoundCloud,
			want:     "https://w.soundcloud.com/player/?url=https%3A%2F%2Fsoundcloud.com%2Fartist%2Ftrack&color=%23ff5500&auto_play=false&hide_related=false&show_comments=true&show_user=true&show_reposts=false&show_teaser=true&visual=true",
			wantOK:   true,
		},
		{
			name:     "apple music artist",
			url:      "https://music.apple.com/us/artist/x/123",
			platform: AppleMusic,
			want:     "https://embed.music.apple.com/us/artist/x/123",
			wantOK:   true,
		},
		{
			name:     "apple music preserves query",
			url:      "https://music.apple.com/us/album/y/456?i=789",
			platform: AppleMusic,
			want:     "https://embed.music.apple.com/us/album/y/456?i=789",
			wantOK:   true,
		},
		{
			name:     "generic type has no embed",
			url:      "https://example.com/anything",
			platform: Generic,
			wantOK:   false,
		},
		{
			name:     "instagram has no embed",
			url:      "https://instagram.com/someone",
			platform: Instagram,
			wantOK:   false,
		},
		{
			name:     "malformed URL",
			url:      "://not-a-url",
			platform: Spotify,
			wantOK:   false,
		},
		{
			name:     "relative URL",
			url:      "/artist/3TVXtAsR1Inumwj472S9r4",
			platform: Spotify,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertToEmbed(tt.url, tt.platform)
			if ok != tt.wantOK {
				t.Fatalf("ConvertToEmbed(%q, %q) ok = %v, want %v", tt.url, tt.platform, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ConvertToEmbed(%q, %q) = %q, want %q", tt.url, tt.platform, got, tt.want)
			}
		})
	}
}

func TestConvertToEmbedIdempotent(t *testing.T) {
	embedded := []struct {
		url      string
		platform Platform
	}{
		{"https://open.spotify.com/embed/artist/3TVXtAsR1Inumwj472S9r4?utm_source=generator&theme=0", Spotify},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", YouTube},
		{"https://w.soundcloud.com/player/?url=https%3A%2F%2Fsoundcloud.com%2Fa%2Fb&visual=true", SoundCloud},
		{"https://embed.music.apple.com/us/artist/x/123", AppleMusic},
	}

	for _, e := range embedded {
		got, ok := ConvertToEmbed(e.url, e.platform)
		if !ok {
			t.Errorf("ConvertToEmbed(%q) not ok, want pass-through", e.url)
			continue
		}
		if got != e.url {
			t.Errorf("ConvertToEmbed(%q) = %q, want unchanged", e.url, got)
		}
	}
}

func TestPlatformValid(t *testing.T) {
	for _, p := range []Platform{Spotify, AppleMusic, SoundCloud, YouTube,
		Instagram, TikTok, Facebook, Twitter, Generic, Tour} {
		if !p.Valid() {
			t.Errorf("Platform(%q).Valid() = false, want true", p)
		}
	}
	for _, p := range []Platform{"", "spotify", "MYSPACE"} {
		if p.Valid() {
			t.Errorf("Platform(%q).Valid() = true, want false", p)
		}
	}
}
