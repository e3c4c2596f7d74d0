package video

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResolve_YouTubeWatch(t *testing.T) {
	html, ok := Resolve(Parameters{
		Host:  "www.youtube.com",
		Path:  "/watch",
		Query: map[string]string{"v": "yLORZbc-PZw"},
	})
	require.True(t, ok)
	assert.Equal(t,
		`<iframe width="480" height="270" src="https://www.youtube.com/embed/yLORZbc-PZw" frameborder="0" allowfullscreen></iframe>`,
		html)
}

func TestResolve_Providers(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		contains string
	}{
		{"youtube bare host", "https://youtube.com/watch?v=abc", "youtube.com/embed/abc"},
		{"youtube embed path", "https://www.youtube.com/embed/xyz", "youtube.com/embed/xyz"},
		{"youtube playlist", "https://www.youtube.com/view_play_list?p=PL123", "embed/videoseries?list=PL123"},
		{"youtu.be", "https://youtu.be/short1", "youtube.com/embed/short1"},
		{"vimeo", "https://vimeo.com/123456", "player.vimeo.com/video/123456"},
		{"dailymotion", "https://www.dailymotion.com/video/x7abc_some-title", "dailymotion.com/embed/video/x7abc\""},
		{"dailymotion bare host", "https://dailymotion.com/video/x9", "embed/video/x9\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseURL(tc.raw, nil, nil)
			require.NoError(t, err)
			html, ok := Resolve(p)
			require.True(t, ok, "expected %s to resolve", tc.raw)
			assert.Contains(t, html, tc.contains)
			assert.Contains(t, html, `width="480"`)
			assert.Contains(t, html, `height="270"`)
		})
	}
}

func TestResolve_NoEmbed(t *testing.T) {
	cases := []string{
		"https://example.com/watch?v=abc",
		"https://WWW.YOUTUBE.COM/watch?v=abc",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/channel/abc",
		"https://www.dailymotion.com/playlist/x1",
		"https://www.nicovideo.jp/ranking",
		"https://youtu.be/",
	}
	for _, raw := range cases {
		p, err := ParseURL(raw, nil, nil)
		require.NoError(t, err)
		html, ok := Resolve(p)
		assert.False(t, ok, raw)
		assert.Empty(t, html, raw)
	}
}

func TestResolve_CustomSizeAndEscaping(t *testing.T) {
	html, ok := Resolve(Parameters{
		Width:  intPtr(640),
		Height: intPtr(360),
		Host:   "youtu.be",
		Path:   `/a"b<c&d`,
	})
	require.True(t, ok)
	assert.Contains(t, html, `width="640" height="360"`)
	assert.Contains(t, html, `embed/a&quot;b&lt;c&amp;d"`)
}

func TestResolve_Nicovideo(t *testing.T) {
	p, err := ParseURL("https://www.nicovideo.jp/watch/sm9", intPtr(320), nil)
	require.NoError(t, err)

	html, ok := Resolve(p)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(html, `<iframe width="320" height="270" src="data:text/html;base64,`))

	start := strings.Index(html, "base64,") + len("base64,")
	end := strings.Index(html[start:], `"`)
	inner, err := base64.StdEncoding.DecodeString(html[start : start+end])
	require.NoError(t, err)
	assert.Contains(t, string(inner), "https://embed.nicovideo.jp/watch/sm9/script?w=320&h=270")
}

func TestResolver_DefaultSize(t *testing.T) {
	r := NewResolver(WithDefaultSize(800, 450))
	html, ok := r.Resolve(Parameters{Host: "vimeo.com", Path: "/1"})
	require.True(t, ok)
	assert.Contains(t, html, `width="800" height="450"`)
}

func TestParseURL(t *testing.T) {
	p, err := ParseURL(" https://www.youtube.com/watch?v=one&v=two&t=5 ", nil, intPtr(100))
	require.NoError(t, err)
	assert.Equal(t, "www.youtube.com", p.Host)
	assert.Equal(t, "/watch", p.Path)
	assert.Equal(t, map[string]string{"v": "one", "t": "5"}, p.Query)
	assert.Nil(t, p.Width)
	require.NotNil(t, p.Height)
	assert.Equal(t, 100, *p.Height)

	_, err = ParseURL("not a url", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = ParseURL("", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidURL)
}
