package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMeta_Tags checks tag order and that optional tags are omitted.
func TestMeta_Tags(t *testing.T) {
	m := Meta{
		Image:       "https://x/og",
		AspectRatio: "1.91:1",
		PostURL:     "https://x/api/vote",
		Buttons: []Button{
			{Label: "👍 Like"},
			{Label: "Docs", Action: ActionLink, Target: "https://x/docs"},
		},
		State:         "tok",
		OGTitle:       "Today's Wish",
		OGDescription: "Be kind.",
	}
	assert.Equal(t, []Tag{
		{"fc:frame", "vNext"},
		{"fc:frame:image", "https://x/og"},
		{"og:image", "https://x/og"},
		{"fc:frame:image:aspect_ratio", "1.91:1"},
		{"fc:frame:post_url", "https://x/api/vote"},
		{"fc:frame:button:1", "👍 Like"},
		{"fc:frame:button:2", "Docs"},
		{"fc:frame:button:2:action", "link"},
		{"fc:frame:button:2:target", "https://x/docs"},
		{"fc:frame:state", "tok"},
		{"og:title", "Today's Wish"},
		{"og:description", "Be kind."},
	}, m.Tags())
}

func TestMeta_TagsMinimal(t *testing.T) {
	assert.Equal(t, []Tag{{"fc:frame", "vNext"}}, Meta{}.Tags())
}
