// internal/frame/types.go
//
// Type definitions for the frame protocol.
// Defines:
//   - Payload: the JSON body a frame host POSTs when a button is pressed.
//   - Button / Meta: the metadata a frame document advertises in its <head>.
//   - Tag: one rendered <meta property=… content=…> pair.

package frame

import (
	"encoding/json"
	"strconv"
)

// Version is the frame protocol version advertised in fc:frame.
const Version = "vNext"

// Payload is the POST body sent by a frame host.
// trustedData carries a signed message; it is not verified here.
type Payload struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   *TrustedData  `json:"trustedData,omitempty"`
}

// UntrustedData is the caller-asserted part of a frame action.
type UntrustedData struct {
	FID         json.RawMessage `json:"fid,omitempty"` // number; anything else is ignored
	ButtonIndex int             `json:"buttonIndex,omitempty"`
	InputText   string          `json:"inputText,omitempty"`
	State       string          `json:"state,omitempty"`
	URL         string          `json:"url,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
	Network     int             `json:"network,omitempty"`
}

// TrustedData holds the hub-verifiable message bytes.
type TrustedData struct {
	MessageBytes string `json:"messageBytes,omitempty"`
}

// ButtonAction is the host-side behavior of a button.
type ButtonAction string

const (
	ActionPost ButtonAction = "post"
	ActionLink ButtonAction = "link"
	ActionMint ButtonAction = "mint"
)

// Button is one frame button (1-based position in Meta.Buttons order).
type Button struct {
	Label  string
	Action ButtonAction // empty means post
	Target string
}

// Meta describes a frame document.
type Meta struct {
	Image         string
	AspectRatio   string // e.g. "1.91:1"; empty omits the tag
	PostURL       string
	Buttons       []Button
	State         string
	OGTitle       string
	OGDescription string
}

// Tag is a single <meta property content> pair.
type Tag struct {
	Property string
	Content  string
}

// Tags lists the meta tags for m in the order hosts expect them.
// Values are raw; escaping is left to the template.
func (m Meta) Tags() []Tag {
	tags := []Tag{{"fc:frame", Version}}
	if m.Image != "" {
		tags = append(tags,
			Tag{"fc:frame:image", m.Image},
			Tag{"og:image", m.Image},
		)
	}
	if m.AspectRatio != "" {
		tags = append(tags, Tag{"fc:frame:image:aspect_ratio", m.AspectRatio})
	}
	if m.PostURL != "" {
		tags = append(tags, Tag{"fc:frame:post_url", m.PostURL})
	}
	for i, b := range m.Buttons {
		p := "fc:frame:button:" + strconv.Itoa(i+1)
		tags = append(tags, Tag{p, b.Label})
		if b.Action != "" && b.Action != ActionPost {
			tags = append(tags, Tag{p + ":action", string(b.Action)})
		}
		if b.Target != "" {
			tags = append(tags, Tag{p + ":target", b.Target})
		}
	}
	if m.State != "" {
		tags = append(tags, Tag{"fc:frame:state", m.State})
	}
	if m.OGTitle != "" {
		tags = append(tags, Tag{"og:title", m.OGTitle})
	}
	if m.OGDescription != "" {
		tags = append(tags, Tag{"og:description", m.OGDescription})
	}
	return tags
}
