// internal/frame/request.go
//
// Parses an incoming frame action into the pieces the handlers need.
// Responsibilities:
//   - Decode the POST body (JSON object, a JSON string wrapping one, or nothing).
//   - Extract the caller identity: untrustedData.fid, else ?fid= for local testing.
//   - Map the pressed button (or ?choice=) to a vote choice.
//
// Notes:
//   - Parsing is total: malformed bodies read as empty, never as errors.
//   - An empty fid is normalized to daily.Anonymous here, so selection sees
//     exactly one "no identity" value.

package frame

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dailywish/go-server/internal/daily"
)

// maxBody bounds how much of a frame POST is read.
const maxBody = 64 << 10

// Button positions on the reveal frame.
const (
	ButtonLike    = 1
	ButtonDislike = 2
)

// Request is a parsed frame action.
type Request struct {
	Identity    daily.Identity
	ButtonIndex int
	InputText   string
	State       string
	QueryChoice string
}

// ParseRequest reads r's body and query. It never fails; missing or invalid
// data leaves the corresponding field zero.
func ParseRequest(r *http.Request) Request {
	var out Request
	p := decodeBody(r)

	out.Identity = fidFromJSON(p.UntrustedData.FID)
	out.ButtonIndex = p.UntrustedData.ButtonIndex
	out.InputText = p.UntrustedData.InputText
	out.State = p.UntrustedData.State

	q := r.URL.Query()
	if !out.Identity.Present() {
		out.Identity = fidFromQuery(q.Get("fid"))
	}
	out.QueryChoice = q.Get("choice")
	return out
}

// Choice maps the pressed button to a vote; ?choice= is the fallback.
// The result may be invalid (check Valid) when neither is usable.
func (r Request) Choice() daily.Choice {
	switch r.ButtonIndex {
	case ButtonLike:
		return daily.Like
	case ButtonDislike:
		return daily.Dislike
	}
	return daily.Choice(strings.ToLower(strings.TrimSpace(r.QueryChoice)))
}

func decodeBody(r *http.Request) Payload {
	var p Payload
	if r.Body == nil {
		return p
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return p
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return p
	}
	// Some hosts send the payload as a JSON-encoded string.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return p
		}
		raw = []byte(inner)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}
	}
	return p
}

// fidFromJSON accepts only non-negative integral JSON numbers.
func fidFromJSON(raw json.RawMessage) daily.Identity {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" || s[0] == '"' {
		return daily.Anonymous
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return daily.Anonymous
	}
	return daily.FID(n)
}

// fidFromQuery canonicalizes numeric values ("007" → "7"); anything else is
// used verbatim as an opaque identity.
func fidFromQuery(v string) daily.Identity {
	v = strings.TrimSpace(v)
	if v == "" {
		return daily.Anonymous
	}
	if n, err := strconv.ParseUint(v, 10, 64); err == nil {
		return daily.FID(n)
	}
	return daily.ID(v)
}
