package frame

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dailywish/go-server/internal/daily"
)

func post(target, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// TestParseRequest covers identity extraction from the body and the query.
func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		want   daily.Identity
		button int
		state  string
	}{
		{"body fid", "/api/wish", `{"untrustedData":{"fid":12345,"buttonIndex":1}}`, daily.FID(12345), 1, ""},
		{"body wins over query", "/api/wish?fid=9", `{"untrustedData":{"fid":42}}`, daily.FID(42), 0, ""},
		{"string body", "/api/wish", `"{\"untrustedData\":{\"fid\":7,\"buttonIndex\":2}}"`, daily.FID(7), 2, ""},
		{"state", "/api/vote", `{"untrustedData":{"fid":1,"state":"tok"}}`, daily.FID(1), 0, "tok"},
		{"query fid", "/api/wish?fid=777", ``, daily.FID(777), 0, ""},
		{"query fid canonical", "/api/wish?fid=007", ``, daily.FID(7), 0, ""},
		{"query opaque id", "/api/wish?fid=alice", ``, daily.ID("alice"), 0, ""},
		{"empty query fid", "/api/wish?fid=", ``, daily.Anonymous, 0, ""},
		{"no fid", "/api/wish", `{"untrustedData":{}}`, daily.Anonymous, 0, ""},
		{"string fid ignored", "/api/wish", `{"untrustedData":{"fid":"12"}}`, daily.Anonymous, 0, ""},
		{"negative fid ignored", "/api/wish", `{"untrustedData":{"fid":-3}}`, daily.Anonymous, 0, ""},
		{"fractional fid ignored", "/api/wish", `{"untrustedData":{"fid":1.5}}`, daily.Anonymous, 0, ""},
		{"invalid json", "/api/wish?fid=5", `{not json`, daily.FID(5), 0, ""},
		{"empty body", "/api/wish", ``, daily.Anonymous, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequest(post(tt.target, tt.body))
			assert.Equal(t, tt.want, got.Identity)
			assert.Equal(t, tt.button, got.ButtonIndex)
			assert.Equal(t, tt.state, got.State)
		})
	}
}

func TestParseRequest_NilBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/wish?fid=3", nil)
	r.Body = nil
	assert.Equal(t, daily.FID(3), ParseRequest(r).Identity)
}

// TestRequest_Choice maps buttons first and falls back to ?choice=.
func TestRequest_Choice(t *testing.T) {
	assert.Equal(t, daily.Like, Request{ButtonIndex: ButtonLike}.Choice())
	assert.Equal(t, daily.Dislike, Request{ButtonIndex: ButtonDislike}.Choice())
	assert.Equal(t, daily.Dislike, Request{ButtonIndex: ButtonDislike, QueryChoice: "like"}.Choice())
	assert.Equal(t, daily.Like, Request{QueryChoice: " LIKE "}.Choice())
	assert.False(t, Request{ButtonIndex: 3}.Choice().Valid())
	assert.False(t, Request{QueryChoice: "love"}.Choice().Valid())
}
