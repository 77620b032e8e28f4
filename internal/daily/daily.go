package daily

import (
	"strconv"
	"time"
	"unicode/utf16"
)

const (
	offset32 = 0x811c9dc5
	prime32  = 0x01000193
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Hash is 32-bit FNV-1a over the UTF-16 code units of s.
// For ASCII input this matches hash/fnv's New32a over the raw bytes.
func Hash(s string) uint32 {
	h := uint32(offset32)
	for _, r := range s {
		if r < 0x10000 {
			h ^= uint32(r)
			h *= prime32
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h ^= uint32(hi)
		h *= prime32
		h ^= uint32(lo)
		h *= prime32
	}
	return h
}

// Identity is an optional caller token. The zero value is Anonymous.
type Identity struct {
	value   string
	present bool
}

// Anonymous is the absent identity (date-only selection).
var Anonymous = Identity{}

// ID wraps an opaque string identity. An empty string is still a present
// identity; callers that mean "nobody" must pass Anonymous.
func ID(s string) Identity { return Identity{value: s, present: true} }

// FID wraps a numeric frame user id in canonical decimal form.
func FID(n uint64) Identity { return ID(strconv.FormatUint(n, 10)) }

// Present reports whether an identity was supplied.
func (i Identity) Present() bool { return i.present }

// String returns the identity's string form ("" when absent).
func (i Identity) String() string { return i.value }

// SelectionKey builds "<identity>:<day>", or just day when anonymous.
func SelectionKey(id Identity, day string) string {
	if !id.present {
		return day
	}
	return id.value + ":" + day
}

// Index returns a deterministic index in [0, n) for (id, day).
// Non-positive n yields 0.
func Index(id Identity, day string, n int) int {
	h := Hash(SelectionKey(id, day))
	if n <= 0 {
		return 0
	}
	return int(uint64(h) % uint64(n))
}
