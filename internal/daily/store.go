package daily

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/hot"

	"github.com/dailywish/go-server/internal/kv"
)

// DefaultNamespace prefixes every vote key.
const DefaultNamespace = "dw:vote"

var (
	ErrNoIdentity    = errors.New("daily: identity required to vote")
	ErrInvalidChoice = errors.New("daily: choice must be like or dislike")
)

// Choice is a vote direction.
type Choice string

const (
	Like    Choice = "like"
	Dislike Choice = "dislike"
)

// Valid reports whether c is Like or Dislike.
func (c Choice) Valid() bool { return c == Like || c == Dislike }

// VoteOutcome describes what Record did.
type VoteOutcome string

const (
	VoteRecorded    VoteOutcome = "recorded"
	VoteDuplicate   VoteOutcome = "duplicate"
	VoteUnavailable VoteOutcome = "unavailable" // no backend; nothing stored
)

// Keys addresses the counters and voter set of one wish on one day.
type Keys struct {
	Likes    string
	Dislikes string
	Voters   string
}

// VoteKeys builds "<ns>:<day>:<idx>:likes|dislikes|voters".
func VoteKeys(ns, day string, idx int) Keys {
	base := ns + ":" + day + ":" + strconv.Itoa(idx)
	return Keys{
		Likes:    base + ":likes",
		Dislikes: base + ":dislikes",
		Voters:   base + ":voters",
	}
}

// Counter returns the counter key for c.
func (k Keys) Counter(c Choice) string {
	if c == Dislike {
		return k.Dislikes
	}
	return k.Likes
}

// NewStatsCache builds the LRU used to absorb repeated stats reads.
// Entries expire after ttl; a non-positive ttl returns nil (no caching).
func NewStatsCache(ttl time.Duration, capacity int) *hot.HotCache[string, Stats] {
	if ttl <= 0 {
		return nil
	}
	if capacity <= 0 {
		capacity = 1024
	}
	return hot.NewHotCache[string, Stats](hot.LRU, capacity).
		WithTTL(ttl).
		WithPrometheusMetrics("dailywish_stats").
		Build()
}

// Store counts votes in a kv.Store, one voter set and two counters per
// (day, wish index).
type Store struct {
	kv    kv.Store
	ns    string
	cache *hot.HotCache[string, Stats] // may be nil
}

// NewStore wraps st. An empty namespace means DefaultNamespace.
func NewStore(st kv.Store, namespace string, cache *hot.HotCache[string, Stats]) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{kv: st, ns: namespace, cache: cache}
}

// Keys returns the vote keys for (day, idx) under this store's namespace.
func (s *Store) Keys(day string, idx int) Keys { return VoteKeys(s.ns, day, idx) }

func cacheKey(day string, idx int) string { return day + ":" + strconv.Itoa(idx) }

// Stats reads both counters for (day, idx).
func (s *Store) Stats(ctx context.Context, day string, idx int) (Stats, error) {
	ck := cacheKey(day, idx)
	if s.cache != nil {
		if st, ok, err := s.cache.Get(ck); err == nil && ok {
			return st, nil
		}
	}

	k := s.Keys(day, idx)
	likes, err := s.kv.GetInt(ctx, k.Likes)
	if err != nil {
		return Stats{}, fmt.Errorf("daily: read %s: %w", k.Likes, err)
	}
	dislikes, err := s.kv.GetInt(ctx, k.Dislikes)
	if err != nil {
		return Stats{}, fmt.Errorf("daily: read %s: %w", k.Dislikes, err)
	}

	st := Percentages(likes, dislikes)
	if s.cache != nil {
		s.cache.Set(ck, st)
	}
	return st, nil
}

// HasVoted reports whether id is already in the voter set for (day, idx).
// Anonymous callers never count as having voted.
func (s *Store) HasVoted(ctx context.Context, day string, idx int, id Identity) (bool, error) {
	if !id.Present() {
		return false, nil
	}
	k := s.Keys(day, idx)
	ok, err := s.kv.SIsMember(ctx, k.Voters, id.String())
	if err != nil {
		return false, fmt.Errorf("daily: check %s: %w", k.Voters, err)
	}
	return ok, nil
}

// Record stores one vote for id. The counter moves only when id was not yet
// in the voter set, so repeated calls for the same (day, idx, id) are no-ops.
func (s *Store) Record(ctx context.Context, day string, idx int, id Identity, c Choice) (VoteOutcome, error) {
	if !id.Present() {
		return "", ErrNoIdentity
	}
	if !c.Valid() {
		return "", ErrInvalidChoice
	}
	if kv.IsNull(s.kv) {
		return VoteUnavailable, nil
	}

	k := s.Keys(day, idx)
	var added bool
	if v, ok := s.kv.(kv.Voter); ok {
		var err error
		if added, err = v.AddAndIncr(ctx, k.Voters, id.String(), k.Counter(c)); err != nil {
			return "", fmt.Errorf("daily: record vote: %w", err)
		}
	} else {
		var err error
		if added, err = s.kv.SAdd(ctx, k.Voters, id.String()); err != nil {
			return "", fmt.Errorf("daily: add voter: %w", err)
		}
		if added {
			if _, err := s.kv.Incr(ctx, k.Counter(c)); err != nil {
				return "", fmt.Errorf("daily: incr %s: %w", k.Counter(c), err)
			}
		}
	}

	if !added {
		return VoteDuplicate, nil
	}
	if s.cache != nil {
		s.cache.Delete(cacheKey(day, idx))
	}
	return VoteRecorded, nil
}
