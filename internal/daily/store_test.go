package daily

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailywish/go-server/internal/kv"
)

// plainStore hides the Voter fast path so Record falls back to SAdd + Incr.
type plainStore struct{ kv.Store }

// failingStore fails every read and write.
type failingStore struct{ kv.Null }

var errBackend = errors.New("backend down")

func (failingStore) Incr(context.Context, string) (int64, error) { return 0, errBackend }
func (failingStore) SAdd(context.Context, string, string) (bool, error) { return false, errBackend }
func (failingStore) GetInt(context.Context, string) (int64, error) { return 0, errBackend }
func (failingStore) SIsMember(context.Context, string, string) (bool, error) {
	return false, errBackend
}

const testDay = "2024-06-01"

func TestVoteKeys(t *testing.T) {
	k := VoteKeys("dw:vote", testDay, 4)
	assert.Equal(t, "dw:vote:2024-06-01:4:likes", k.Likes)
	assert.Equal(t, "dw:vote:2024-06-01:4:dislikes", k.Dislikes)
	assert.Equal(t, "dw:vote:2024-06-01:4:voters", k.Voters)
	assert.Equal(t, k.Likes, k.Counter(Like))
	assert.Equal(t, k.Dislikes, k.Counter(Dislike))
}

func TestNewStore_DefaultNamespace(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), "", nil)
	assert.Equal(t, VoteKeys(DefaultNamespace, testDay, 0), s.Keys(testDay, 0))
}

// TestStore_Record checks the happy path on both the atomic and fallback paths.
func TestStore_Record(t *testing.T) {
	backends := map[string]func() kv.Store{
		"voter": kv.NewMemoryStore,
		"plain": func() kv.Store { return plainStore{kv.NewMemoryStore()} },
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(mk(), "", nil)

			out, err := s.Record(ctx, testDay, 3, FID(1), Like)
			require.NoError(t, err)
			assert.Equal(t, VoteRecorded, out)

			out, err = s.Record(ctx, testDay, 3, FID(1), Dislike)
			require.NoError(t, err)
			assert.Equal(t, VoteDuplicate, out, "second vote in the same day must not count")

			out, err = s.Record(ctx, testDay, 3, FID(2), Dislike)
			require.NoError(t, err)
			assert.Equal(t, VoteRecorded, out)

			st, err := s.Stats(ctx, testDay, 3)
			require.NoError(t, err)
			assert.Equal(t, int64(1), st.Likes)
			assert.Equal(t, int64(1), st.Dislikes)
			assert.Equal(t, int64(2), st.Total)

			voted, err := s.HasVoted(ctx, testDay, 3, FID(1))
			require.NoError(t, err)
			assert.True(t, voted)

			voted, err = s.HasVoted(ctx, testDay, 3, FID(3))
			require.NoError(t, err)
			assert.False(t, voted)
		})
	}
}

// TestStore_RecordIsScopedToDayAndWish lets the same identity vote again on
// another day or another wish.
func TestStore_RecordIsScopedToDayAndWish(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemoryStore(), "", nil)

	for _, target := range []struct {
		day string
		idx int
	}{{testDay, 1}, {testDay, 2}, {"2024-06-02", 1}} {
		out, err := s.Record(ctx, target.day, target.idx, ID("alice"), Like)
		require.NoError(t, err)
		assert.Equal(t, VoteRecorded, out)
	}
}

func TestStore_RecordRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemoryStore(), "", nil)

	_, err := s.Record(ctx, testDay, 0, Anonymous, Like)
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = s.Record(ctx, testDay, 0, FID(1), Choice("meh"))
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

// TestStore_NullBackend checks votes are accepted but nothing is stored.
func TestStore_NullBackend(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.Null{}, "", nil)

	out, err := s.Record(ctx, testDay, 0, FID(1), Like)
	require.NoError(t, err)
	assert.Equal(t, VoteUnavailable, out)

	st, err := s.Stats(ctx, testDay, 0)
	require.NoError(t, err)
	assert.Equal(t, Percentages(0, 0), st)

	voted, err := s.HasVoted(ctx, testDay, 0, FID(1))
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestStore_HasVotedAnonymous(t *testing.T) {
	s := NewStore(failingStore{}, "", nil)
	voted, err := s.HasVoted(context.Background(), testDay, 0, Anonymous)
	require.NoError(t, err)
	assert.False(t, voted)
}

// TestStore_BackendErrors checks failures are wrapped and surfaced.
func TestStore_BackendErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingStore{}, "", nil)

	_, err := s.Stats(ctx, testDay, 0)
	assert.ErrorIs(t, err, errBackend)

	_, err = s.HasVoted(ctx, testDay, 0, FID(1))
	assert.ErrorIs(t, err, errBackend)

	_, err = s.Record(ctx, testDay, 0, FID(1), Like)
	assert.ErrorIs(t, err, errBackend)
}

// TestStore_StatsCache checks cached stats are served until a vote lands.
func TestStore_StatsCache(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	cache := NewStatsCache(time.Minute, 16)
	require.NotNil(t, cache)
	s := NewStore(backend, "", cache)

	st, err := s.Stats(ctx, testDay, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Total)

	// A write behind the store's back is invisible while cached.
	_, err = backend.Incr(ctx, s.Keys(testDay, 0).Likes)
	require.NoError(t, err)
	st, err = s.Stats(ctx, testDay, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Total)

	// Recording through the store invalidates the entry.
	_, err = s.Record(ctx, testDay, 0, FID(9), Dislike)
	require.NoError(t, err)
	st, err = s.Stats(ctx, testDay, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Likes)
	assert.Equal(t, int64(1), st.Dislikes)
}

func TestNewStatsCache_Disabled(t *testing.T) {
	assert.Nil(t, NewStatsCache(0, 16))
	assert.Nil(t, NewStatsCache(-time.Second, 16))
}

// TestStore_ConcurrentDuplicateVotes checks that racing votes from the same
// identity are counted once while distinct identities all count.
func TestStore_ConcurrentDuplicateVotes(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemoryStore(), "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Record(ctx, testDay, 0, FID(7), Like)
		}()
		go func(i int) {
			defer wg.Done()
			_, _ = s.Record(ctx, testDay, 0, ID("u"+strconv.Itoa(i)), Dislike)
		}(i)
	}
	wg.Wait()

	st, err := s.Stats(ctx, testDay, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Likes)
	assert.Equal(t, int64(50), st.Dislikes)
}
