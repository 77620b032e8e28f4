package kv

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing counter reads zero", func(t *testing.T) {
		n, err := st.GetInt(ctx, "nope")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("incr", func(t *testing.T) {
		n, err := st.Incr(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		n, err = st.Incr(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		got, err := st.GetInt(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got)
	})

	t.Run("sadd and sismember", func(t *testing.T) {
		ok, err := st.SIsMember(ctx, "s", "a")
		require.NoError(t, err)
		assert.False(t, ok)

		added, err := st.SAdd(ctx, "s", "a")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = st.SAdd(ctx, "s", "a")
		require.NoError(t, err)
		assert.False(t, added)

		ok, err = st.SIsMember(ctx, "s", "a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = st.SIsMember(ctx, "other", "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("add and incr", func(t *testing.T) {
		v, ok := st.(Voter)
		require.True(t, ok, "backend should implement Voter")

		added, err := v.AddAndIncr(ctx, "voters", "7", "likes")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = v.AddAndIncr(ctx, "voters", "7", "likes")
		require.NoError(t, err)
		assert.False(t, added)

		n, err := st.GetInt(ctx, "likes")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("concurrent add and incr", func(t *testing.T) {
		v := st.(Voter)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = v.AddAndIncr(ctx, "race:voters", "same", "race:likes")
			}()
		}
		wg.Wait()

		n, err := st.GetInt(ctx, "race:likes")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	testStore(t, st)
}

func TestSQLiteStore(t *testing.T) {
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	testStore(t, st)
}

// TestSQLiteStore_Reopen checks data survives a reopen and migrations are
// not applied twice.
func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = st.Incr(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	n, err := st.GetInt(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	testStore(t, st)

	// The counter is a plain redis string, readable by other tools.
	v, err := mr.Get("likes")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.True(t, mr.Exists("voters"))
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var st Store = Null{}

	n, err := st.Incr(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	added, err := st.SAdd(ctx, "s", "a")
	require.NoError(t, err)
	assert.False(t, added)

	ok, err := st.SIsMember(ctx, "s", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, IsNull(st))
	assert.False(t, IsNull(NewMemoryStore()))
}

// TestOpen checks driver selection.
func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	dbPath := filepath.Join(t.TempDir(), "kv.db")

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr bool
	}{
		{name: "nothing configured", opts: Options{}, want: Null{}},
		{name: "explicit null", opts: Options{Driver: "null", URL: "redis://" + mr.Addr()}, want: Null{}},
		{name: "memory", opts: Options{Driver: "MEMORY"}, want: &memory{}},
		{name: "url wins", opts: Options{URL: "redis://" + mr.Addr(), SQLitePath: dbPath}, want: &Redis{}},
		{name: "sqlite path", opts: Options{SQLitePath: dbPath}, want: &SQLite{}},
		{name: "redis without url", opts: Options{Driver: "redis"}, wantErr: true},
		{name: "sqlite without path", opts: Options{Driver: "sqlite"}, wantErr: true},
		{name: "unknown driver", opts: Options{Driver: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(ctx, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, st)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })
			assert.IsType(t, tt.want, st)
		})
	}
}
