// internal/kv/kv.go
//
// Key-value collaborator used for vote counting.
// Only four primitives are needed by the rest of the server:
//   - Incr:      atomic counter increment
//   - SAdd:      add a member to a set, report whether it was newly added
//   - GetInt:    read an integer counter (missing => 0)
//   - SIsMember: set membership test
//
// Backends (chosen once at startup by Open):
//   - redis:  Vercel KV / Upstash / any RESP endpoint (KV_URL or REDIS_URL)
//   - sqlite: single-file store for self-hosting (KV_SQLITE_PATH)
//   - memory: process-local maps, lost on restart (KV_DRIVER=memory)
//   - null:   nothing configured; reads are zero, writes are dropped

package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Store is the capability set consumed by the vote tally.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	SAdd(ctx context.Context, key, member string) (bool, error)
	GetInt(ctx context.Context, key string) (int64, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	Close() error
}

// Voter is implemented by backends that can add a member to a set and bump
// a counter in one atomic step. The counter is incremented only when the
// member was newly added.
type Voter interface {
	AddAndIncr(ctx context.Context, setKey, member, counterKey string) (bool, error)
}

// Options selects and configures a backend.
type Options struct {
	Driver     string // "", "redis", "sqlite", "memory", "null"
	URL        string // redis URL (redis:// or rediss://)
	SQLitePath string
}

// Open builds the backend described by opts. With no driver set the first
// configured backend wins: URL, then SQLitePath, else the null store.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		switch {
		case opts.URL != "":
			driver = "redis"
		case opts.SQLitePath != "":
			driver = "sqlite"
		default:
			driver = "null"
		}
	}

	switch driver {
	case "redis":
		if opts.URL == "" {
			return nil, fmt.Errorf("kv: redis driver needs a URL")
		}
		r, err := OpenRedis(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "sqlite":
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("kv: sqlite driver needs a path")
		}
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	case "null":
		log.Warn().Msg("no key-value store configured; votes will not be stored")
		return Null{}, nil
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", opts.Driver)
	}
}

// IsNull reports whether st drops every write.
func IsNull(st Store) bool {
	_, ok := st.(Null)
	return ok
}
