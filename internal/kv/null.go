package kv

import "context"

// Null is the store used when no backend is configured.
// Reads report zero/false and writes are dropped.
type Null struct{}

func (Null) Incr(context.Context, string) (int64, error) { return 0, nil }
func (Null) SAdd(context.Context, string, string) (bool, error) { return false, nil }
func (Null) GetInt(context.Context, string) (int64, error) { return 0, nil }
func (Null) SIsMember(context.Context, string, string) (bool, error) { return false, nil }
func (Null) Close() error { return nil }
