package main

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// redisMirror keeps a per-workspace online set in Redis so the api service
// can serve presence without holding a socket. The in-memory registry stays
// authoritative; this set is best effort.
type redisMirror struct {
	rdb *redis.Client
}

func newRedisMirror(rdb *redis.Client) *redisMirror {
	return &redisMirror{rdb: rdb}
}

func (m *redisMirror) Add(ctx context.Context, workspaceID, userID string) error {
	return m.rdb.SAdd(ctx, "workspace:"+workspaceID+":online", userID).Err()
}

func (m *redisMirror) Remove(ctx context.Context, workspaceID, userID string) error {
	return m.rdb.SRem(ctx, "workspace:"+workspaceID+":online", userID).Err()
}
