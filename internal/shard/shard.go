// Package shard describes where bridges are served from.
package shard

import (
	"context"
	"errors"
)

// ErrNoAssignment is returned when a bridge has not been assigned to any shard.
var ErrNoAssignment = errors.New("no shard assigned")

// Shard is a data plane cluster serving bridges behind a single router.
type Shard struct {
	ID string
	// RouterCanonicalHostname is the stable DNS name of the shard's ingress router.
	RouterCanonicalHostname string
}

// Resolver finds the shard a bridge is assigned to.
type Resolver interface {
	AssignedShard(ctx context.Context, bridgeID string) (Shard, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, bridgeID string) (Shard, error)

func (f ResolverFunc) AssignedShard(ctx context.Context, bridgeID string) (Shard, error) {
	return f(ctx, bridgeID)
}
