package shard

import (
	"context"
	"errors"
	"testing"
)

func TestResolverFunc(t *testing.T) {
	var r Resolver = ResolverFunc(func(_ context.Context, bridgeID string) (Shard, error) {
		if bridgeID == "" {
			return Shard{}, ErrNoAssignment
		}
		return Shard{ID: "shard-a", RouterCanonicalHostname: "router.example.com"}, nil
	})

	s, err := r.AssignedShard(context.Background(), "bridge-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RouterCanonicalHostname != "router.example.com" {
		t.Errorf("expected router 'router.example.com', got %q", s.RouterCanonicalHostname)
	}

	if _, err := r.AssignedShard(context.Background(), ""); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("expected ErrNoAssignment, got %v", err)
	}
}
