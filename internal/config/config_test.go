package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/shard"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadShardMap(t *testing.T) {
	path := writeFile(t, "shards.yaml", `shards:
  shard-a: router-a.example.com
  shard-b: router-b.example.com
assignments:
  bridge-123: shard-b
default: shard-a
`)

	sm, err := LoadShardMap(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sm.ShardIDs()) != 2 {
		t.Fatalf("expected 2 shards, got %d", len(sm.ShardIDs()))
	}
}

func TestLoadShardMap_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no shards", "assignments:\n  b: s\n"},
		{"empty hostname", "shards:\n  shard-a: \"\"\n"},
		{"unknown assignment", "shards:\n  shard-a: r.example.com\nassignments:\n  b: shard-x\n"},
		{"unknown default", "shards:\n  shard-a: r.example.com\ndefault: shard-x\n"},
		{"malformed", "shards: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadShardMap(writeFile(t, "shards.yaml", tt.content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadShardMap_MissingFile(t *testing.T) {
	if _, err := LoadShardMap("/nonexistent/path/shards.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestAssignedShard(t *testing.T) {
	sm := &ShardMap{
		Shards: map[string]string{
			"shard-a": "router-a.example.com",
			"shard-b": "router-b.example.com",
		},
		Assignments: map[string]string{"bridge-123": "shard-b"},
		Default:     "shard-a",
	}

	tests := []struct {
		bridgeID string
		wantID   string
		wantHost string
	}{
		{"bridge-123", "shard-b", "router-b.example.com"}, // explicit assignment wins
		{"bridge-456", "shard-a", "router-a.example.com"}, // default shard
	}

	for _, tt := range tests {
		t.Run(tt.bridgeID, func(t *testing.T) {
			s, err := sm.AssignedShard(context.Background(), tt.bridgeID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.ID != tt.wantID {
				t.Errorf("AssignedShard(%q): got shard %q, want %q", tt.bridgeID, s.ID, tt.wantID)
			}
			if s.RouterCanonicalHostname != tt.wantHost {
				t.Errorf("AssignedShard(%q): got host %q, want %q", tt.bridgeID, s.RouterCanonicalHostname, tt.wantHost)
			}
		})
	}
}

func TestAssignedShard_NoAssignment(t *testing.T) {
	sm := &ShardMap{
		Shards:      map[string]string{"shard-a": "router-a.example.com"},
		Assignments: map[string]string{"bridge-123": "shard-a"},
	}

	_, err := sm.AssignedShard(context.Background(), "unknown")
	if !errors.Is(err, shard.ErrNoAssignment) {
		t.Fatalf("expected ErrNoAssignment, got %v", err)
	}
}
