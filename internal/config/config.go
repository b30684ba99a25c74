package config

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/shard"
)

// ShardMap assigns bridges to shards. It implements shard.Resolver.
//
//	shards:
//	  shard-a: router-a.apps.example.com
//	assignments:
//	  bridge-123: shard-a
//	default: shard-a
type ShardMap struct {
	Shards      map[string]string `yaml:"shards"`
	Assignments map[string]string `yaml:"assignments"`
	Default     string            `yaml:"default"`
}

// LoadShardMap reads a YAML shard map from path.
func LoadShardMap(path string) (*ShardMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shard map file: %w", err)
	}

	var sm ShardMap
	if err := yaml.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("parsing shard map file: %w", err)
	}
	if err := sm.validate(); err != nil {
		return nil, err
	}
	return &sm, nil
}

func (sm *ShardMap) validate() error {
	if len(sm.Shards) == 0 {
		return fmt.Errorf("shard map: no shards defined")
	}
	for id, host := range sm.Shards {
		if host == "" {
			return fmt.Errorf("shard map: shard %q has no router hostname", id)
		}
	}
	for bridge, id := range sm.Assignments {
		if _, ok := sm.Shards[id]; !ok {
			return fmt.Errorf("shard map: bridge %q assigned to unknown shard %q", bridge, id)
		}
	}
	if sm.Default != "" {
		if _, ok := sm.Shards[sm.Default]; !ok {
			return fmt.Errorf("shard map: default shard %q is not defined", sm.Default)
		}
	}
	return nil
}

// AssignedShard returns the shard serving bridgeID. An explicit assignment
// takes priority over the default shard.
func (sm *ShardMap) AssignedShard(_ context.Context, bridgeID string) (shard.Shard, error) {
	id, ok := sm.Assignments[bridgeID]
	if !ok {
		id = sm.Default
	}
	host, ok := sm.Shards[id]
	if id == "" || !ok {
		return shard.Shard{}, fmt.Errorf("%w: bridge %q", shard.ErrNoAssignment, bridgeID)
	}
	return shard.Shard{ID: id, RouterCanonicalHostname: host}, nil
}

// ShardIDs returns all configured shard IDs.
func (sm *ShardMap) ShardIDs() []string {
	ids := make([]string, 0, len(sm.Shards))
	for id := range sm.Shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
