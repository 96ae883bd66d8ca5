package tables

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

const keyPrefix = "fleetquery:tables:"

// ValkeyStore shares discovered host tables between operators. The key
// holds one field per platform; the key TTL is a retention bound, not
// the freshness TTL (stale entries must stay readable for the
// discovery-failure fallback).
type ValkeyStore struct {
	client    valkey.Client
	retention time.Duration
}

func NewValkeyStore(client valkey.Client, retention time.Duration) ValkeyStore {
	return ValkeyStore{
		client:    client,
		retention: retention,
	}
}

func (s ValkeyStore) GetHostTables(ctx context.Context, hostID uint, platform string) (entity.HostTableEntry, bool, error) {
	command := s.client.B().Hget().Key(hostTablesKey(hostID)).Field(platform).Build()

	resp := s.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return entity.HostTableEntry{}, false, nil
		}

		return entity.HostTableEntry{}, false, fmt.Errorf("failed to get host tables: %w", err)
	}

	raw, err := resp.AsBytes()
	if err != nil {
		return entity.HostTableEntry{}, false, fmt.Errorf("unexpected hget response type for host %d: %w", hostID, err)
	}

	model := Entry{}

	err = json.Unmarshal(raw, &model)
	if err != nil {
		return entity.HostTableEntry{}, false, fmt.Errorf("failed to unmarshal entry for host %d platform %s: %w", hostID, platform, err)
	}

	return mapToEntity(model, hostID, platform), true, nil
}

func (s ValkeyStore) WriteHostTables(ctx context.Context, entry entity.HostTableEntry) error {
	model := mapToModel(entry)

	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	key := hostTablesKey(entry.HostID)

	command := s.client.B().Hset().Key(key).FieldValue().FieldValue(entry.Platform, string(data)).Build()

	err = s.client.Do(ctx, command).Error()
	if err != nil {
		return fmt.Errorf("failed to set host tables: %w", err)
	}

	expireCommand := s.client.B().Expire().Key(key).Seconds(int64(s.retention.Seconds())).Build()

	err = s.client.Do(ctx, expireCommand).Error()
	if err != nil {
		return fmt.Errorf("failed to set retention: %w", err)
	}

	return nil
}

func (s ValkeyStore) InvalidateHost(ctx context.Context, hostID uint) error {
	command := s.client.B().Del().Key(hostTablesKey(hostID)).Build()

	err := s.client.Do(ctx, command).Error()
	if err != nil {
		return fmt.Errorf("failed to delete host tables: %w", err)
	}

	return nil
}

func (s ValkeyStore) CountHosts(ctx context.Context) (int, error) {
	command := s.client.B().Keys().Pattern(keyPrefix + "*").Build()

	resp := s.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		return 0, fmt.Errorf("failed to list host table keys: %w", err)
	}

	keys, err := resp.AsStrSlice()
	if err != nil {
		return 0, fmt.Errorf("unexpected keys response type: %w", err)
	}

	return len(keys), nil
}

func hostTablesKey(hostID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, hostID)
}
