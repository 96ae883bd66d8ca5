package tables

import (
	"context"
	"sync"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

// MemoryStore is the default single-process table store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[hostKey]entity.HostTableEntry
}

type hostKey struct {
	hostID   uint
	platform string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[hostKey]entity.HostTableEntry),
	}
}

func (s *MemoryStore) GetHostTables(ctx context.Context, hostID uint, platform string) (entity.HostTableEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[hostKey{hostID: hostID, platform: platform}]

	return entry, found, nil
}

func (s *MemoryStore) WriteHostTables(ctx context.Context, entry entity.HostTableEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[hostKey{hostID: entry.HostID, platform: entry.Platform}] = entry

	return nil
}

func (s *MemoryStore) InvalidateHost(ctx context.Context, hostID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if key.hostID == hostID {
			delete(s.entries, key)
		}
	}

	return nil
}

func (s *MemoryStore) CountHosts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hosts := make(map[uint]struct{}, len(s.entries))
	for key := range s.entries {
		hosts[key.hostID] = struct{}{}
	}

	return len(hosts), nil
}
