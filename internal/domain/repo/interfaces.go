package repo

import (
	"context"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_repo.go

// TableStore keeps discovered host table lists. Entries older than the
// freshness TTL are still returned: the schema cache decides whether a
// stale entry is good enough (it is, when live discovery fails).
type TableStore interface {
	GetHostTables(ctx context.Context, hostID uint, platform string) (entity.HostTableEntry, bool, error)
	WriteHostTables(ctx context.Context, entry entity.HostTableEntry) error
	InvalidateHost(ctx context.Context, hostID uint) error
	CountHosts(ctx context.Context) (int, error)
}

// ResultArchiveWriter persists completed query runs for audit.
type ResultArchiveWriter interface {
	WriteQueryRun(ctx context.Context, run entity.QueryRun) error
}
