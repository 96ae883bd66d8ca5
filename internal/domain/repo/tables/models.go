package tables

import (
	"time"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

type Entry struct {
	Tables    []entity.EnrichedTable `json:"tables"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

func mapToModel(entry entity.HostTableEntry) Entry {
	return Entry{
		Tables:    entry.Tables,
		FetchedAt: entry.FetchedAt,
	}
}

func mapToEntity(model Entry, hostID uint, platform string) entity.HostTableEntry {
	return entity.HostTableEntry{
		HostID:    hostID,
		Platform:  platform,
		Tables:    model.Tables,
		FetchedAt: model.FetchedAt,
	}
}
