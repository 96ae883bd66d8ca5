package factory

import (
	"context"

	"github.com/fleetops/fleetquery/internal/common"
	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/domain/repo"
	"github.com/fleetops/fleetquery/internal/domain/repo/tables"
)

// CreateTableStore selects the shared Valkey store when a URL is
// configured, the in-process store otherwise.
func CreateTableStore(ctx context.Context, conf config.Valkey) (repo.TableStore, common.CloseFunc, error) {
	if conf.URL == "" {
		return tables.NewMemoryStore(), common.NoopClose, nil
	}

	client, closeClient, err := CreateValkeyClient(ctx, conf)
	if err != nil {
		return nil, nil, err
	}

	return tables.NewValkeyStore(client, conf.Retention), closeClient, nil
}
