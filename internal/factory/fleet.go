package factory

import (
	"errors"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/fleet"
)

var ErrNoFleetURL = errors.New("fleet URL is not configured")

func CreateFleetClient(conf config.Fleet) (fleet.Client, error) {
	if conf.URL == "" {
		return nil, ErrNoFleetURL
	}

	return fleet.NewRESTClient(conf), nil
}

func CreateChannelDialer(conf config.Fleet) (fleet.ChannelDialer, error) {
	if conf.URL == "" {
		return nil, ErrNoFleetURL
	}

	return fleet.NewWebsocketDialer(conf), nil
}
