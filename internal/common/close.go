package common

import "context"

// CloseFunc releases a resource created by a factory.
type CloseFunc func(ctx context.Context) error

func NoopClose(context.Context) error {
	return nil
}
