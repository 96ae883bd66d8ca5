package fleet

import (
	"context"
	"net/url"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_fleet.go

// Client issues authenticated calls against the fleet manager API.
// Transport details (auth headers, TLS, retries) are the implementation's
// concern; callers only see the uniform response envelope.
type Client interface {
	Get(ctx context.Context, path string, params url.Values) (Response, error)
	Post(ctx context.Context, path string, body interface{}) (Response, error)
	Patch(ctx context.Context, path string, body interface{}) (Response, error)
	Delete(ctx context.Context, path string) (Response, error)
}

// SubscriptionChannel is a real-time connection scoped to one campaign.
// Messages returns a channel that is closed when the remote side closes
// the connection or a read fails; consumers must bound their own wait.
type SubscriptionChannel interface {
	Subscribe(ctx context.Context, campaignID uint) error
	Messages() <-chan StreamMessage
	Close() error
}

// ChannelDialer opens subscription channels. One channel serves one
// campaign; a new campaign needs a fresh Dial.
type ChannelDialer interface {
	Dial(ctx context.Context) (SubscriptionChannel, error)
}
