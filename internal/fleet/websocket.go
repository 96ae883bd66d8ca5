package fleet

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/log"
)

const (
	resultsWebsocketPath = "/api/v1/fleet/results/websocket"

	messageBuffer = 100
)

// WebsocketDialer opens campaign result channels against the fleet
// manager's results websocket.
type WebsocketDialer struct {
	conf config.Fleet
}

func NewWebsocketDialer(conf config.Fleet) WebsocketDialer {
	return WebsocketDialer{conf: conf}
}

func (d WebsocketDialer) Dial(ctx context.Context) (SubscriptionChannel, error) {
	target, err := websocketURL(d.conf.URL)
	if err != nil {
		return nil, err
	}

	dialer := *websocket.DefaultDialer
	if d.conf.Insecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed test managers
	}

	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect websocket (status %s): %w", resp.Status, err)
		}

		return nil, fmt.Errorf("failed to connect websocket: %w", err)
	}

	ret := &WebsocketChannel{
		conn:     conn,
		token:    d.conf.Creds.Token,
		messages: make(chan StreamMessage, messageBuffer),
		done:     make(chan struct{}),
		logger:   log.Logger(),
	}

	return ret, nil
}

func websocketURL(base string) (string, error) {
	parsed, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid fleet URL %q: %w", base, err)
	}

	switch parsed.Scheme {
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}

	parsed.Path = resultsWebsocketPath

	return parsed.String(), nil
}

// WebsocketChannel implements SubscriptionChannel over one websocket
// connection. The protocol is: send an auth frame, then a
// select_campaign frame, then read typed messages until the manager
// closes the connection.
type WebsocketChannel struct {
	conn     *websocket.Conn
	token    string
	messages chan StreamMessage
	done     chan struct{}
	logger   logr.Logger

	closeOnce sync.Once
}

type authFrame struct {
	Type string   `json:"type"`
	Data authData `json:"data"`
}

type authData struct {
	Token string `json:"token"`
}

type selectCampaignFrame struct {
	Type string             `json:"type"`
	Data selectCampaignData `json:"data"`
}

type selectCampaignData struct {
	CampaignID uint `json:"campaign_id"`
}

func (c *WebsocketChannel) Subscribe(ctx context.Context, campaignID uint) error {
	deadline, ok := ctx.Deadline()
	if ok {
		err := c.conn.SetWriteDeadline(deadline)
		if err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	err := c.conn.WriteJSON(authFrame{Type: "auth", Data: authData{Token: c.token}})
	if err != nil {
		return fmt.Errorf("failed to send auth frame: %w", err)
	}

	err = c.conn.WriteJSON(selectCampaignFrame{Type: "select_campaign", Data: selectCampaignData{CampaignID: campaignID}})
	if err != nil {
		return fmt.Errorf("failed to select campaign %d: %w", campaignID, err)
	}

	go c.readLoop()

	return nil
}

func (c *WebsocketChannel) Messages() <-chan StreamMessage {
	return c.messages
}

func (c *WebsocketChannel) Close() error {
	var err error

	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})

	return err
}

func (c *WebsocketChannel) readLoop() {
	defer close(c.messages)

	for {
		var msg StreamMessage

		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.V(1).Info("Websocket read failed", "error", err.Error())
			}

			return
		}

		// Don't block forever on a consumer that already gave up.
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}
