package fleet_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/fleet"
)

// Helper

type wsFrame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// startManager runs a fake results websocket endpoint. It checks the
// auth and select_campaign frames, then pushes the given messages and
// closes the connection.
func startManager(t *testing.T, messages []fleet.StreamMessage) *httptest.Server {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/fleet/results/websocket", r.URL.Path, "different websocket path")

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err, "failed to upgrade connection")

		defer conn.Close()

		var auth wsFrame

		err = conn.ReadJSON(&auth)
		require.NoError(t, err, "failed to read auth frame")
		assert.Equal(t, "auth", auth.Type, "different frame type")
		assert.Equal(t, "test-token", auth.Data["token"], "different token")

		var selectCampaign wsFrame

		err = conn.ReadJSON(&selectCampaign)
		require.NoError(t, err, "failed to read select_campaign frame")
		assert.Equal(t, "select_campaign", selectCampaign.Type, "different frame type")
		assert.EqualValues(t, 7, selectCampaign.Data["campaign_id"], "different campaign id")

		for _, msg := range messages {
			err = conn.WriteJSON(msg)
			require.NoError(t, err, "failed to write message")
		}

		// The peer may already be gone, ignore the close handshake error.
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))

	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, serverURL string) fleet.SubscriptionChannel {
	dialer := fleet.NewWebsocketDialer(config.Fleet{
		URL:   serverURL,
		Creds: config.FleetCreds{Token: "test-token"},
	})

	channel, err := dialer.Dial(context.Background())
	require.NoError(t, err, "failed to dial")

	t.Cleanup(func() { _ = channel.Close() })

	return channel
}

// Test

func TestSubscribeStreamsMessagesUntilClose(t *testing.T) {
	t.Parallel()

	pushed := []fleet.StreamMessage{
		{Type: fleet.MessageTypeResult, Data: []byte(`{"host": {"id": 1}}`)},
		{Type: fleet.MessageTypeStatus, Data: []byte(`{"status": "finished"}`)},
	}

	server := startManager(t, pushed)

	channel := dial(t, server.URL)

	err := channel.Subscribe(context.Background(), 7)
	require.NoError(t, err, "failed to subscribe")

	var received []fleet.StreamMessage

	timeout := time.After(5 * time.Second)

	for {
		select {
		case msg, ok := <-channel.Messages():
			if !ok {
				require.Len(t, received, 2, "unexpected number of messages")
				assert.Equal(t, fleet.MessageTypeResult, received[0].Type, "different first message")
				assert.Equal(t, fleet.MessageTypeStatus, received[1].Type, "different second message")
				assert.JSONEq(t, `{"status": "finished"}`, string(received[1].Data), "different payload")

				return
			}

			received = append(received, msg)

		case <-timeout:
			t.Fatal("timed out waiting for the channel to close")
		}
	}
}

func TestDialFailsWithoutServer(t *testing.T) {
	t.Parallel()

	dialer := fleet.NewWebsocketDialer(config.Fleet{URL: "http://127.0.0.1:1"})

	_, err := dialer.Dial(context.Background())
	require.Error(t, err, "expected an error")
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	server := startManager(t, nil)

	channel := dial(t, server.URL)

	err := channel.Subscribe(context.Background(), 7)
	require.NoError(t, err, "failed to subscribe")

	err = channel.Close()
	require.NoError(t, err, "first close failed")

	err = channel.Close()
	require.NoError(t, err, "second close failed")
}
