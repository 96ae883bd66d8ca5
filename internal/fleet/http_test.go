package fleet_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/fleet"
)

// Helper

func newClient(serverURL string) *fleet.RESTClient {
	return fleet.NewRESTClient(config.Fleet{
		URL:   serverURL,
		Creds: config.FleetCreds{Token: "test-token"},
	})
}

// Test

func TestGetBuildsRequestAndDecodesEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "different method")
		assert.Equal(t, "/api/v1/fleet/hosts", r.URL.Path, "different path")
		assert.Equal(t, "online", r.URL.Query().Get("status"), "missing query parameter")
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"), "missing bearer token")

		_, err := w.Write([]byte(`{"hosts": [{"id": 42}]}`))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	client := newClient(server.URL)

	params := url.Values{}
	params.Set("status", "online")

	resp, err := client.Get(context.Background(), "/hosts", params)
	require.NoError(t, err, "request failed")

	assert.True(t, resp.Success, "expected success")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "different status code")
	assert.JSONEq(t, `{"hosts": [{"id": 42}]}`, string(resp.Data), "different body")
}

func TestPostSendsJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "different method")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "different content type")

		var body fleet.RunQueryRequest

		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err, "failed to decode request body")
		assert.Equal(t, "SELECT 1;", body.Query, "different query")

		_, err = w.Write([]byte(`{}`))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	client := newClient(server.URL)

	resp, err := client.Post(context.Background(), "/queries/run", fleet.RunQueryRequest{Query: "SELECT 1;"})
	require.NoError(t, err, "request failed")
	assert.True(t, resp.Success, "expected success")
}

func TestClientErrorKeepsManagerMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)

		_, err := w.Write([]byte(`{"message": "Authentication required", "errors": [{"name": "base", "reason": "invalid token"}]}`))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	client := newClient(server.URL)

	resp, err := client.Get(context.Background(), "/hosts", nil)
	require.NoError(t, err, "4xx is not a transport error")

	assert.False(t, resp.Success, "expected failure")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "different status code")
	assert.Equal(t, "Authentication required: invalid token", resp.Message, "different message")
}

func TestServerErrorIsRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, err := w.Write([]byte(`{}`))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	client := newClient(server.URL)

	resp, err := client.Get(context.Background(), "/hosts", nil)
	require.NoError(t, err, "request should eventually succeed")

	assert.True(t, resp.Success, "expected success after retries")
	assert.EqualValues(t, 3, hits.Load(), "unexpected number of attempts")
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newClient(server.URL)

	_, err := client.Get(context.Background(), "/hosts", nil)
	require.Error(t, err, "expected an error")

	assert.EqualValues(t, 3, hits.Load(), "unexpected number of attempts")
}
