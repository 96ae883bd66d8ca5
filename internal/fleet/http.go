package fleet

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/fleetops/fleetquery/internal/config"
)

const (
	apiBasePath    = "/api/v1/fleet"
	requestTimeout = 30 * time.Second

	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// RESTClient implements Client on top of net/http, with bearer-token
// auth and bounded retries on transport errors and 5xx responses.
type RESTClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewRESTClient(conf config.Fleet) *RESTClient {
	transport := http.DefaultTransport

	if conf.Insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for self-signed test managers
		}
	}

	return &RESTClient{
		baseURL: strings.TrimSuffix(conf.URL, "/"),
		token:   conf.Creds.Token,
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

func (c *RESTClient) Get(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *RESTClient) Post(ctx context.Context, path string, body interface{}) (Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *RESTClient) Patch(ctx context.Context, path string, body interface{}) (Response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

func (c *RESTClient) Delete(ctx context.Context, path string) (Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *RESTClient) do(ctx context.Context, method, path string, params url.Values, body interface{}) (Response, error) {
	var payload []byte

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	target := c.baseURL + apiBasePath + path
	if len(params) > 0 {
		target = target + "?" + params.Encode()
	}

	return retry.DoWithData(
		func() (Response, error) {
			return c.doOnce(ctx, method, target, payload)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.RetryIf(func(err error) bool {
			transient := transientError{}

			return errors.As(err, &transient)
		}),
		retry.LastErrorOnly(true),
	)
}

func (c *RESTClient) doOnce(ctx context.Context, method, target string, payload []byte) (Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, transientError{fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, transientError{fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return Response{}, transientError{fmt.Errorf("server error %d: %s", resp.StatusCode, errorMessage(raw, resp.Status))}
	}

	ret := Response{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
	}

	if ret.Success {
		ret.Data = raw

		return ret, nil
	}

	ret.Message = errorMessage(raw, resp.Status)

	return ret, nil
}

// errorMessage extracts the manager's error message from an error body,
// falling back to the HTTP status line.
func errorMessage(raw []byte, status string) string {
	var body struct {
		Message string `json:"message"`
		Errors  []struct {
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}

	err := json.Unmarshal(raw, &body)
	if err != nil || body.Message == "" {
		return status
	}

	if len(body.Errors) > 0 && body.Errors[0].Reason != "" {
		return fmt.Sprintf("%s: %s", body.Message, body.Errors[0].Reason)
	}

	return body.Message
}

type transientError struct {
	error
}

func (e transientError) Unwrap() error {
	return e.error
}
