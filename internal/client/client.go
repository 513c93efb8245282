// Package client talks to the remote sensor data service: a single HTTP
// endpoint that accepts JSON action requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/linemon/internal/sensor"
)

// HTTPClient is the subset of *http.Client used here.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// IsStatus reports whether err is a *StatusError and returns its code.
func IsStatus(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

type fetchRequest struct {
	Action string `json:"action"`
}

// Client sends fetch and submit requests to one endpoint.
type Client struct {
	endpoint string
	http     HTTPClient
}

// New creates a client for endpoint. A zero timeout leaves the HTTP
// client's default in place.
func New(endpoint string, timeout time.Duration) *Client {
	return NewWithHTTPClient(endpoint, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client using a caller-supplied transport.
func NewWithHTTPClient(endpoint string, hc HTTPClient) *Client {
	return &Client{endpoint: endpoint, http: hc}
}

// Endpoint returns the service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch asks the service for every stored record. An empty dataset is
// returned as a non-nil empty slice.
func (c *Client) Fetch(ctx context.Context) ([]sensor.Record, error) {
	resp, err := c.post(ctx, fetchRequest{Action: "fetch"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []sensor.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decode records")
	}
	if records == nil {
		records = []sensor.Record{}
	}
	return records, nil
}

// Submit sends a single record. Only the response status is inspected.
func (c *Client) Submit(ctx context.Context, r sensor.Record) error {
	resp, err := c.post(ctx, r)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// post sends body as JSON and returns the response when the status is 2xx.
// On any other status the body is drained and a *StatusError returned.
func (c *Client) post(ctx context.Context, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", c.endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}
