// Package client is the HTTP SDK for the threadworks API. Client wraps the
// REST contract one call per endpoint; Facade layers the workflow operations
// and local caching on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"threadworks/internal/storage"
)

// APIError is a non-2xx response from the server, with the message the server
// put in its error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MoveRequest mirrors the server's move body. A nil SkipReason completes the
// current phase; a non-nil one skips it.
type MoveRequest struct {
	SkipReason *string `json:"skipReason,omitempty"`
	UserID     string  `json:"userId,omitempty"`
	UserName   string  `json:"userName,omitempty"`
}

type BulkMoveRequest struct {
	MeasurementIDs []string `json:"measurementIds"`
	UserID         string   `json:"userId,omitempty"`
	UserName       string   `json:"userName,omitempty"`
}

type RejectRequest struct {
	TargetPhaseID string `json:"targetPhaseId"`
	Reason        string `json:"reason"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
}

type BulkResult struct {
	SuccessCount int    `json:"successCount"`
	FailCount    int    `json:"failCount"`
	Message      string `json:"message"`
}

func (c *Client) GetActivePhases(ctx context.Context) ([]storage.PhaseConfig, error) {
	var phases []storage.PhaseConfig
	err := c.doJSON(ctx, http.MethodGet, "/api/phase-configs/active", nil, &phases)
	return phases, err
}

func (c *Client) GetOrders(ctx context.Context) ([]storage.Order, error) {
	var orders []storage.Order
	err := c.doJSON(ctx, http.MethodGet, "/api/orders", nil, &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*storage.Order, error) {
	var order storage.Order
	err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error) {
	var measurements []storage.Measurement
	err := c.doJSON(ctx, http.MethodGet, "/api/measurements/order/"+url.PathEscape(orderID), nil, &measurements)
	return measurements, err
}

func (c *Client) MoveOrderToNextPhase(ctx context.Context, orderID string, req MoveRequest) (*storage.Order, error) {
	var order storage.Order
	path := "/api/orders/" + url.PathEscape(orderID) + "/move-to-next-phase"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MarkOrderComplete(ctx context.Context, orderID string) (*storage.Order, error) {
	var order storage.Order
	path := "/api/orders/" + url.PathEscape(orderID) + "/mark-complete"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MoveMeasurementToNextPhase(ctx context.Context, measurementID string, req MoveRequest) (*storage.Measurement, error) {
	var m storage.Measurement
	path := "/api/measurements/" + url.PathEscape(measurementID) + "/move-to-next-phase"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) BulkMoveToNextPhase(ctx context.Context, req BulkMoveRequest) (*BulkResult, error) {
	var result BulkResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/measurements/bulk/move-to-next-phase", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RejectMeasurementToPhase(ctx context.Context, measurementID string, req RejectRequest) (*storage.Measurement, error) {
	var m storage.Measurement
	path := "/api/measurements/" + url.PathEscape(measurementID) + "/reject-to-phase"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
