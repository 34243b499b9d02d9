package terminal

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stocktrail/internal/domain/snapshot"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// Client talks to the central server's sync API.
type Client struct {
	baseURL    string
	terminalID string
	http       *http.Client
	codec      *snapshot.Codec
}

// NewClient creates a sync client.
func NewClient(baseURL, terminalID string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("server url is empty")
	}
	if strings.TrimSpace(terminalID) == "" {
		return nil, fmt.Errorf("terminal id is empty")
	}

	codec, err := snapshot.NewCodec()
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		terminalID: terminalID,
		http:       &http.Client{Timeout: timeout},
		codec:      codec,
	}, nil
}

var _ Gateway = (*Client)(nil)

// PullSnapshot downloads and decodes the current catalog snapshot.
func (c *Client) PullSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/sync/snapshot", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Terminal-ID", c.terminalID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull snapshot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return c.codec.Decode(body)
}

// PushOrders uploads queued sales and returns the per-order acks. The
// idempotency key is derived from the batch content, so retrying the same
// batch after a timeout replays the original response.
func (c *Client) PushOrders(ctx context.Context, sales []dto.CommitOrderRequest) ([]dto.SyncAck, error) {
	payload, err := json.Marshal(dto.PushOrdersRequest{Orders: sales})
	if err != nil {
		return nil, fmt.Errorf("marshal orders: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sync/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Terminal-ID", c.terminalID)
	req.Header.Set("X-Idempotency-Key", c.terminalID+"-"+hex.EncodeToString(hash[:16]))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push orders: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed dto.PushOrdersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal push response: %w", err)
	}
	return parsed.Results, nil
}
