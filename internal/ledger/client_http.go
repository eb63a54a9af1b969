package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	dErrors "landgate/pkg/domain-errors"

	"landgate/internal/platform/config"
)

// HTTPClient talks JSON over HTTP to a ledger node's RPC bridge. All
// calls carry basic auth for the node RPC user and are bounded by the
// configured query timeout on top of whatever deadline the caller's
// context already carries.
type HTTPClient struct {
	base     string
	username string
	password string
	timeout  time.Duration
	poll     time.Duration
	http     *http.Client
}

// NewHTTPClient builds a client from ledger configuration. It does not
// dial eagerly; the first query surfaces connectivity problems.
func NewHTTPClient(cfg config.Ledger) *HTTPClient {
	return &HTTPClient{
		base:     fmt.Sprintf("http://%s", cfg.Addr()),
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.QueryTimeout,
		poll:     cfg.PollInterval,
		http:     &http.Client{},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode ledger request")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build ledger request")
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger node unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("ledger node returned %d for %s", resp.StatusCode, path))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decode ledger response")
	}
	return nil
}

// QueryUnconsumed implements Client. The node already filters to
// unconsumed records visible to our identity and sorts by descending
// storage index; the gateway relies on that ordering.
func (c *HTTPClient) QueryUnconsumed(ctx context.Context, entity EntityType) ([]Envelope, error) {
	var out struct {
		States []Envelope `json:"states"`
	}
	path := fmt.Sprintf("/vault/%s?status=unconsumed", url.PathEscape(string(entity)))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.States {
		out.States[i].Entity = entity
	}
	return out.States, nil
}

// SubmitAction implements Client.
func (c *HTTPClient) SubmitAction(ctx context.Context, action Action) error {
	path := fmt.Sprintf("/flows/%s", url.PathEscape(action.Type))
	return c.do(ctx, http.MethodPost, path, action.Arguments, nil)
}

// Subscribe implements Client by polling the vault and diffing on the
// storage index. The node bridge has no streaming endpoint, so new
// records are detected by their index exceeding the last one seen.
func (c *HTTPClient) Subscribe(ctx context.Context, entity EntityType) ([]Envelope, <-chan []Envelope, error) {
	snapshot, err := c.QueryUnconsumed(ctx, entity)
	if err != nil {
		return nil, nil, err
	}
	var last uint64
	for _, env := range snapshot {
		if env.RefIndex > last {
			last = env.RefIndex
		}
	}

	updates := make(chan []Envelope)
	go func() {
		defer close(updates)
		ticker := time.NewTicker(c.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			current, err := c.QueryUnconsumed(ctx, entity)
			if err != nil {
				// Transient node outages are retried on the next tick.
				continue
			}
			var produced []Envelope
			for _, env := range current {
				if env.RefIndex > last {
					produced = append(produced, env)
				}
			}
			if len(produced) == 0 {
				continue
			}
			for _, env := range produced {
				if env.RefIndex > last {
					last = env.RefIndex
				}
			}
			select {
			case updates <- produced:
			case <-ctx.Done():
				return
			}
		}
	}()
	return snapshot, updates, nil
}

// NodeIdentity implements Client.
func (c *HTTPClient) NodeIdentity(ctx context.Context) (Party, error) {
	var out Party
	if err := c.do(ctx, http.MethodGet, "/node/identity", nil, &out); err != nil {
		return Party{}, err
	}
	return out, nil
}

// NetworkPeers implements Client.
func (c *HTTPClient) NetworkPeers(ctx context.Context) ([]Party, error) {
	var out struct {
		Peers []Party `json:"peers"`
	}
	if err := c.do(ctx, http.MethodGet, "/network/peers", nil, &out); err != nil {
		return nil, err
	}
	return out.Peers, nil
}
