// Package upstream is the typed client for the monitoring backend's REST
// API. It fetches the topology/L3/alert documents the dashboard state is
// built from and forwards alert acknowledgements.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"watchtower/dashd/internal/topo"
)

// DefaultWebSocketPath is where the backend serves its update stream.
const DefaultWebSocketPath = "/ws/updates"

type Client struct {
	log    zerolog.Logger
	base   *url.URL
	http   *http.Client
	wsPath string
}

// New builds a client for the given base URL, e.g. "http://backend:8000".
func New(baseURL, wsPath string, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream url %q must be http or https", baseURL)
	}
	if wsPath == "" {
		wsPath = DefaultWebSocketPath
	}
	return &Client{
		log:    log.With().Str("component", "upstream").Logger(),
		base:   u,
		http:   &http.Client{Timeout: 15 * time.Second},
		wsPath: wsPath,
	}, nil
}

// WebSocketURL derives the ws:// endpoint from the base URL.
func (c *Client) WebSocketURL() string {
	ws := *c.base
	if ws.Scheme == "https" {
		ws.Scheme = "wss"
	} else {
		ws.Scheme = "ws"
	}
	ws.Path = c.wsPath
	return ws.String()
}

// Topology fetches the full topology snapshot.
func (c *Client) Topology(ctx context.Context) (*topo.Topology, error) {
	var t topo.Topology
	if err := c.getJSON(ctx, "/api/topology", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// L3Topology fetches the VLAN-grouped layer-3 snapshot.
func (c *Client) L3Topology(ctx context.Context) (*topo.L3Topology, error) {
	var l3 topo.L3Topology
	if err := c.getJSON(ctx, "/api/topology/l3", nil, &l3); err != nil {
		return nil, err
	}
	return &l3, nil
}

// Alerts fetches alert summaries, optionally filtered by status.
func (c *Client) Alerts(ctx context.Context, status string) ([]topo.Alert, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var list []topo.Alert
	if err := c.getJSON(ctx, "/api/alerts", q, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AcknowledgeAlert forwards an acknowledgement upstream.
func (c *Client) AcknowledgeAlert(ctx context.Context, id string) error {
	u := *c.base
	u.Path += "/api/alert/" + url.PathEscape(id) + "/acknowledge"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("acknowledge alert %s: upstream returned %s", id, resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := *c.base
	u.Path += path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: upstream returned %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
