// Package stream reads listener statistics from the Icecast server that
// carries the station.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/linesmerrill/radio-santana-api/models"
)

// ErrNoSource is returned when the server reports no mounted source
var ErrNoSource = errors.New("stream: no source mounted")

// Client polls an Icecast status-json.xsl endpoint and keeps the last result
type Client struct {
	statusURL string
	streamURL string
	http      *http.Client
	now       func() time.Time

	mu     sync.RWMutex
	latest models.StreamStats
	ok     bool
}

// NewClient returns a client for statusURL. streamURL picks the mount when the
// server carries several and is echoed back in the stats.
func NewClient(statusURL, streamURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		statusURL: statusURL,
		streamURL: streamURL,
		http:      hc,
		now:       time.Now,
	}
}

type icecastSource struct {
	Listeners  int         `json:"listeners"`
	Bitrate    interface{} `json:"bitrate"`
	Genre      string      `json:"genre"`
	ServerURL  string      `json:"server_url"`
	Title      string      `json:"title"`
	ServerName string      `json:"server_name"`
	ListenURL  string      `json:"listenurl"`
}

type icecastStatus struct {
	Icestats struct {
		Source json.RawMessage `json:"source"`
	} `json:"icestats"`
}

// Fetch reads the current stats from the server
func (c *Client) Fetch(ctx context.Context) (models.StreamStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return models.StreamStats{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.StreamStats{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.StreamStats{}, fmt.Errorf("stream: status endpoint returned %d", resp.StatusCode)
	}

	var status icecastStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return models.StreamStats{}, fmt.Errorf("stream: decode status: %w", err)
	}
	src, err := c.pickSource(status.Icestats.Source)
	if err != nil {
		return models.StreamStats{}, err
	}

	stats := models.StreamStats{
		Listeners: src.Listeners,
		Genre:     src.Genre,
		Website:   src.ServerURL,
		Title:     src.Title,
		StreamURL: c.streamURL,
		UpdatedAt: c.now().UTC(),
	}
	if stats.Title == "" {
		stats.Title = src.ServerName
	}
	if src.Bitrate != nil {
		stats.Bitrate = fmt.Sprint(src.Bitrate)
	}
	return stats, nil
}

// pickSource handles both shapes Icecast uses: one object for a single mount,
// an array for several
func (c *Client) pickSource(raw json.RawMessage) (icecastSource, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return icecastSource{}, ErrNoSource
	}

	var sources []icecastSource
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &sources); err != nil {
			return icecastSource{}, fmt.Errorf("stream: decode sources: %w", err)
		}
	} else {
		var one icecastSource
		if err := json.Unmarshal(raw, &one); err != nil {
			return icecastSource{}, fmt.Errorf("stream: decode source: %w", err)
		}
		sources = append(sources, one)
	}
	if len(sources) == 0 {
		return icecastSource{}, ErrNoSource
	}

	for _, s := range sources {
		if c.streamURL != "" && s.ListenURL == c.streamURL {
			return s, nil
		}
	}
	return sources[0], nil
}

// Refresh fetches the stats and keeps them for Latest
func (c *Client) Refresh(ctx context.Context) error {
	stats, err := c.Fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.latest = stats
	c.ok = true
	c.mu.Unlock()
	return nil
}

// Latest returns the last stats Refresh stored
func (c *Client) Latest() (models.StreamStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.ok
}
