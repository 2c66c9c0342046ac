package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirisamevanilla/chartdl/internal/model"
)

// Client fetches the song catalog.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a catalog client with the given request timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchSongs retrieves and decodes the catalog from url. A failure here is
// fatal to the run; no downloads are attempted without a catalog.
func (c *Client) FetchSongs(ctx context.Context, url string) ([]model.Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var records []jsonSong
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	songs := make([]model.Song, 0, len(records))
	for _, record := range records {
		songs = append(songs, record.toSong())
	}

	return songs, nil
}
