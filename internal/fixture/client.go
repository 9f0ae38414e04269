package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
)

// ProcessesPath is the fetch endpoint relative to the API base URL.
const ProcessesPath = "/api/processes"

// FetchError reports a non-2xx response from the baseline API.
type FetchError struct {
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch processes: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Client fetches the baseline tree over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL (for example http://localhost:8080).
// A nil httpClient gets a 30s timeout client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchProcesses performs one GET with no retries.
func (c *Client) FetchProcesses(ctx context.Context) ([]domain.Process, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ProcessesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching processes: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, &FetchError{StatusCode: resp.StatusCode, Message: msg}
	}

	procs, err := Parse(body, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding processes: %w", err)
	}
	return procs, nil
}
