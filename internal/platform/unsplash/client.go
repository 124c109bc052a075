package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoImage means the search returned no usable photo.
var ErrNoImage = errors.New("no matching image found")

const defaultBaseURL = "https://api.unsplash.com"

// Client looks up stock food photography on Unsplash.
type Client struct {
	httpClient *http.Client
	accessKey  string
	baseURL    string
}

// NewClient creates an Unsplash client authenticated with an access key.
func NewClient(accessKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		accessKey:  accessKey,
		baseURL:    defaultBaseURL,
	}
}

// SearchFood returns a photo URL for a dish name, retrying with a generic
// plated-food query when the dish itself matches nothing.
func (c *Client) SearchFood(ctx context.Context, query string) (string, error) {
	photo, err := c.search(ctx, query+" food dish meal")
	if errors.Is(err, ErrNoImage) {
		return c.search(ctx, "delicious food plated")
	}
	return photo, err
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "squarish")
	params.Set("content_filter", "high")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build image search request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode image search response: %w", err)
	}
	if len(result.Results) == 0 || result.Results[0].URLs.Regular == "" {
		return "", ErrNoImage
	}
	return result.Results[0].URLs.Regular, nil
}
