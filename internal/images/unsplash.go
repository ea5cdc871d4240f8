package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/relayforge/chatrelay/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var unsplashTracer = otel.Tracer("chatrelay.internal.images.unsplash")

const defaultBaseURL = "https://api.unsplash.com"

// Client queries the Unsplash search API for a single image.
type Client struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient builds an Unsplash image lookup client.
func NewClient(accessKey, baseURL string, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		accessKey: accessKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns the top-ranked image URL for the keyword. Zero results is
// reported as found=false with a nil error; transport failures and
// non-success statuses return an error.
func (c *Client) Search(ctx context.Context, keyword string) (string, bool, error) {
	ctx, span := unsplashTracer.Start(ctx, "images.unsplash.search")
	defer span.End()
	span.SetAttributes(attribute.String("chatrelay.keyword", keyword))

	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=1", c.baseURL, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("images: build unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("images: unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("images: read unsplash response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("images: unsplash returned status %d", resp.StatusCode)
		span.RecordError(err)
		return "", false, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("images: decode unsplash response: %w", err)
	}
	if len(parsed.Results) == 0 || parsed.Results[0].URLs.Regular == "" {
		c.logger.Info("no image results", "keyword", keyword)
		return "", false, nil
	}
	return parsed.Results[0].URLs.Regular, true, nil
}
