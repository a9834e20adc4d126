package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
)

const (
	defaultBaseURL             = "https://vision.googleapis.com/v1"
	responseBodyReadLimitInt64 = 1024
)

var (
	errAPIKeyRequired = errors.New("vision api key is required")

	// ErrUnavailable marks provider/network failures, as opposed to a
	// successful call that simply found no text.
	ErrUnavailable = errors.New("ocr provider unavailable")
)

// TextReader is the surface consumed by the validation pipeline.
// An empty string with a nil error means the provider ran but found no text.
type TextReader interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// Client calls the Google Cloud Vision text-detection API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Vision base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Vision client from configuration.
func NewClient(cfg config.VisionConfig, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(cfg.APIKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		client.baseURL = strings.TrimSpace(cfg.BaseURL)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

// RecognizeText submits the image for TEXT_DETECTION and returns the full
// detected text upper-cased. It returns "" when the provider found no text
// and an error wrapping ErrUnavailable when the provider could not be reached.
func (c *Client) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: client not configured", ErrUnavailable)
	}
	if len(image) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal annotate request: %w", err)
	}

	url := fmt.Sprintf("%s/images:annotate?key=%s", strings.TrimRight(c.baseURL, "/"), c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build annotate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimitInt64))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var apiResp struct {
		Responses []struct {
			FullTextAnnotation *struct {
				Text string `json:"text"`
			} `json:"fullTextAnnotation"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode annotate response: %v", ErrUnavailable, err)
	}

	if len(apiResp.Responses) == 0 || apiResp.Responses[0].FullTextAnnotation == nil {
		return "", nil
	}
	return strings.ToUpper(apiResp.Responses[0].FullTextAnnotation.Text), nil
}

// IsUnavailable reports whether the error represents a provider outage.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
