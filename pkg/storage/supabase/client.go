package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

const (
	pingTimeout                = 5 * time.Second
	responseBodyReadLimitInt64 = 1024
)

// Uploader is the blob-store surface consumed by the evidence pipeline.
type Uploader interface {
	Upload(ctx context.Context, data []byte, objectName, contentType string) (string, error)
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client stores photo bytes in a Supabase Storage bucket and returns public URLs.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	serviceKey    string
	defaultBucket string
}

// NewClient builds a Supabase Storage client and verifies the bucket is reachable.
func NewClient(ctx context.Context, cfg config.SupabaseConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("supabase url is required")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, errors.New("supabase service key is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("supabase bucket is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		serviceKey:    strings.TrimSpace(cfg.ServiceKey),
		defaultBucket: strings.TrimSpace(cfg.Bucket),
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("supabase health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "supabase storage client initialized")
	}

	return client, nil
}

// DefaultBucket returns the configured bucket name.
func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Ping verifies the bucket metadata endpoint answers with the configured key.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("supabase client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/bucket/%s", c.baseURL, url.PathEscape(c.defaultBucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimitInt64))
		return fmt.Errorf("bucket check status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Upload writes the object into the default bucket and returns its public URL.
func (c *Client) Upload(ctx context.Context, data []byte, objectName, contentType string) (string, error) {
	if c == nil {
		return "", errors.New("supabase client not initialized")
	}
	if len(data) == 0 {
		return "", errors.New("object data is empty")
	}
	objectName = strings.TrimLeft(strings.TrimSpace(objectName), "/")
	if objectName == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(c.defaultBucket), escapeObjectPath(objectName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	// Re-uploading the same object name replaces it instead of failing.
	req.Header.Set("X-Upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute upload request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimitInt64))
		return "", fmt.Errorf("upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return c.PublicURL(objectName), nil
}

// PublicURL returns the browsable URL for an object in the default bucket.
func (c *Client) PublicURL(objectName string) string {
	objectName = strings.TrimLeft(strings.TrimSpace(objectName), "/")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(c.defaultBucket), escapeObjectPath(objectName))
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

func escapeObjectPath(name string) string {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
