package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/cmd/version"
	"github.com/capturekit/capture-mcp-server/pkg/metrics"
)

const (
	// DefaultEndpoint is the public capture API
	DefaultEndpoint = "https://api.capturekit.dev"
	// DefaultTimeout covers video recordings, which are the slowest calls
	DefaultTimeout = 60

	// APIKeyHeader carries the account key on every request
	APIKeyHeader = "X-Api-Key"

	tracerName = "github.com/capturekit/capture-mcp-server/pkg/client"
)

// Config contains capture API client configuration
type Config struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"apikey" json:"apikey" yaml:"apikey"`
	Timeout  int    `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// Client issues requests against the capture API
type Client struct {
	config     *Config
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	tracer     trace.Tracer
}

// Response is a successful (2xx) answer from the capture API
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Header      http.Header
	Elapsed     time.Duration
}

// IsJSON reports whether the body is a JSON document
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.Contains(r.ContentType, "json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Decode unmarshals the JSON body into out
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode capture API response: %w", err)
	}
	return nil
}

// New creates a new capture API client
func New(config *Config, logger *zap.Logger) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("client config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.Endpoint), "/")
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	timeout := time.Duration(DefaultTimeout) * time.Second
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		config: config,
		logger: logger.Named("client"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL: baseURL,
		tracer:  otel.Tracer(tracerName),
	}

	c.logger.Info("Capture API client created",
		zap.String("base_url", baseURL),
		zap.Duration("timeout", timeout),
		zap.Bool("api_key_set", config.APIKey != ""))

	return c, nil
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON posts payload to endpoint and returns the raw response
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, payload)
}

// Get fetches endpoint and decodes the JSON answer into out
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Do issues exactly one request to the capture API. Non-2xx answers come
// back as *APIError carrying the backend message or the HTTP status text.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload any) (*Response, error) {
	if c.config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := c.baseURL + endpoint
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "capture "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", url),
			attribute.String("capture.request_id", requestID),
		))
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "marshal request")
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(APIKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Making capture API request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		metrics.RecordBackendRequest(endpoint, elapsed, 0, false)
		metrics.RecordBackendError(endpoint, "network_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Error("Capture API request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, elapsed, 0, false)
		metrics.RecordBackendError(endpoint, "read_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("http.response.body.size", len(body)))

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	metrics.RecordBackendRequest(endpoint, elapsed, len(body), success)

	c.logger.Info("Capture API response received",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed))

	if !success {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    extractErrorMessage(body, resp.Status),
		}
		metrics.RecordBackendError(endpoint, fmt.Sprintf("http_%d", resp.StatusCode))
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	span.SetStatus(codes.Ok, "")
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Header:      resp.Header,
		Elapsed:     elapsed,
	}, nil
}
