package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasttemplate"
)

// DefaultPublicURLTemplate is used when Options.PublicURLTemplate is empty.
const DefaultPublicURLTemplate = "{url}/storage/v1/object/public/{bucket}/{path}"

// Options configures a Client.
type Options struct {
	URL               string
	Key               string
	Bucket            string
	PublicURLTemplate string
	Timeout           time.Duration
}

// Client is a client for the hosted database, storage and realtime service.
// Requests are attempted once; retry policy belongs to the service.
type Client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	baseURL    string
	key        string
	bucket     string
	publicURL  *fasttemplate.Template
}

// New creates a new backend client.
func New(opts Options) (*Client, error) {
	if opts.URL == "" || opts.Key == "" {
		return nil, fmt.Errorf("backend url and key are required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PublicURLTemplate == "" {
		opts.PublicURLTemplate = DefaultPublicURLTemplate
	}

	tmpl, err := fasttemplate.NewTemplate(opts.PublicURLTemplate, "{", "}")
	if err != nil {
		return nil, fmt.Errorf("invalid public url template: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		baseURL:    strings.TrimRight(opts.URL, "/"),
		key:        opts.Key,
		bucket:     opts.Bucket,
		publicURL:  tmpl,
	}, nil
}

// Get performs a GET request against the service.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodGet, path, nil, result, nil)
}

// Post performs a POST request against the service.
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, path, body, result, nil)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}, headers map[string]string) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullURL := c.baseURL + path
	log.Debug().Str("method", method).Str("url", fullURL).Msg("backend request")

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().Int("status", resp.StatusCode).Str("url", fullURL).Msg("backend response")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			apiErr = &APIError{Message: strings.TrimSpace(string(respBody))}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || result == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError is an error body returned by the service. Database errors carry
// code, details and hint; storage errors carry error and message.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Kind    string `json:"error"`
}

// Error returns the backend's own message.
func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Kind != "":
		return e.Kind
	default:
		return fmt.Sprintf("backend error: status %d", e.Status)
	}
}

// IsUnauthorized reports whether the service rejected the credentials.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
