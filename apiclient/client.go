// Package apiclient sends requests to the API under test and normalizes every outcome,
// including network failures, into a Result.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront-qa/api-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DefaultTimeout is the per-request timeout used if Config.Timeout is not set.
const DefaultTimeout = time.Second * 15

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Config contains the parameters for New.
type Config struct {
	// BaseURL is prepended to every request path, e.g. "http://localhost:5000/api".
	BaseURL string

	// Timeout applies to each request as a whole. Zero means DefaultTimeout.
	Timeout time.Duration

	// Headers are sent with every request. Request-specific headers and a request's Token take
	// precedence.
	Headers map[string]string

	// HTTPClient overrides the underlying client. Its own Timeout is left as is.
	HTTPClient *http.Client

	// Logger receives a line for every request and response.
	Logger framework.Logger
}

// Client performs single HTTP requests against a fixed base URL. It never retries and never
// caches.
type Client struct {
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	logger     framework.Logger
}

// Request describes one API call.
type Request struct {
	Method string

	// Path is relative to the client's base URL.
	Path  string
	Query url.Values

	// Body is encoded as JSON, unless it is a []byte, which is sent as is. Nil means no body.
	Body    interface{}
	Headers map[string]string

	// Token, if not empty, is sent as a bearer token in the Authorization header.
	Token string

	// Timeout overrides the client's timeout for this request if it is shorter.
	Timeout time.Duration
}

func New(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	headers := make(map[string]string, len(config.Headers))
	for k, v := range config.Headers {
		headers[k] = v
	}
	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		headers:    headers,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithLogger returns a copy of the client that logs to a different destination, such as the
// debug log of a single test case.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	c1 := *c
	c1.logger = logger
	return &c1
}

// Do is shorthand for Call with a method, path, optional body, and optional headers.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, headers map[string]string) Result {
	return c.Call(ctx, Request{Method: method, Path: path, Body: body, Headers: headers})
}

// Call performs the request. It never panics and never returns an error separately: a
// transport failure produces a Result with Status 0 and a non-empty Error.
func (c *Client) Call(ctx context.Context, req Request) Result {
	startTime := time.Now()
	result := c.call(ctx, req)
	result.Request = req
	result.Elapsed = time.Since(startTime)
	if result.Status == 0 {
		c.logger.Printf("Request failed after %s: %s", result.Elapsed, result.Error)
	} else {
		c.logger.Printf("Response status %d after %s: %s", result.Status, result.Elapsed,
			truncate(redactBody(result.Body), maxMessageLength))
	}
	return result
}

func (c *Client) call(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !supportedMethods[method] {
		return faultResult("unsupported request method %q", req.Method)
	}
	fullURL, err := c.resolveURL(req.Path, req.Query)
	if err != nil {
		return faultResult("invalid request URL: %s", err)
	}
	body, err := encodeBody(req.Body)
	if err != nil {
		return faultResult("cannot encode request body: %s", err)
	}

	timeout := c.timeout
	if req.Timeout > 0 && req.Timeout < timeout {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return faultResult("cannot create request: %s", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	c.logger.Printf("Request: %s", CurlCommand(method, fullURL, httpReq.Header, body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{Kind: framework.KindTransport, Error: describeTransportError(err, timeout)}
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{
			Kind:  framework.KindTransport,
			Error: fmt.Sprintf("error reading response body: %s", describeTransportError(err, timeout)),
		}
	}

	result := Result{
		Success: resp.StatusCode < 400,
		Status:  resp.StatusCode,
		Payload: decodePayload(data),
		Body:    data,
		Header:  resp.Header,
	}
	if !result.Success {
		result.Kind = framework.KindHTTP
	}
	return result
}

func (c *Client) resolveURL(path string, query url.Values) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return "", fmt.Errorf("path %q must be relative to the base URL", path)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case ldvalue.Value:
		if b.IsNull() {
			return nil, nil
		}
		return []byte(b.JSONString()), nil
	default:
		return json.Marshal(body)
	}
}

func decodePayload(data []byte) ldvalue.Value {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ldvalue.Null()
	}
	if json.Valid(trimmed) {
		return ldvalue.Parse(trimmed)
	}
	return ldvalue.String(string(data))
}

func describeTransportError(err error, timeout time.Duration) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("request timed out after %s", timeout)
	}
	return err.Error()
}

func faultResult(format string, args ...interface{}) Result {
	return Result{Kind: framework.KindHarnessFault, Error: fmt.Sprintf(format, args...)}
}
