package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// QuestionField is the form field /ask reads the question from
const QuestionField = "pergunta"

// Client handles communication with the CSV analysis backend
type Client struct {
	baseURL string
	client  *resty.Client
	logger  *zap.SugaredLogger
}

// NewClient creates a new backend client. A zero timeout leaves requests
// unbounded; they end when the backend answers or ctx is cancelled.
func NewClient(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetLogger(logger).
		SetHeader("User-Agent", "eda-client/1.0")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}

	return &Client{
		baseURL: baseURL,
		client:  rc,
		logger:  logger,
	}
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a CSV file as the multipart field "file" and returns the
// filename the backend stored it under
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(path), f).
		Post("/upload")
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}

	c.logger.Debugw("upload finished", "status", res.StatusCode(), "path", path)

	if !res.IsSuccess() {
		return nil, c.statusError("/upload", res)
	}

	var uploaded UploadResponse
	if err := json.Unmarshal(res.Body(), &uploaded); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	if uploaded.Filename == "" {
		return nil, ErrMissingFilename
	}

	return &uploaded, nil
}

// Ask posts a question as a form-urlencoded body and returns the raw
// response. Interpreting the body is left to the caller.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{QuestionField: question}).
		Post("/ask")
	if err != nil {
		return nil, fmt.Errorf("ask request failed: %w", err)
	}

	contentType := res.Header().Get("Content-Type")
	c.logger.Debugw("ask finished", "status", res.StatusCode(), "content_type", contentType, "bytes", len(res.Body()))

	if !res.IsSuccess() {
		return nil, c.statusError("/ask", res)
	}

	return &AskResponse{
		ContentType: contentType,
		Body:        res.Body(),
	}, nil
}

// Current returns the file the backend currently has loaded
func (c *Client) Current(ctx context.Context) (*CurrentResponse, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/current")
	if err != nil {
		return nil, fmt.Errorf("current file request failed: %w", err)
	}

	if !res.IsSuccess() {
		return nil, c.statusError("/current", res)
	}

	var current CurrentResponse
	if err := json.Unmarshal(res.Body(), &current); err != nil {
		return nil, fmt.Errorf("failed to parse current file response: %w", err)
	}

	return &current, nil
}

// HealthCheck verifies that the backend is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("backend is unreachable at %s: %w", c.baseURL, err)
	}

	if !res.IsSuccess() {
		return c.statusError("/", res)
	}

	return nil
}

func (c *Client) statusError(endpoint string, res *resty.Response) error {
	msg := extractMessage(res.Header().Get("Content-Type"), res.Body())
	c.logger.Debugw("backend returned error status", "endpoint", endpoint, "status", res.StatusCode(), "message", msg)

	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: res.StatusCode(),
		Message:    msg,
	}
}
