package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/alper4283/intern-project-product-review/pkg/apierrors"
)

// Response bodies larger than this are rejected as a ParseError rather than
// decoded.
const maxBodyBytes = 1 << 20

// GetJSON issues a GET request for path (which may carry a query string) and
// decodes the 2xx response body into out. An empty body is treated as JSON
// null and leaves out untouched. Pass a nil out to discard the body.
func GetJSON(ctx context.Context, c *Client, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with body serialized as JSON and decodes
// the 2xx response body into out.
func PostJSON(ctx context.Context, c *Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload []byte, out any) error {
	url := c.baseURL + path

	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, _, err := c.do(ctx, req)
	if err != nil {
		return &apierrors.NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return &apierrors.NetworkError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apierrors.HTTPError{
			URL:     url,
			Status:  resp.StatusCode,
			Message: extractMessage(data),
		}
	}

	// Empty body is JSON null: nothing to decode.
	if len(bytes.TrimSpace(data)) == 0 || out == nil {
		return nil
	}

	if len(data) > maxBodyBytes {
		return &apierrors.ParseError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &apierrors.ParseError{URL: url, Err: err}
	}
	return nil
}

// extractMessage pulls the "message" field out of an error body when the
// body is a JSON object carrying one. Returns "" otherwise, in which case
// the HTTPError synthesizes "HTTP <status> <status text>".
func extractMessage(data []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	raw, ok := body["message"]
	if !ok {
		return ""
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return ""
	}
	return message
}
