package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ErrUploadFailed is returned for a rejected multipart upload when the
// server gave no usable error message.
var ErrUploadFailed = errors.New("upload failed")

// PostMultipart posts a multipart/form-data body assembled by build. Only
// the bearer header is set explicitly; the Content-Type comes from the
// multipart writer so the boundary survives intact.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, build func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := build(w); err != nil {
		return fmt.Errorf("api: build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("api: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	c.logRequest(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: POST %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}
	c.logResponse(resp, raw)

	if err := c.checkStatus(ctx, resp.StatusCode, raw); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Message == "" {
			return fmt.Errorf("api: http %d: %w", httpErr.StatusCode, ErrUploadFailed)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
