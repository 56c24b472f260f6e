// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/deep-research/internal/httputil"
)

// ErrBlocked is returned when a vendor refuses to answer on safety grounds.
var ErrBlocked = errors.New("response blocked by safety filter")

// APIError is a non-2xx vendor response.
type APIError struct {
	Provider   Name
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

const maxLine = 1024 * 1024

// readLines calls fn for every non-empty line of r until fn returns false
// or r is exhausted.
func readLines(r io.Reader, fn func(line []byte) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !fn(line) {
			return nil
		}
	}
	return scanner.Err()
}

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
)

// readEvents calls fn with the payload of every server-sent "data:" line
// until fn returns false, "[DONE]" arrives, or r is exhausted.
func readEvents(r io.Reader, fn func(data []byte) bool) error {
	return readLines(r, func(line []byte) bool {
		if !bytes.HasPrefix(line, dataPrefix) {
			return true
		}
		data := bytes.TrimSpace(line[len(dataPrefix):])
		if len(data) == 0 {
			return true
		}
		if bytes.Equal(data, doneMarker) {
			return false
		}
		return fn(data)
	})
}

// postStream sends body as JSON and returns the open response on 2xx.
func postStream(ctx context.Context, ep Endpoint, url string, body any, headers map[string]string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ep.UserAgent != "" {
		req.Header.Set("User-Agent", ep.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httputil.DoWithRetry(ctx, ep.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s API request: %w", ep.Provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, &APIError{Provider: ep.Provider, StatusCode: resp.StatusCode, Body: httputil.ReadBody(resp, 4096)}
	}
	return resp, nil
}

// base is embedded by every adapter.
type base struct {
	ep Endpoint
}

func (b base) Provider() Name { return b.ep.Provider }
func (b base) Model() string  { return b.ep.Model }
