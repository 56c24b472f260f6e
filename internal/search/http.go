// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// send issues a request with retry and returns the open response on 2xx.
// Non-2xx responses become *types.SearchProviderError carrying the body.
func send(ctx context.Context, provider string, ep Endpoint, method, url string, body any, headers map[string]string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ep.UserAgent != "" {
		req.Header.Set("User-Agent", ep.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httputil.DoWithRetry(ctx, ep.Client, req, 0)
	if err != nil {
		return nil, &types.SearchProviderError{Provider: provider, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, &types.SearchProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       httputil.ReadBody(resp, 2048),
		}
	}
	return resp, nil
}

// sendJSON is send followed by decoding the response body into out.
func sendJSON(ctx context.Context, provider string, ep Endpoint, method, url string, body any, headers map[string]string, out any) error {
	resp, err := send(ctx, provider, ep, method, url, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &types.SearchProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("parsing response: %w", err),
		}
	}
	return nil
}

func bearer(key string) map[string]string {
	if key == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + key}
}
