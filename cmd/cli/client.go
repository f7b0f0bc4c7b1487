package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
)

type apiClient struct {
	opts *options
	http *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{opts: opts, http: &http.Client{Timeout: opts.timeout}}
}

// get decodes the response into out when its status is 200 or one of accept.
func (c *apiClient) get(ctx context.Context, path string, out any, accept ...int) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.token)
	}
	if c.opts.owner != "" {
		req.Header.Set(middleware.OwnerHeader, c.opts.owner)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && !slices.Contains(accept, resp.StatusCode) {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return resp.StatusCode, fmt.Errorf("%s: %s (status %d)", apiErr.Error, apiErr.Message, resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.StatusCode, nil
}
