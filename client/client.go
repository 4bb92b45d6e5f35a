// Package client is the calling-side companion to the verification service.
//
// It wraps the HTTP contract (send, verify) and runs the race between
// automatic code retrieval and manual entry. Whichever path produces a
// correct code first wins the server-side consume; the loser observes an
// expired or already-consumed result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

// API is a thin HTTP client for the verification service.
type API struct {
	baseURL string
	httpc   *http.Client
}

// NewAPI creates an API client for the service at baseURL. When httpc is nil
// a client with a sane default timeout is used.
func NewAPI(baseURL string, httpc *http.Client) *API {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &API{baseURL: baseURL, httpc: httpc}
}

// SendResult is the service response to a send request.
type SendResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
}

// VerifyResult is the service response to a verify request.
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Status string `json:"status"`
}

type apiError struct {
	Error string `json:"error"`
}

// Send requests a fresh code for the number. Country is an optional ISO
// region hint for national-format numbers.
func (a *API) Send(ctx context.Context, number, country string) (*SendResult, error) {
	var out SendResult
	if err := a.post(ctx, "/sms/send", map[string]string{
		"number":  number,
		"country": country,
	}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Verify submits a candidate code for the number.
func (a *API) Verify(ctx context.Context, number, country, code, source string) (*VerifyResult, error) {
	var out VerifyResult
	if err := a.post(ctx, "/sms/verify", map[string]string{
		"number":  number,
		"country": country,
		"code":    code,
		"source":  source,
	}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (a *API) post(ctx context.Context, path string, body map[string]string, out any) error {
	payload := make(map[string]string, len(body))
	for k, v := range body {
		if v != "" {
			payload[k] = v
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("client: marshal request: %w", err)
	}

	endpoint, err := url.JoinPath(a.baseURL, path)
	if err != nil {
		return fmt.Errorf("client: join url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var aerr apiError
		if err := json.Unmarshal(data, &aerr); err == nil && aerr.Error != "" {
			return fmt.Errorf("client: %s: %s", path, aerr.Error)
		}
		return fmt.Errorf("client: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}

	return nil
}
