package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

var _ ports.ModelBackend = Backend{}

// Backend posts the model request to a memochat-compatible proxy endpoint
// and never talks to a model provider directly.
type Backend struct {
	URL            string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

func New(rawURL string, client *http.Client, timeout time.Duration) (Backend, error) {
	endpoint, err := validateURL(rawURL)
	if err != nil {
		return Backend{}, err
	}
	return Backend{URL: endpoint, HTTPClient: client, RequestTimeout: timeout}, nil
}

func (b Backend) Generate(ctx context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "encode request", err)
	}

	requestCtx, cancel := b.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, b.URL, bytes.NewReader(payload))
	if err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendNetworkFailure, "create proxy request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient().Do(httpReq)
	if err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendNetworkFailure, "request proxy", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendNetworkFailure, "read proxy response", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendServerError, errorDetail(resp.StatusCode, body), nil)
	}

	var out ports.ModelResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "decode proxy response", err)
	}
	return out, nil
}

func (b Backend) httpClient() *http.Client {
	if b.HTTPClient != nil {
		return b.HTTPClient
	}
	return http.DefaultClient
}

func (b Backend) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || b.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.RequestTimeout)
}

// errorDetail prefers the proxy's "details" field over its "error" field.
func errorDetail(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, path := range []string{"details", "error"} {
			if v := parsed.Get(path); v.Exists() && strings.TrimSpace(v.String()) != "" {
				return fmt.Sprintf("status %d: %s", status, v.String())
			}
		}
	}
	return fmt.Sprintf("status %d", status)
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("proxy url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("proxy url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("proxy url host is required")
	}
	return parsed.String(), nil
}
