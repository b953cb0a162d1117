package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/memochat/internal/adapters/backend/anthropic"
	"github.com/bnema/memochat/internal/adapters/backend/gemini"
	"github.com/bnema/memochat/internal/adapters/backend/mock"
	"github.com/bnema/memochat/internal/adapters/backend/proxy"
	"github.com/bnema/memochat/internal/config"
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/tools"
)

const (
	ModeAuto      = "auto"
	ModeGemini    = "gemini"
	ModeAnthropic = "anthropic"
	ModeProxy     = "proxy"
	ModeMock      = "mock"
)

var ErrProxyLoop = errors.New("the proxy server cannot use the proxy backend as its upstream")

type openOptions struct {
	httpClient   *http.Client
	upstreamOnly bool
}

type Option func(*openOptions)

func WithHTTPClient(client *http.Client) Option {
	return func(o *openOptions) {
		o.httpClient = client
	}
}

// UpstreamOnly keeps auto selection away from the proxy backend and rejects
// an explicit proxy mode.
func UpstreamOnly() Option {
	return func(o *openOptions) {
		o.upstreamOnly = true
	}
}

// Resolve returns the concrete mode auto selection settles on.
func Resolve(cfg config.BackendConfig, upstreamOnly bool) string {
	if cfg.Mode != "" && cfg.Mode != ModeAuto {
		return cfg.Mode
	}
	switch {
	case cfg.KeyFor(ModeGemini) != "":
		return ModeGemini
	case cfg.KeyFor(ModeAnthropic) != "":
		return ModeAnthropic
	case cfg.ProxyURL != "" && !upstreamOnly:
		return ModeProxy
	default:
		return ModeMock
	}
}

// Open builds the model backend for cfg and reports the mode it resolved to.
func Open(ctx context.Context, cfg config.BackendConfig, catalog locale.Catalog, opts ...Option) (ports.ModelBackend, string, error) {
	options := openOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	mode := Resolve(cfg, options.upstreamOnly)
	declared := tools.Registry(catalog)

	var backend ports.ModelBackend
	switch mode {
	case ModeGemini:
		b, err := gemini.New(ctx, gemini.Config{
			APIKey:            cfg.KeyFor(ModeGemini),
			Model:             cfg.ModelFor(ModeGemini),
			HTTPClient:        options.httpClient,
			SystemInstruction: catalog.SystemInstruction,
			Tools:             declared,
		})
		if err != nil {
			return nil, "", err
		}
		backend = b
	case ModeAnthropic:
		b, err := anthropic.New(anthropic.Config{
			APIKey:            cfg.KeyFor(ModeAnthropic),
			Model:             cfg.ModelFor(ModeAnthropic),
			HTTPClient:        options.httpClient,
			SystemInstruction: catalog.SystemInstruction,
			Tools:             declared,
		})
		if err != nil {
			return nil, "", err
		}
		backend = b
	case ModeProxy:
		if options.upstreamOnly {
			return nil, "", ErrProxyLoop
		}
		b, err := proxy.New(cfg.ProxyURL, options.httpClient, 0)
		if err != nil {
			return nil, "", err
		}
		backend = b
	case ModeMock:
		backend = mock.New(catalog)
	default:
		return nil, "", fmt.Errorf("unsupported backend mode %q", mode)
	}

	return WithTimeout(backend, cfg.Timeout), mode, nil
}

type timeoutBackend struct {
	next    ports.ModelBackend
	timeout time.Duration
}

// WithTimeout bounds every Generate call by timeout. A non-positive timeout
// returns next unchanged.
func WithTimeout(next ports.ModelBackend, timeout time.Duration) ports.ModelBackend {
	if timeout <= 0 {
		return next
	}
	return timeoutBackend{next: next, timeout: timeout}
}

func (b timeoutBackend) Generate(ctx context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.next.Generate(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var backendErr *domain.BackendError
		if !errors.As(err, &backendErr) {
			return ports.ModelResponse{}, domain.NewBackendError(domain.BackendNetworkFailure, "model call timed out", err)
		}
	}
	return resp, err
}
