// Package store builds the configured KVStore.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/memochat/internal/adapters/store/chain"
	"github.com/bnema/memochat/internal/adapters/store/file"
	"github.com/bnema/memochat/internal/adapters/store/memory"
	"github.com/bnema/memochat/internal/adapters/store/pass"
	"github.com/bnema/memochat/internal/adapters/store/postgres"
	"github.com/bnema/memochat/internal/adapters/store/sqlite"
	"github.com/bnema/memochat/internal/adapters/store/toml"
	"github.com/bnema/memochat/internal/config"
	"github.com/bnema/memochat/internal/ports"
)

type closers []io.Closer

func (c closers) Close() error {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		err = errors.Join(err, c[i].Close())
	}
	return err
}

// Open returns the primary store, chained with the fallback when one is
// configured. The closer releases database handles and is always non-nil.
func Open(ctx context.Context, cfg config.StoreConfig) (ports.KVStore, io.Closer, error) {
	var all closers

	primary, closer, err := openBackend(ctx, cfg.Backend, cfg)
	if err != nil {
		return nil, all, err
	}
	if closer != nil {
		all = append(all, closer)
	}

	if cfg.Fallback == "" {
		return primary, all, nil
	}

	fallback, closer, err := openBackend(ctx, cfg.Fallback, cfg)
	if err != nil {
		return nil, all, errors.Join(err, all.Close())
	}
	if closer != nil {
		all = append(all, closer)
	}

	chained, err := chain.NewStore(primary, fallback)
	if err != nil {
		return nil, all, errors.Join(err, all.Close())
	}
	return chained, all, nil
}

func openBackend(ctx context.Context, name string, cfg config.StoreConfig) (ports.KVStore, io.Closer, error) {
	switch name {
	case "memory":
		return memory.NewStore(), nil, nil
	case "toml", "":
		s, err := toml.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open toml store: %w", err)
		}
		return s, nil, nil
	case "file":
		return file.NewStore(cfg.Dir), nil, nil
	case "pass":
		return pass.NewStore(cfg.PassPrefix), nil, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", name)
	}
}
