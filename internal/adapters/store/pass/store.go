package pass

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
)

var (
	ErrUnavailable = errors.New("pass command unavailable")
	ErrInvalidKey  = errors.New("invalid pass entry key")
)

const notInStoreMarker = "is not in the password store"

// result is the outcome of one pass invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) missing() bool {
	return r.err != nil && strings.Contains(r.stderr, notInStoreMarker)
}

type runner func(ctx context.Context, stdin string, args ...string) result

// Store keeps each record as the single-line entry <prefix>/<key> of the
// pass password store.
type Store struct {
	prefix string
	run    runner
}

var _ ports.KVStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{prefix: strings.Trim(prefix, "/"), run: runPass}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.invoke(ctx, "put", key, value+"\n", "insert", "--multiline", "--force")
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	res, err := s.invoke(ctx, "get", key, "", "show")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(res.stdout, "\r\n"), nil
}

// Delete removes the entry. A missing entry is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.invoke(ctx, "delete", key, "", "rm", "--force")
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil
	}
	return err
}

// invoke runs pass with args followed by the entry name for key and maps
// failures onto store errors.
func (s *Store) invoke(ctx context.Context, op, key, stdin string, args ...string) (result, error) {
	if err := ctx.Err(); err != nil {
		return result{}, err
	}
	entry, err := s.entry(key)
	if err != nil {
		return result{}, err
	}

	res := s.run(ctx, stdin, append(args, entry)...)
	switch {
	case res.err == nil:
		return res, nil
	case res.missing():
		return res, fmt.Errorf("pass entry %q: %w", entry, domain.ErrRecordNotFound)
	case res.stderr == "":
		return res, fmt.Errorf("pass %s %q: %w", op, key, res.err)
	default:
		return res, fmt.Errorf("pass %s %q: %w: %s", op, key, res.err, res.stderr)
	}
}

func (s *Store) entry(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if s.prefix == "" {
		return key, nil
	}
	return path.Join(s.prefix, key), nil
}

func runPass(ctx context.Context, stdin string, args ...string) result {
	cmd := exec.CommandContext(ctx, "pass", args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		err = ErrUnavailable
	}
	return result{stdout: stdout.String(), stderr: strings.TrimSpace(stderr.String()), err: err}
}
