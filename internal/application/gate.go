package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/obfuscation"
	"github.com/bnema/memochat/internal/ports"
)

// Gate verifies PINs against the stored credential record. It never
// persists the PIN itself.
type Gate struct {
	store ports.KVStore
}

func NewGate(store ports.KVStore) *Gate {
	return &Gate{store: store}
}

func HashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

func (g *Gate) IsPinConfigured(ctx context.Context) (bool, error) {
	hash, err := g.store.Get(ctx, PinHashKey)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read pin hash: %w", err)
	}
	return hash != "", nil
}

// SetPin writes the credential record and an empty fact map obfuscated
// under pin. A failure writing the facts rolls back the credential record.
func (g *Gate) SetPin(ctx context.Context, pin string) error {
	if err := domain.ValidatePin(pin); err != nil {
		return err
	}

	configured, err := g.IsPinConfigured(ctx)
	if err != nil {
		return err
	}
	if configured {
		return domain.ErrPinAlreadySet
	}

	blob, err := obfuscation.Encode(domain.Facts{}, pin)
	if err != nil {
		return fmt.Errorf("encode empty memory: %w", err)
	}

	if err := g.store.Put(ctx, PinHashKey, HashPin(pin)); err != nil {
		return fmt.Errorf("store pin hash: %w", err)
	}

	if err := g.store.Put(ctx, FactsKey, blob); err != nil {
		if rollbackErr := g.store.Delete(ctx, PinHashKey); rollbackErr != nil {
			return fmt.Errorf("store empty memory and rollback pin hash: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("store empty memory: %w", err)
	}

	return nil
}

// Authenticate checks pin and returns the decoded fact map. A hash mismatch
// is ErrWrongPin; a matching hash whose memory does not decode is
// ErrCorruptData.
func (g *Gate) Authenticate(ctx context.Context, pin string) (domain.Facts, error) {
	stored, err := g.store.Get(ctx, PinHashKey)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrPinNotSet
		}
		return nil, fmt.Errorf("read pin hash: %w", err)
	}
	if stored == "" {
		return nil, domain.ErrPinNotSet
	}
	if HashPin(pin) != stored {
		return nil, domain.ErrWrongPin
	}

	blob, err := g.store.Get(ctx, FactsKey)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Facts{}, nil
		}
		return nil, fmt.Errorf("read memory: %w", err)
	}
	if blob == "" {
		return domain.Facts{}, nil
	}

	var facts domain.Facts
	if err := obfuscation.Decode(blob, pin, &facts); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptData, err)
	}
	if facts == nil {
		facts = domain.Facts{}
	}

	return facts, nil
}
