package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
)

type UsageSnapshot struct {
	Count        int    `json:"count"`
	Limit        int    `json:"limit"`
	Date         string `json:"date"`
	LimitReached bool   `json:"limit_reached"`
}

// QuotaTracker counts accepted messages per calendar day of the clock.
type QuotaTracker struct {
	store  ports.KVStore
	clock  ports.Clock
	limit  int
	record domain.UsageRecord
}

func NewQuotaTracker(store ports.KVStore, clock ports.Clock, limit int) *QuotaTracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if limit <= 0 {
		limit = domain.DailyMessageLimit
	}
	return &QuotaTracker{store: store, clock: clock, limit: limit}
}

// Load reads the stored record and rewrites it when missing or stale.
func (q *QuotaTracker) Load(ctx context.Context) error {
	today := q.today()

	stored, err := ReadUsage(ctx, q.store)
	if err != nil {
		return err
	}
	q.record = stored.ForDay(today)

	if stored != q.record {
		if err := q.save(ctx, q.record); err != nil {
			return err
		}
	}
	return nil
}

func (q *QuotaTracker) Admit() bool {
	return q.current().Count < q.limit
}

// RecordUsage increments today's count and persists it. The in-memory count
// advances even when the write fails.
func (q *QuotaTracker) RecordUsage(ctx context.Context) (int, error) {
	next := q.current()
	next.Count++
	q.record = next

	return next.Count, q.save(ctx, next)
}

func (q *QuotaTracker) Snapshot() UsageSnapshot {
	current := q.current()
	return UsageSnapshot{
		Count:        current.Count,
		Limit:        q.limit,
		Date:         current.Date,
		LimitReached: current.Count >= q.limit,
	}
}

func (q *QuotaTracker) Limit() int {
	return q.limit
}

func (q *QuotaTracker) current() domain.UsageRecord {
	return q.record.ForDay(q.today())
}

func (q *QuotaTracker) today() string {
	return domain.UsageDay(q.clock.Now())
}

func (q *QuotaTracker) save(ctx context.Context, record domain.UsageRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	if err := q.store.Put(ctx, UsageKey, string(raw)); err != nil {
		return fmt.Errorf("store usage: %w", err)
	}
	return nil
}

// ReadUsage returns the stored usage record. Missing or unreadable records
// read as the zero record.
func ReadUsage(ctx context.Context, store ports.KVStore) (domain.UsageRecord, error) {
	raw, err := store.Get(ctx, UsageKey)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.UsageRecord{}, nil
		}
		return domain.UsageRecord{}, fmt.Errorf("read usage: %w", err)
	}

	var record domain.UsageRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return domain.UsageRecord{}, nil
	}
	return record, nil
}
