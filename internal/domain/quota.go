package domain

import "time"

const (
	DailyMessageLimit = 30
	UsageDateLayout   = "2006-01-02"
)

// UsageRecord is persisted as {"count":N,"date":"YYYY-MM-DD"}.
type UsageRecord struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

func UsageDay(now time.Time) string {
	return now.Format(UsageDateLayout)
}

// ForDay returns the record as seen on day: a record from any other day
// counts as zero.
func (r UsageRecord) ForDay(day string) UsageRecord {
	if r.Date != day || r.Count < 0 {
		return UsageRecord{Count: 0, Date: day}
	}
	return r
}

func (r UsageRecord) Remaining(limit int) int {
	if r.Count >= limit {
		return 0
	}
	return limit - r.Count
}
