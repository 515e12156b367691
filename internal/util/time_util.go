package util

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

func SameDay(t1, t2 time.Time) bool {
	return t1.Format(layout) == t2.Format(layout)
}

// TruncateToDay zeroes the clock portion. Ledger dates are trading-day
// granularity.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseFlexibleDate accepts the date shapes broker statements use:
// 2024-01-15, 2024/01/15 and 20240115.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		s = strings.ReplaceAll(s, "/", "-")
	}
	if len(s) == 8 && !strings.Contains(s, "-") {
		s = fmt.Sprintf("%s-%s-%s", s[0:4], s[4:6], s[6:8])
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

// ROCDate renders a date in the Republic of China calendar format the TWSE
// daily report uses, e.g. 2024-01-15 -> 113/01/15.
func ROCDate(t time.Time) string {
	return fmt.Sprintf("%d/%02d/%02d", t.Year()-1911, int(t.Month()), t.Day())
}
