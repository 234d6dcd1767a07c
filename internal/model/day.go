package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKey is a calendar day encoded as YYYYMMDD. Keys order the same way the
// days do and ignore time-of-day.
type DayKey int

func DayKeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey(y*10000 + int(m)*100 + d)
}

func ParseDayKey(raw string) (DayKey, error) {
	s := strings.TrimSpace(raw)
	if len(s) == len("2006-01-02") {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return 0, fmt.Errorf("%w: day %q", ErrValidation, raw)
		}
		return DayKeyOf(t), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || len(s) != 8 {
		return 0, fmt.Errorf("%w: day %q", ErrValidation, raw)
	}
	k := DayKey(n)
	if !k.Valid() {
		return 0, fmt.Errorf("%w: day %q", ErrValidation, raw)
	}
	return k, nil
}

func (k DayKey) Date() (int, time.Month, int) {
	n := int(k)
	return n / 10000, time.Month(n / 100 % 100), n % 100
}

func (k DayKey) Valid() bool {
	y, m, d := k.Date()
	if y <= 0 || m < time.January || m > time.December || d < 1 {
		return false
	}
	return DayKeyOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) == k
}

// Time returns midnight of the day in loc.
func (k DayKey) Time(loc *time.Location) time.Time {
	y, m, d := k.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (k DayKey) AddDays(n int) DayKey {
	return DayKeyOf(k.Time(time.UTC).AddDate(0, 0, n))
}

func (k DayKey) Weekday() time.Weekday {
	return k.Time(time.UTC).Weekday()
}

func (k DayKey) String() string {
	return fmt.Sprintf("%08d", int(k))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b DayKey) int {
	return int(b.Time(time.UTC).Sub(a.Time(time.UTC)).Round(time.Hour).Hours() / 24)
}

// AddDays shifts t by n calendar days keeping the wall-clock time of day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AtClock places day at the time of day carried by clock, in clock's location.
func AtClock(day DayKey, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), clock.Location())
}

func lastDayOfMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
