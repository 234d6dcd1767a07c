package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type RecurrenceType string

const (
	RecurrenceEveryNDays     RecurrenceType = "every_n_days"
	RecurrenceEveryWeekday   RecurrenceType = "every_weekday"
	RecurrenceEveryNWeeks    RecurrenceType = "every_n_weeks"
	RecurrenceMonthly        RecurrenceType = "monthly"
	RecurrenceLastDayOfMonth RecurrenceType = "last_day_of_month"
	RecurrenceYearly         RecurrenceType = "yearly"
)

// NoRepeat is the persisted identifier of a task without a rule.
const NoRepeat = "no-repeat"

// maxProbeDays bounds NextAfter; every valid rule with a sane interval fires
// well inside it.
const maxProbeDays = 366 * 50

var (
	ErrInvalidRecurrenceType = fmt.Errorf("%w: invalid recurrence type", ErrValidation)
	ErrInvalidInterval       = fmt.Errorf("%w: invalid recurrence interval", ErrValidation)
	ErrNoOccurrence          = errors.New("model: no occurrence in range")
)

type RecurrenceRule struct {
	Type     RecurrenceType
	Interval int
	Weekdays []time.Weekday
}

func Daily() *RecurrenceRule {
	return &RecurrenceRule{Type: RecurrenceEveryNDays, Interval: 1}
}

func Weekly() *RecurrenceRule {
	return &RecurrenceRule{Type: RecurrenceEveryNWeeks, Interval: 1}
}

func (r RecurrenceRule) Validate() error {
	switch r.Type {
	case RecurrenceEveryNDays, RecurrenceEveryNWeeks, RecurrenceMonthly, RecurrenceYearly:
		if r.Interval <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
		}
	case RecurrenceEveryWeekday, RecurrenceLastDayOfMonth:
		if r.Interval != 1 {
			return fmt.Errorf("%w: %s only supports interval 1, got %d", ErrInvalidInterval, r.Type, r.Interval)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
	if r.Type == RecurrenceEveryWeekday && len(r.Weekdays) > 0 {
		seen := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, d := range r.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range", ErrValidation, d)
			}
			if seen[d] {
				return fmt.Errorf("%w: duplicate weekday in recurrence", ErrValidation)
			}
			seen[d] = true
		}
	}
	return nil
}

// OccursOn reports whether a task first due at anchor repeats on day.
// Days before the anchor's own day never match.
func (r RecurrenceRule) OccursOn(anchor time.Time, day DayKey) bool {
	if r.Validate() != nil {
		return false
	}
	start := DayKeyOf(anchor)
	if day < start {
		return false
	}
	ay, am, ad := start.Date()
	y, m, d := day.Date()
	months := (y-ay)*12 + int(m-am)

	switch r.Type {
	case RecurrenceEveryNDays:
		return DaysBetween(start, day)%r.Interval == 0
	case RecurrenceEveryWeekday:
		return r.allowedWeekdays()[day.Weekday()]
	case RecurrenceEveryNWeeks:
		return DaysBetween(start, day)%(7*r.Interval) == 0
	case RecurrenceMonthly:
		return months%r.Interval == 0 && d == min(ad, lastDayOfMonth(y, m))
	case RecurrenceLastDayOfMonth:
		return d == lastDayOfMonth(y, m)
	case RecurrenceYearly:
		return m == am && (y-ay)%r.Interval == 0 && d == min(ad, lastDayOfMonth(y, m))
	default:
		return false
	}
}

// NextAfter returns the first occurrence strictly after from, placed at the
// anchor's time of day.
func (r RecurrenceRule) NextAfter(anchor, from time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	probe := DayKeyOf(from.In(anchor.Location()))
	if start := DayKeyOf(anchor); probe < start {
		probe = start
	}
	for i := 0; i < maxProbeDays; i++ {
		if r.OccursOn(anchor, probe) {
			candidate := AtClock(probe, anchor)
			if candidate.After(from) {
				return candidate, nil
			}
		}
		probe = probe.AddDays(1)
	}
	return time.Time{}, ErrNoOccurrence
}

func (r RecurrenceRule) Preview(anchor, from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := r.NextAfter(anchor, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

func (r RecurrenceRule) allowedWeekdays() map[time.Weekday]bool {
	if len(r.Weekdays) > 0 {
		m := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, w := range r.Weekdays {
			m[w] = true
		}
		return m
	}
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}
}

var weekdayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// String renders the rule as its repeat identifier; ParseRepeat reverses it.
func (r RecurrenceRule) String() string {
	switch r.Type {
	case RecurrenceEveryNDays:
		if r.Interval == 1 {
			return "daily"
		}
		return fmt.Sprintf("every-%d-days", r.Interval)
	case RecurrenceEveryWeekday:
		if len(r.Weekdays) == 0 {
			return "weekdays"
		}
		days := append([]time.Weekday(nil), r.Weekdays...)
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
		names := make([]string, 0, len(days))
		for _, d := range days {
			names = append(names, weekdayNames[d])
		}
		return "weekdays:" + strings.Join(names, ",")
	case RecurrenceEveryNWeeks:
		if r.Interval == 1 {
			return "weekly"
		}
		return fmt.Sprintf("every-%d-weeks", r.Interval)
	case RecurrenceMonthly:
		if r.Interval == 1 {
			return "monthly"
		}
		return fmt.Sprintf("every-%d-months", r.Interval)
	case RecurrenceLastDayOfMonth:
		return "last-day-of-month"
	case RecurrenceYearly:
		if r.Interval == 1 {
			return "yearly"
		}
		return fmt.Sprintf("every-%d-years", r.Interval)
	default:
		return string(r.Type)
	}
}

func RepeatString(r *RecurrenceRule) string {
	if r == nil {
		return NoRepeat
	}
	return r.String()
}

// ParseRepeat turns a repeat identifier into a rule. NoRepeat and the empty
// string yield a nil rule.
func ParseRepeat(raw string) (*RecurrenceRule, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", NoRepeat:
		return nil, nil
	case "daily":
		return Daily(), nil
	case "weekdays":
		return &RecurrenceRule{Type: RecurrenceEveryWeekday, Interval: 1}, nil
	case "weekly":
		return Weekly(), nil
	case "monthly":
		return &RecurrenceRule{Type: RecurrenceMonthly, Interval: 1}, nil
	case "last-day-of-month":
		return &RecurrenceRule{Type: RecurrenceLastDayOfMonth, Interval: 1}, nil
	case "yearly":
		return &RecurrenceRule{Type: RecurrenceYearly, Interval: 1}, nil
	}

	if rest, ok := strings.CutPrefix(s, "weekdays:"); ok {
		rule := &RecurrenceRule{Type: RecurrenceEveryWeekday, Interval: 1}
		for _, token := range strings.Split(rest, ",") {
			idx := indexOf(weekdayNames, strings.TrimSpace(token))
			if idx < 0 {
				return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRecurrenceType, token)
			}
			rule.Weekdays = append(rule.Weekdays, time.Weekday(idx))
		}
		return rule, rule.Validate()
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "every-%d-%s", &n, &unit); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, raw)
	}
	rule := &RecurrenceRule{Interval: n}
	switch unit {
	case "days":
		rule.Type = RecurrenceEveryNDays
	case "weeks":
		rule.Type = RecurrenceEveryNWeeks
	case "months":
		rule.Type = RecurrenceMonthly
	case "years":
		rule.Type = RecurrenceYearly
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, raw)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
