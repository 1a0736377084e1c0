package slot

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidTime      = errors.New("start_time must be formatted as HH:MM")
	ErrInvalidDuration  = errors.New("duration must be a positive number of hours")
	ErrCrossesMidnight  = errors.New("booking must end on the same day it starts")
	ErrInvalidDateRange = errors.New("date range end is before its start")
)

// Date is a calendar date without a time-of-day component.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Compare returns -1, 0 or 1 when d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	default:
		return 0
	}
}

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("slot: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a time of day in minutes since midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, ErrInvalidTime
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidTime
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidTime
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidTime
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = Clock(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("slot: cannot scan %q into Clock", v)
		}
		*c = Clock(n)
	default:
		return fmt.Errorf("slot: cannot scan %T into Clock", src)
	}
	if *c < 0 || *c >= MinutesPerDay {
		return fmt.Errorf("slot: clock value %d out of range", int(*c))
	}
	return nil
}

// Interval is a half-open range of minutes [Start, End) within one day.
type Interval struct {
	Start int
	End   int
}

func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Slot identifies the time a booking occupies on a ground.
type Slot struct {
	Date     Date
	Start    Clock
	Duration int
}

func (s Slot) Validate() error {
	if s.Date.IsZero() {
		return ErrInvalidDate
	}
	if s.Start < 0 || s.Start >= MinutesPerDay {
		return ErrInvalidTime
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	// Compared by division so a huge duration cannot overflow the minute sum.
	if s.Duration > (MinutesPerDay-int(s.Start))/60 {
		return ErrCrossesMidnight
	}
	return nil
}

func (s Slot) Interval() Interval {
	start := int(s.Start)
	return Interval{Start: start, End: start + s.Duration*60}
}

func (s Slot) End() Clock {
	return Clock(s.Interval().End)
}

// Conflicts reports whether candidate overlaps any of existing. Slots on other dates never conflict.
func Conflicts(candidate Slot, existing []Slot) bool {
	want := candidate.Interval()
	for _, e := range existing {
		if !e.Date.Equal(candidate.Date) {
			continue
		}
		if want.Overlaps(e.Interval()) {
			return true
		}
	}
	return false
}

// DateRange is an inclusive range of calendar dates. A zero bound is open.
type DateRange struct {
	From Date
	To   Date
}

func ParseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	var r DateRange
	var err error
	if from != "" {
		if r.From, err = ParseDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if r.To, err = ParseDate(to); err != nil {
			return nil, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Compare(r.From) < 0 {
		return nil, ErrInvalidDateRange
	}
	return &r, nil
}

func (r *DateRange) Contains(d Date) bool {
	if r == nil {
		return true
	}
	if !r.From.IsZero() && d.Compare(r.From) < 0 {
		return false
	}
	if !r.To.IsZero() && d.Compare(r.To) > 0 {
		return false
	}
	return true
}
