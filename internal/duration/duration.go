// Package duration converts elapsed days of life into ISO 8601 period strings
// (e.g. P42Y7M is 42 years and 7 months).
package duration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Average calendar constants. Months use the mean Gregorian month length.
const (
	DaysPerYear  = 365.2425
	DaysPerMonth = 30.437
	DaysPerWeek  = 7
)

// ErrInvalidArgument is returned when the input is neither an integer nor a
// string holding an integer.
var ErrInvalidArgument = errors.New("invalid argument")

// Period is the decomposition of a day count into calendar components.
type Period struct {
	Years  int
	Months int
	Weeks  int
	Days   int
}

// Split decomposes days into years, months, weeks and remaining days using
// the average calendar constants. Each step truncates toward zero.
func Split(days int) Period {
	var p Period
	p.Years = int(float64(days) / DaysPerYear)
	days -= int(float64(p.Years) * DaysPerYear)
	p.Months = int(float64(days) / DaysPerMonth)
	days -= int(float64(p.Months) * DaysPerMonth)
	p.Weeks = days / DaysPerWeek
	days -= p.Weeks * DaysPerWeek
	p.Days = days
	return p
}

// String renders the period as P[nY][nM][nW][nD]. Components that are not
// positive are left out, so an all-zero period renders as "P".
func (p Period) String() string {
	var b strings.Builder
	b.WriteByte('P')
	if p.Years > 0 {
		b.WriteString(strconv.Itoa(p.Years))
		b.WriteByte('Y')
	}
	if p.Months > 0 {
		b.WriteString(strconv.Itoa(p.Months))
		b.WriteByte('M')
	}
	if p.Weeks > 0 {
		b.WriteString(strconv.Itoa(p.Weeks))
		b.WriteByte('W')
	}
	if p.Days > 0 {
		b.WriteString(strconv.Itoa(p.Days))
		b.WriteByte('D')
	}
	return b.String()
}

// FromDays converts a day count to an ISO 8601 duration.
func FromDays(days int) string {
	return Split(days).String()
}

// FromString parses s as a base-10 integer and converts it. No trimming or
// float parsing is done here; callers holding values like "-15987.0" must
// normalize them first.
func FromString(s string) (string, error) {
	days, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("%w: days %q is not an integer", ErrInvalidArgument, s)
	}
	return FromDays(days), nil
}

// Convert accepts any Go integer kind or a string.
func Convert(v any) (string, error) {
	switch d := v.(type) {
	case int:
		return FromDays(d), nil
	case int8:
		return FromDays(int(d)), nil
	case int16:
		return FromDays(int(d)), nil
	case int32:
		return FromDays(int(d)), nil
	case int64:
		return FromDays(int(d)), nil
	case uint:
		return FromDays(int(d)), nil
	case uint8:
		return FromDays(int(d)), nil
	case uint16:
		return FromDays(int(d)), nil
	case uint32:
		return FromDays(int(d)), nil
	case uint64:
		return FromDays(int(d)), nil
	case string:
		return FromString(d)
	default:
		return "", fmt.Errorf("%w: days must be int or string but was %T", ErrInvalidArgument, v)
	}
}
