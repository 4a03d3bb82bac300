// Package clock converts between 12-hour clock strings ("7:30 AM") and
// 24-hour hour / minute-of-day values.
//
// Parsing is permissive: a string that does not look like a clock time
// degrades to zero instead of returning an error.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRe = regexp.MustCompile(`(?i)(\d+):(\d+)\s*(AM|PM)`)

// Codec parses and formats clock strings.
type Codec interface {
	// Hour returns the 24-hour hour encoded in s, or 0 when s does not match.
	Hour(s string) int
	// Minutes returns minutes since midnight, or 0 when s does not match.
	Minutes(s string) int
	// Offset returns the minute part of s as a fraction of an hour.
	Offset(s string) float64
	// Format renders a 24-hour hour and minute as "H:MM AM|PM".
	Format(hour, minute int) string
}

// Default is the codec used by the package-level helpers.
var Default Codec = Permissive{}

// Permissive accepts any "<digits>:<digits> AM|PM" substring and performs no
// range validation on the parsed hour, so "25:00 PM" yields 37.
type Permissive struct{}

// Hour implements Codec.
func (Permissive) Hour(s string) int {
	p, ok := match(s)
	if !ok {
		return 0
	}
	return p.hour24()
}

// Minutes implements Codec.
func (Permissive) Minutes(s string) int {
	p, ok := match(s)
	if !ok {
		return 0
	}
	return p.hour24()*60 + p.minute
}

// Offset implements Codec.
func (Permissive) Offset(s string) float64 {
	p, ok := match(s)
	if !ok {
		return 0
	}
	return float64(p.minute) / 60
}

// Format implements Codec.
func (Permissive) Format(hour, minute int) string {
	return format(hour, minute)
}

// Strict behaves like Permissive but treats an hour outside 1..12 or a
// minute outside 0..59 as a non-match.
type Strict struct{}

// Hour implements Codec.
func (Strict) Hour(s string) int {
	p, ok := matchStrict(s)
	if !ok {
		return 0
	}
	return p.hour24()
}

// Minutes implements Codec.
func (Strict) Minutes(s string) int {
	p, ok := matchStrict(s)
	if !ok {
		return 0
	}
	return p.hour24()*60 + p.minute
}

// Offset implements Codec.
func (Strict) Offset(s string) float64 {
	p, ok := matchStrict(s)
	if !ok {
		return 0
	}
	return float64(p.minute) / 60
}

// Format implements Codec.
func (Strict) Format(hour, minute int) string {
	return format(hour, minute)
}

type parsed struct {
	hour   int
	minute int
	pm     bool
}

func (p parsed) hour24() int {
	switch {
	case p.pm && p.hour != 12:
		return p.hour + 12
	case !p.pm && p.hour == 12:
		return 0
	default:
		return p.hour
	}
}

func match(s string) (parsed, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return parsed{}, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return parsed{}, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return parsed{}, false
	}
	return parsed{hour: hour, minute: minute, pm: strings.EqualFold(m[3], "PM")}, true
}

func matchStrict(s string) (parsed, bool) {
	p, ok := match(s)
	if !ok || p.hour < 1 || p.hour > 12 || p.minute < 0 || p.minute > 59 {
		return parsed{}, false
	}
	return p, true
}

// format reduces hour modulo 24 so that values past midnight render as the
// next day's wall-clock time.
func format(hour, minute int) string {
	hour = ((hour % 24) + 24) % 24
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}

// ParseHour returns the 24-hour hour of s using the default codec.
func ParseHour(s string) int { return Default.Hour(s) }

// ParseMinutes returns minutes since midnight of s using the default codec.
func ParseMinutes(s string) int { return Default.Minutes(s) }

// Offset returns the sub-hour fraction of s using the default codec.
func Offset(s string) float64 { return Default.Offset(s) }

// FormatHour formats hour and minute using the default codec.
func FormatHour(hour, minute int) string { return Default.Format(hour, minute) }

// FormatMinutes formats a minute-of-day value.
func FormatMinutes(c Codec, total int) string {
	return c.Format(floorDiv(total, 60), floorMod(total, 60))
}

var monthAbbr = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatHeaderDate renders t as "Apr 2, 2026".
func FormatHeaderDate(t time.Time) string {
	return fmt.Sprintf("%s %d, %d", monthAbbr[t.Month()-1], t.Day(), t.Year())
}

// HourLabels returns the 24 hour-gutter labels, "12 AM" through "11 PM".
func HourLabels() []string {
	out := make([]string, 24)
	for h := range out {
		label := format(h, 0)
		out[h] = strings.Replace(label, ":00", "", 1)
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
