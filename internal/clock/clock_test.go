package clock

import (
	"fmt"
	"testing"
	"time"
)

func TestParseHour(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"7:30 AM", 7},
		{"9:00 AM", 9},
		{"11:45 AM", 11},
		{"1:00 PM", 13},
		{"3:30 PM", 15},
		{"11:59 PM", 23},
		{"12:00 PM", 12},
		{"12:30 PM", 12},
		{"12:00 AM", 0},
		{"12:30 AM", 0},
		{"7:30 am", 7},
		{"7:30 pm", 19},
		{"7:30 Am", 7},
		{"7:30 Pm", 19},
		{"7:30PM", 19},
		{"starts at 8:15 pm sharp", 20},
		{"invalid", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParseHour(tt.in); got != tt.want {
			t.Errorf("ParseHour(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseHour_NoRangeValidation(t *testing.T) {
	if got := ParseHour("25:00 AM"); got != 25 {
		t.Errorf("ParseHour(25:00 AM) = %d, want 25", got)
	}
	if got := ParseHour("25:00 PM"); got != 37 {
		t.Errorf("ParseHour(25:00 PM) = %d, want 37", got)
	}
	if got := ParseHour("13:00 AM"); got != 13 {
		t.Errorf("ParseHour(13:00 AM) = %d, want 13", got)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"7:30 AM", 450},
		{"9:00 AM", 540},
		{"11:45 AM", 705},
		{"1:00 PM", 780},
		{"3:30 PM", 930},
		{"11:59 PM", 1439},
		{"12:00 PM", 720},
		{"12:30 PM", 750},
		{"12:00 AM", 0},
		{"12:30 AM", 30},
		{"invalid", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParseMinutes(tt.in); got != tt.want {
			t.Errorf("ParseMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"7:00 AM", 0},
		{"12:00 PM", 0},
		{"5:00 PM", 0},
		{"7:30 AM", 0.5},
		{"9:15 AM", 0.25},
		{"2:45 PM", 0.75},
		{"invalid", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Offset(tt.in); got != tt.want {
			t.Errorf("Offset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatHour(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{7, 0, "7:00 AM"},
		{9, 0, "9:00 AM"},
		{11, 0, "11:00 AM"},
		{13, 0, "1:00 PM"},
		{15, 0, "3:00 PM"},
		{23, 0, "11:00 PM"},
		{12, 0, "12:00 PM"},
		{0, 0, "12:00 AM"},
		{7, 30, "7:30 AM"},
		{15, 45, "3:45 PM"},
		{9, 5, "9:05 AM"},
		{13, 8, "1:08 PM"},
		// Hours past midnight wrap to the next day's wall clock.
		{24, 0, "12:00 AM"},
		{25, 15, "1:15 AM"},
	}
	for _, tt := range tests {
		if got := FormatHour(tt.hour, tt.minute); got != tt.want {
			t.Errorf("FormatHour(%d, %d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := FormatHour(h, m)
			if got := ParseHour(s); got != h {
				t.Fatalf("ParseHour(FormatHour(%d, %d)=%q) = %d", h, m, s, got)
			}
			if got := ParseMinutes(s); got != h*60+m {
				t.Fatalf("ParseMinutes(%q) = %d, want %d", s, got, h*60+m)
			}
		}
	}
}

func TestRoundTrip_Strings(t *testing.T) {
	for _, s := range []string{"7:00 AM", "12:00 PM", "5:30 PM", "11:45 PM", "12:00 AM"} {
		var minutes int
		if _, err := fmt.Sscanf(s[len(s)-5:], "%d", &minutes); err != nil {
			t.Fatalf("scan minutes of %q: %v", s, err)
		}
		if got := FormatHour(ParseHour(s), minutes); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}

func TestStrict(t *testing.T) {
	c := Strict{}
	if got := c.Hour("13:00 AM"); got != 0 {
		t.Errorf("Strict.Hour(13:00 AM) = %d, want 0", got)
	}
	if got := c.Minutes("7:75 AM"); got != 0 {
		t.Errorf("Strict.Minutes(7:75 AM) = %d, want 0", got)
	}
	if got := c.Hour("0:30 AM"); got != 0 {
		t.Errorf("Strict.Hour(0:30 AM) = %d, want 0", got)
	}
	if got := c.Minutes("7:30 pm"); got != 19*60+30 {
		t.Errorf("Strict.Minutes(7:30 pm) = %d", got)
	}
	if got := c.Offset("7:45 AM"); got != 0.75 {
		t.Errorf("Strict.Offset(7:45 AM) = %v", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(Default, 23*60+45); got != "11:45 PM" {
		t.Errorf("FormatMinutes(1425) = %q", got)
	}
	if got := FormatMinutes(Default, 0); got != "12:00 AM" {
		t.Errorf("FormatMinutes(0) = %q", got)
	}
}

func TestFormatHeaderDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), "Apr 2, 2026"},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "Jan 15, 2025"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "Dec 31, 2024"},
	}
	for _, tt := range tests {
		if got := FormatHeaderDate(tt.in); got != tt.want {
			t.Errorf("FormatHeaderDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	for i, m := range monthAbbr {
		d := time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		if got, want := FormatHeaderDate(d), m+" 1, 2025"; got != want {
			t.Errorf("FormatHeaderDate(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestHourLabels(t *testing.T) {
	labels := HourLabels()
	if len(labels) != 24 {
		t.Fatalf("len = %d", len(labels))
	}
	if labels[0] != "12 AM" || labels[12] != "12 PM" || labels[13] != "1 PM" || labels[23] != "11 PM" {
		t.Errorf("labels = %v", labels)
	}
}
