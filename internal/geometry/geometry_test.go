package geometry

import (
	"testing"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/models"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       float64
	}{
		{"same period", "7:30 AM", "8:30 AM", 1},
		{"afternoon", "1:00 PM", "3:00 PM", 2},
		{"ninety minutes", "9:15 AM", "10:45 AM", 1.5},
		{"across noon", "11:00 AM", "1:00 PM", 2},
		{"across noon half", "10:30 AM", "12:30 PM", 2},
		{"across midnight is negative", "11:00 PM", "1:00 AM", -22},
		{"half hour", "7:30 AM", "8:00 AM", 0.5},
		{"half hour pm", "2:15 PM", "2:45 PM", 0.5},
		{"quarter", "9:00 AM", "9:15 AM", 0.25},
		{"quarter to the hour", "3:45 PM", "4:00 PM", 0.25},
		{"workday", "8:00 AM", "5:00 PM", 9},
		{"malformed end", "8:00 AM", "soon", -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.start, tt.end); got != tt.want {
				t.Errorf("Duration(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func event(start, end string) models.Event {
	ev := models.Event{StartTime: start, EndTime: end}
	ev.Recompute(clock.Default)
	return ev
}

func TestTopPx(t *testing.T) {
	if got := TopPx(event("7:30 AM", "8:30 AM")); got != 7.5*64 {
		t.Errorf("TopPx(7:30 AM) = %v, want %v", got, 7.5*64)
	}
	if got := TopPx(event("12:00 AM", "1:00 AM")); got != 0 {
		t.Errorf("TopPx(12:00 AM) = %v, want 0", got)
	}
	if got := TopPx(event("11:45 PM", "11:59 PM")); got != 23.75*64 {
		t.Errorf("TopPx(11:45 PM) = %v", got)
	}
}

func TestHeightPx(t *testing.T) {
	tests := []struct {
		start, end string
		want       float64
	}{
		{"9:00 AM", "11:00 AM", 128},
		{"9:00 AM", "9:30 AM", 32},
		{"9:00 AM", "9:15 AM", 32},
		{"9:00 AM", "9:00 AM", 32},
		{"11:00 PM", "1:00 AM", 32},
	}
	for _, tt := range tests {
		ev := event(tt.start, tt.end)
		got := HeightPx(ev)
		if got != tt.want {
			t.Errorf("HeightPx(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
		if ev.Duration <= 0.5 && got < MinHeightPx {
			t.Errorf("HeightPx(%s-%s) = %v below minimum", tt.start, tt.end, got)
		}
	}
}

func TestLayoutAppliesDragOffset(t *testing.T) {
	ev := event("7:00 AM", "8:00 AM")
	box := Layout(ev, -20)
	if box.Top != 7*64-20 {
		t.Errorf("Top = %v, want %v", box.Top, 7*64-20)
	}
	if box.Height != 64 {
		t.Errorf("Height = %v, want 64", box.Height)
	}
}
