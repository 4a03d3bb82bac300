// Package geometry maps event clock strings onto the vertical pixel layout
// of the day column.
package geometry

import (
	"math"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/models"
)

const (
	// PixelsPerHour is the fixed vertical scale of the day column.
	PixelsPerHour = 64
	// MinHeightPx keeps very short (or negative) events visible.
	MinHeightPx = 32
)

// Box is the render rectangle of an event within its day column.
type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Duration returns end minus start in hours. It is negative when end is
// earlier in the day than start; it never wraps across midnight.
func Duration(start, end string) float64 {
	return DurationWith(clock.Default, start, end)
}

// DurationWith is Duration with an explicit codec.
func DurationWith(c clock.Codec, start, end string) float64 {
	return float64(c.Minutes(end)-c.Minutes(start)) / 60
}

// TopPx returns the distance from midnight to the event start in pixels.
func TopPx(ev models.Event) float64 {
	return float64(ev.Time)*PixelsPerHour + clock.Offset(ev.StartTime)*PixelsPerHour
}

// HeightPx returns the rendered height of the event.
func HeightPx(ev models.Event) float64 {
	return math.Max(ev.Duration*PixelsPerHour, MinHeightPx)
}

// Layout returns the render box of ev with a live drag offset applied to Top.
func Layout(ev models.Event, dragOffsetY float64) Box {
	return Box{
		Top:    TopPx(ev) + dragOffsetY,
		Height: HeightPx(ev),
	}
}
