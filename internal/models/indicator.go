package models

// Indicator is a habit counter shown on the home screen, e.g. "Workout 4/7".
type Indicator struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Numerator   int    `json:"numerator"`
	Denominator int    `json:"denominator"`
	Position    int    `json:"position"`
}

// DefaultIndicators seeds an empty home screen.
var DefaultIndicators = []Indicator{
	{Label: "Gospel Study", Numerator: 5, Denominator: 7},
	{Label: "Workout", Numerator: 4, Denominator: 7},
	{Label: "Work", Numerator: 20, Denominator: 40},
	{Label: "School", Numerator: 15, Denominator: 20},
}
