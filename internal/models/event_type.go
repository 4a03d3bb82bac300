package models

// EventType is a (name, colour) pair from the fixed palette.
type EventType struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TypeOther is the fallback event type used by the plus-button flow.
const TypeOther = "Other"

// EventTypes is the closed palette of event categories.
var EventTypes = []EventType{
	{Name: "Relax", Color: "bg-green-400"},
	{Name: "School (Study)", Color: "bg-yellow-400"},
	{Name: "School (Class)", Color: "bg-purple-300"},
	{Name: "Gospel (Church)", Color: "bg-pink-400"},
	{Name: "Gospel (Study)", Color: "bg-purple-500"},
	{Name: "Gospel (Meeting)", Color: "bg-gray-300"},
	{Name: "Work", Color: "bg-cyan-300"},
	{Name: "Travel", Color: "bg-pink-300"},
	{Name: "Meal", Color: "bg-orange-200"},
	{Name: "Workout", Color: "bg-gray-400"},
	{Name: TypeOther, Color: "bg-white"},
}

// TypeByName looks up a palette entry.
func TypeByName(name string) (EventType, bool) {
	for _, t := range EventTypes {
		if t.Name == name {
			return t, true
		}
	}
	return EventType{}, false
}

// TypeOrOther returns the palette entry for name, falling back to Other.
func TypeOrOther(name string) EventType {
	if t, ok := TypeByName(name); ok {
		return t
	}
	t, _ := TypeByName(TypeOther)
	return t
}

// TypeNames returns the palette names, for validation rules.
func TypeNames() []any {
	out := make([]any, len(EventTypes))
	for i, t := range EventTypes {
		out[i] = t.Name
	}
	return out
}
