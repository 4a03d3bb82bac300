package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/weekplan/internal/models"
)

const formatContractHead = `# Weekplan Event Format

Every event created through the tools MUST follow these rules.

## Fields

- **date**: the calendar day as ` + "`YYYY-MM-DD`" + `, e.g. ` + "`2026-04-02`" + `.
- **start_time** / **end_time**: 12-hour clock strings ` + "`H:MM AM`" + ` or ` + "`H:MM PM`" + `.
  No leading zero on the hour: ` + "`9:05 AM`" + `, ` + "`12:00 PM`" + ` (noon), ` + "`12:00 AM`" + ` (midnight).
- **type**: one of the palette names below. The colour follows from the type.
- **title**: optional; defaults to the type name.
- **repeat**: ` + "`Does not repeat`" + `, ` + "`Daily`" + `, ` + "`Weekly`" + `, ` + "`Monthly`" + ` or ` + "`Yearly`" + `.

## Rules

1. An event lives on a single day. An end earlier than the start is stored as-is
   and renders with zero height; it never wraps past midnight.
2. Moving an event snaps its start to 15 minutes and keeps it between
   ` + "`12:00 AM`" + ` and ` + "`11:45 PM`" + `. The end is capped at ` + "`11:59 PM`" + `.
3. Weeks run Wednesday to Tuesday.

## Palette

`

// EventFormatContract describes how LLM consumers must write events. The
// palette section is generated from the live type list.
func EventFormatContract() string {
	var b strings.Builder
	b.WriteString(formatContractHead)
	for _, t := range models.EventTypes {
		fmt.Fprintf(&b, "- `%s` (%s)\n", t.Name, t.Color)
	}
	return b.String()
}
