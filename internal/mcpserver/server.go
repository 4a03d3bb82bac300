// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes weekplan tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/indicator"
	"github.com/starford/weekplan/internal/models"
)

const (
	eventTypesURI  = "weekplan://event-types"
	eventFormatURI = "weekplan://event-format"
)

// Server wraps the MCP server with weekplan tools.
type Server struct {
	mcp        *server.MCPServer
	svc        *eventservice.Service
	indicators *indicator.Service
}

// New creates a new MCP server with all weekplan tools registered.
func New(svc *eventservice.Service, indicators *indicator.Service) *Server {
	s := &Server{svc: svc, indicators: indicators}

	s.mcp = server.NewMCPServer(
		"Weekplan",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_week",
		mcp.WithDescription("List the Wednesday-anchored week containing a day, with every event occurrence per day."),
		mcp.WithString("date", mcp.Description("Any day of the week as YYYY-MM-DD (default: the selected day)")),
	), s.listWeek)

	s.mcp.AddTool(mcp.NewTool("get_event",
		mcp.WithDescription("Read a single event, including its notes."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
	), s.getEvent)

	s.mcp.AddTool(mcp.NewTool("create_event",
		mcp.WithDescription("Create a calendar event. Times MUST use the 12-hour "+
			"\"H:MM AM\" format and type MUST be one of the palette names. Read the "+
			eventFormatURI+" resource first."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Event type from the palette, e.g. Work")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
		mcp.WithString("start_time", mcp.Required(), mcp.Description("Start, e.g. 9:00 AM")),
		mcp.WithString("end_time", mcp.Required(), mcp.Description("End, e.g. 10:30 AM")),
		mcp.WithString("title", mcp.Description("Title (default: the type name)")),
		mcp.WithString("notes", mcp.Description("Markdown notes")),
		mcp.WithString("address", mcp.Description("Location")),
		mcp.WithString("repeat", mcp.Description("Does not repeat, Daily, Weekly, Monthly or Yearly")),
	), s.createEvent)

	s.mcp.AddTool(mcp.NewTool("move_event",
		mcp.WithDescription("Shift an event by a number of minutes, optionally onto another day. "+
			"The start snaps to 15 minutes and stays within the day."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
		mcp.WithNumber("minutes", mcp.Description("Minutes to move, negative for earlier")),
		mcp.WithString("date", mcp.Description("Target day as YYYY-MM-DD (default: keep the day)")),
	), s.moveEvent)

	s.mcp.AddTool(mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
	), s.deleteEvent)

	s.mcp.AddTool(mcp.NewTool("search_events",
		mcp.WithDescription("Full-text search through event titles, notes and addresses."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchEvents)

	s.mcp.AddTool(mcp.NewTool("list_indicators",
		mcp.WithDescription("List the home-screen habit counters, e.g. Workout 4/7."),
	), s.listIndicators)

	s.mcp.AddTool(mcp.NewTool("import_calendar",
		mcp.WithDescription("Import events from an iCalendar file given as an http(s) URL "+
			"or a base64 data:text/calendar URI. Re-importing the same UIDs replaces them."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data URI of the .ics file")),
	), s.importCalendar)

	s.mcp.AddResource(
		mcp.NewResource(eventTypesURI, "Event Types",
			mcp.WithResourceDescription("The closed palette of event types with their colours."),
			mcp.WithMIMEType("application/json"),
		),
		s.readEventTypes,
	)

	s.mcp.AddResource(
		mcp.NewResource(eventFormatURI, "Event Format",
			mcp.WithResourceDescription("How event times, days and types must be written."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEventFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) day(raw string) (time.Time, error) {
	if raw == "" {
		return s.svc.SelectedDate(), nil
	}
	return s.svc.ParseDate(raw)
}

func (s *Server) listWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := s.day(req.GetString("date", ""))
	if err != nil {
		return toolError(err), nil
	}
	v, err := s.svc.Week(ctx, ref)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(v)
}

func (s *Server) getEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := s.svc.Get(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ev)
}

func (s *Server) createEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f eventservice.Form
	for key, dst := range map[string]*string{
		"type":       &f.Type,
		"date":       &f.Date,
		"start_time": &f.StartTime,
		"end_time":   &f.EndTime,
	} {
		v, err := req.RequireString(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*dst = v
	}
	f.Title = req.GetString("title", "")
	f.Notes = req.GetString("notes", "")
	f.Address = req.GetString("address", "")
	f.Repeat = models.Repeat(req.GetString("repeat", string(models.RepeatNone)))

	ev, err := s.svc.Create(ctx, f)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ev)
}

func (s *Server) moveEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var date time.Time
	if raw := req.GetString("date", ""); raw != "" {
		if date, err = s.svc.ParseDate(raw); err != nil {
			return toolError(err), nil
		}
	}
	ev, err := s.svc.Move(ctx, id, req.GetInt("minutes", 0), date)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(ev)
}

func (s *Server) deleteEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) searchEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) listIndicators(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.indicators.List(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(items)
}

func (s *Server) readEventTypes(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(models.EventTypes, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      eventTypesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readEventFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      eventFormatURI,
			MIMEType: "text/markdown",
			Text:     EventFormatContract(),
		},
	}, nil
}
