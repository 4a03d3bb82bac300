package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/starford/weekplan/internal/drag"
	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/indicator"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/sse"
	"github.com/starford/weekplan/internal/testutil"
)

var today = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

// testEnv sets up a temp SQLite store, the services and the router.
func testEnv(t *testing.T) (*eventservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithBroker(t)
	return svc, router
}

func testEnvWithBroker(t *testing.T) (*eventservice.Service, http.Handler, *sse.Broker) {
	t.Helper()
	db := testutil.TestDB(t, time.UTC)
	broker := sse.NewBroker(50 * time.Millisecond)
	t.Cleanup(broker.Close)

	clk := &testutil.Clock{Now: today}
	svc := eventservice.New(db,
		eventservice.WithPublisher(broker),
		eventservice.WithSettings(db),
		eventservice.WithLocation(time.UTC),
		eventservice.WithClock(clk.Func()),
		eventservice.WithDragOptions(drag.WithAfterFunc(func(time.Duration, func()) drag.Timer {
			return stubTimer{}
		})),
	)
	router := NewRouter(svc, indicator.New(db), broker)
	return svc, router, broker
}

type stubTimer struct{}

func (stubTimer) Stop() bool { return true }

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v; body = %s", v, err, w.Body.String())
	}
	return v
}

func createEvent(t *testing.T, router http.Handler, f EventForm) EventDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/events", f)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[EventDetail](t, w)
}

func workForm(date, start, end string) EventForm {
	return EventForm{Type: "Work", Date: date, StartTime: start, EndTime: end}
}

func TestCreateAndGetEvent(t *testing.T) {
	_, router := testEnv(t)

	created := createEvent(t, router, workForm("2026-04-02", "9:00 AM", "10:30 AM"))
	if created.Title != "Work" || created.Duration != 1.5 {
		t.Errorf("created = %+v", created.Event)
	}

	w := do(t, router, http.MethodGet, "/events/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := w.Header().Get("ETag"); got != strconv.Quote(created.Checksum) {
		t.Errorf("ETag = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	ev := decode[EventDetail](t, w)
	if ev.StartTime != "9:00 AM" || ev.EndTime != "10:30 AM" {
		t.Errorf("times = %s-%s", ev.StartTime, ev.EndTime)
	}
}

func TestCreateEvent_Invalid(t *testing.T) {
	_, router := testEnv(t)

	w := do(t, router, http.MethodPost, "/events", workForm("2026-04-02", "9 o'clock", "10:00 AM"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad clock = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON = %d, want 400", rec.Code)
	}
}

func TestRequireJSON(t *testing.T) {
	_, router := testEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("type=Work"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("form body = %d, want 415", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t)
	created := createEvent(t, router, workForm("2026-04-02", "9:00 AM", "10:00 AM"))

	edit := workForm("2026-04-02", "9:00 AM", "11:00 AM")
	edit.Title = "Review"

	w := do(t, router, http.MethodPut, "/events/"+created.ID, edit, "If-Match", strconv.Quote(created.Checksum))
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}
	if ev := decode[EventDetail](t, w); ev.Title != "Review" || ev.Duration != 2 {
		t.Errorf("updated = %+v", ev.Event)
	}

	// The checksum is stale now.
	w = do(t, router, http.MethodPut, "/events/"+created.ID, edit, "If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("stale checksum = %d, want 409", w.Code)
	}

	w = do(t, router, http.MethodPut, "/events/"+created.ID, edit)
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d", w.Code)
	}
}

func TestEvent_NotFound(t *testing.T) {
	_, router := testEnv(t)
	tests := []struct {
		method, target string
		body           any
	}{
		{http.MethodGet, "/events/missing", nil},
		{http.MethodPut, "/events/missing", workForm("2026-04-02", "9:00 AM", "10:00 AM")},
		{http.MethodDelete, "/events/missing", nil},
		{http.MethodPost, "/events/missing/duplicate", nil},
		{http.MethodPost, "/events/missing/move", MoveRequest{Minutes: 15}},
	}
	for _, tt := range tests {
		w := do(t, router, tt.method, tt.target, tt.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tt.method, tt.target, w.Code)
		}
		if e := decode[errResponse](t, w); e.Error == "" {
			t.Errorf("%s %s: empty error body", tt.method, tt.target)
		}
	}
}

func TestDeleteEvent(t *testing.T) {
	_, router := testEnv(t)
	created := createEvent(t, router, workForm("2026-04-02", "9:00 AM", "10:00 AM"))

	if w := do(t, router, http.MethodDelete, "/events/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/events/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

func TestDuplicateAndMove(t *testing.T) {
	_, router := testEnv(t)
	created := createEvent(t, router, workForm("2026-04-02", "9:00 AM", "10:00 AM"))

	w := do(t, router, http.MethodPost, "/events/"+created.ID+"/duplicate", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate = %d", w.Code)
	}
	if dup := decode[EventDetail](t, w); dup.ID == created.ID {
		t.Error("duplicate kept the id")
	}

	w = do(t, router, http.MethodPost, "/events/"+created.ID+"/move", MoveRequest{Minutes: 95, Date: "2026-04-03"})
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d, body = %s", w.Code, w.Body.String())
	}
	moved := decode[EventDetail](t, w)
	if moved.StartTime != "10:30 AM" || moved.EndTime != "11:30 AM" || moved.Date.Day() != 3 {
		t.Errorf("moved = %v %s-%s", moved.Date, moved.StartTime, moved.EndTime)
	}

	w = do(t, router, http.MethodPost, "/events/"+created.ID+"/move", MoveRequest{Date: "tomorrow"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", w.Code)
	}
}

func TestListEvents(t *testing.T) {
	_, router := testEnv(t)
	createEvent(t, router, workForm("2026-04-02", "9:00 AM", "10:00 AM"))
	createEvent(t, router, workForm("2026-04-10", "9:00 AM", "10:00 AM"))

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if got := decode[OccurrenceListResponse](t, w); len(got.Occurrences) != 1 {
		t.Errorf("selected week = %d occurrences, want 1", len(got.Occurrences))
	}

	w = do(t, router, http.MethodGet, "/events?from=2026-04-01&to=2026-04-30", nil)
	if got := decode[OccurrenceListResponse](t, w); len(got.Occurrences) != 2 {
		t.Errorf("month = %d occurrences, want 2", len(got.Occurrences))
	}

	if w := do(t, router, http.MethodGet, "/events?from=2026-04-05&to=2026-04-01", nil); w.Code != http.StatusBadRequest {
		t.Errorf("inverted range = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t)
	f := workForm("2026-04-02", "9:00 AM", "10:00 AM")
	f.Title = "Dentist appointment"
	createEvent(t, router, f)

	w := do(t, router, http.MethodGet, "/search?q=Dentist", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	if got := decode[SearchResponse](t, w); len(got.Results) != 1 {
		t.Errorf("results = %+v", got.Results)
	}

	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestWeekAndDay(t *testing.T) {
	_, router := testEnv(t)
	f := workForm("2026-03-04", "8:00 AM", "9:00 AM")
	f.Repeat = models.RepeatWeekly
	createEvent(t, router, f)

	w := do(t, router, http.MethodGet, "/week?date=2026-04-06", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("week = %d", w.Code)
	}
	v := decode[eventservice.WeekView](t, w)
	if len(v.Days) != 7 || v.Days[0].Name != "Wed" || v.Days[0].DayOfMonth != 1 {
		t.Errorf("days = %+v", v.Days)
	}
	if len(v.Columns[0].Occurrences) != 1 || v.Columns[0].Occurrences[0].Box.Top != 8*64 {
		t.Errorf("Wednesday column = %+v", v.Columns[0])
	}

	w = do(t, router, http.MethodGet, "/days/2026-04-08", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("day = %d", w.Code)
	}
	if d := decode[eventservice.DayView](t, w); d.Header != "Apr 8, 2026" || len(d.Occurrences) != 1 {
		t.Errorf("day = %+v", d)
	}

	if w := do(t, router, http.MethodGet, "/days/April-8", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad day = %d, want 400", w.Code)
	}
}

func TestSelectedDate(t *testing.T) {
	_, router := testEnv(t)

	w := do(t, router, http.MethodGet, "/selected-date", nil)
	if got := decode[SelectedDateResponse](t, w); got.Date != "2026-04-02" || got.Header != "Apr 2, 2026" {
		t.Errorf("initial = %+v", got)
	}

	w = do(t, router, http.MethodPut, "/selected-date", SelectDateRequest{Date: "2026-04-09"})
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/week", nil)
	if v := decode[eventservice.WeekView](t, w); !v.Days[1].Selected || v.Days[1].DayOfMonth != 9 {
		t.Errorf("selected day not marked: %+v", v.Days)
	}
}

func TestMonth(t *testing.T) {
	_, router := testEnv(t)

	w := do(t, router, http.MethodGet, "/month", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("month = %d", w.Code)
	}
	m := decode[MonthResponse](t, w)
	// April 2026 starts on a Wednesday: three blank cells, then 30 days.
	if m.Year != 2026 || m.Month != 4 || m.Title != "April 2026" || m.Selected != 2 {
		t.Errorf("month = %+v", m)
	}
	if len(m.Days) != 33 || m.Days[2] != 0 || m.Days[3] != 1 || m.Days[32] != 30 {
		t.Errorf("days = %v", m.Days)
	}

	w = do(t, router, http.MethodGet, "/month?year=2028&month=2", nil)
	m = decode[MonthResponse](t, w)
	if m.Title != "February 2028" || m.Selected != 0 || m.Days[len(m.Days)-1] != 29 {
		t.Errorf("leap February = %+v", m)
	}

	for _, q := range []string{"month=13", "month=0", "year=abc"} {
		if w := do(t, router, http.MethodGet, "/month?"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", q, w.Code)
		}
	}
}

func TestEventTypesAndForms(t *testing.T) {
	_, router := testEnv(t)

	w := do(t, router, http.MethodGet, "/event-types", nil)
	types := decode[EventTypesResponse](t, w)
	if len(types.Types) != len(models.EventTypes) || len(types.RepeatOptions) != 5 {
		t.Errorf("event types = %+v", types)
	}

	w = do(t, router, http.MethodGet, "/forms/new", nil)
	if f := decode[EventForm](t, w); f.Type != models.TypeOther || f.StartTime != "12:00 PM" || f.Date != "2026-04-02" {
		t.Errorf("plus form = %+v", f)
	}

	w = do(t, router, http.MethodGet, "/forms/new?date=2026-04-05&hour=15", nil)
	if f := decode[EventForm](t, w); f.Type != "" || f.StartTime != "3:00 PM" || f.EndTime != "4:00 PM" || f.Date != "2026-04-05" {
		t.Errorf("slot form = %+v", f)
	}

	if w := do(t, router, http.MethodGet, "/forms/new?hour=24", nil); w.Code != http.StatusBadRequest {
		t.Errorf("hour 24 = %d, want 400", w.Code)
	}
}

func TestDragFlow(t *testing.T) {
	_, router := testEnv(t)
	created := createEvent(t, router, workForm("2026-04-02", "7:00 AM", "8:00 AM"))

	w := do(t, router, http.MethodPost, "/drag/start", DragStartRequest{ID: created.ID, Point: drag.Point{X: 300, Y: 300}})
	if w.Code != http.StatusOK {
		t.Fatalf("start = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/drag/start", DragStartRequest{ID: created.ID}); w.Code != http.StatusConflict {
		t.Errorf("second start = %d, want 409", w.Code)
	}

	w = do(t, router, http.MethodPost, "/drag/move", DragMoveRequest{
		Point:    drag.Point{X: 300, Y: 580},
		Viewport: drag.Viewport{Width: 800, Height: 600},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d", w.Code)
	}
	if res := decode[drag.MoveResult](t, w); res.ScrollBy != drag.ScrollStepPx || res.OffsetY != 280 {
		t.Errorf("move result = %+v", res)
	}

	w = do(t, router, http.MethodPost, "/drag/end", DragEndRequest{Point: drag.Point{X: 300, Y: 428}})
	if w.Code != http.StatusOK {
		t.Fatalf("end = %d", w.Code)
	}
	out := decode[drag.Outcome](t, w)
	if out.Kind != drag.OutcomeCommitted || out.Event.StartTime != "9:00 AM" {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Undo == nil || out.Undo.Message != "Moved to Apr 2, 2026, 9:00 AM" {
		t.Errorf("undo = %+v", out.Undo)
	}

	if w := do(t, router, http.MethodGet, "/undo", nil); w.Code != http.StatusOK {
		t.Errorf("pending undo = %d", w.Code)
	}
	w = do(t, router, http.MethodPost, "/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo = %d", w.Code)
	}
	if ev := decode[EventDetail](t, w); ev.StartTime != "7:00 AM" || ev.Checksum != created.Checksum {
		t.Errorf("undo restored %+v", ev.Event)
	}
	if w := do(t, router, http.MethodPost, "/undo", nil); w.Code != http.StatusNotFound {
		t.Errorf("second undo = %d, want 404", w.Code)
	}
}

func TestDrag_WithoutSession(t *testing.T) {
	_, router := testEnv(t)
	for _, path := range []string{"/drag/move", "/drag/end"} {
		w := do(t, router, http.MethodPost, path, DragEndRequest{})
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, w.Code)
		}
	}
	w := do(t, router, http.MethodPost, "/drag/end", DragEndRequest{})
	if out := decode[drag.Outcome](t, w); out.Kind != drag.OutcomeNone {
		t.Errorf("end without drag kind = %q", out.Kind)
	}
	if w := do(t, router, http.MethodPost, "/drag/cancel", nil); w.Code != http.StatusConflict {
		t.Errorf("cancel without drag = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/drag/start", DragStartRequest{ID: "missing"}); w.Code != http.StatusNotFound {
		t.Errorf("start missing = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/drag/start", DragStartRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("start without id = %d, want 400", w.Code)
	}
}

func TestIndicators(t *testing.T) {
	_, router := testEnv(t)

	w := do(t, router, http.MethodPost, "/indicators", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	in := decode[models.Indicator](t, w)
	if in.Label != indicator.DefaultLabel || in.Denominator != 7 {
		t.Errorf("created = %+v", in)
	}

	w = do(t, router, http.MethodPut, "/indicators/"+in.ID, indicator.Input{Label: "Reading", Numerator: -2, Denominator: 0})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[models.Indicator](t, w); got.Numerator != 0 || got.Denominator != 1 {
		t.Errorf("clamped = %+v", got)
	}
	if w := do(t, router, http.MethodPut, "/indicators/"+in.ID, indicator.Input{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty label = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/indicators", nil)
	if got := decode[IndicatorListResponse](t, w); len(got.Indicators) != 1 || got.Indicators[0].Label != "Reading" {
		t.Errorf("list = %+v", got)
	}

	if w := do(t, router, http.MethodDelete, "/indicators/"+in.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/indicators/"+in.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", w.Code)
	}
}

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExportImport(t *testing.T) {
	_, router := testEnv(t)
	f := workForm("2026-04-02", "9:00 AM", "10:00 AM")
	f.Title = "Standup"
	created := createEvent(t, router, f)

	w := do(t, router, http.MethodGet, "/export.ics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.Bytes()
	if !bytes.Contains(body, []byte("SUMMARY:Standup")) {
		t.Fatalf("export missing event:\n%s", body)
	}

	// Re-importing the export into another store reproduces the event.
	_, other := testEnv(t)
	w = uploadFile(t, other, "week.ics", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[ImportResponse](t, w); got.Imported != 1 || got.Filename != "week.ics" {
		t.Errorf("import = %+v", got)
	}
	w = do(t, other, http.MethodGet, "/events/"+created.ID, nil)
	if ev := decode[EventDetail](t, w); ev.Title != "Standup" || ev.StartTime != "9:00 AM" {
		t.Errorf("imported = %+v", ev.Event)
	}
}

func TestImport_Rejects(t *testing.T) {
	_, router := testEnv(t)
	if w := uploadFile(t, router, "notes.txt", []byte("hello")); w.Code != http.StatusBadRequest {
		t.Errorf("non-ics = %d, want 400", w.Code)
	}
	if w := uploadFile(t, router, "empty.ics", nil); w.Code != http.StatusBadRequest {
		t.Errorf("empty = %d, want 400", w.Code)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "x")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}

func TestStream_DeliversChanges(t *testing.T) {
	_, router, _ := testEnvWithBroker(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	body, _ := json.Marshal(workForm("2026-04-02", "9:00 AM", "10:00 AM"))
	post, err := http.Post(srv.URL+"/events", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	post.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == "event: "+sse.EventCreated {
			return
		}
	}
	t.Fatalf("event.created not received: %v", sc.Err())
}
