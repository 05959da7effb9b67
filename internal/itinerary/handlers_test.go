package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/notify"
	"backend-itinerary/internal/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
)

type stubGenerator struct {
	draft planner.Draft
	err   error
	got   planner.Preferences
	user  string
}

func (g *stubGenerator) Generate(_ context.Context, travelerID string, prefs planner.Preferences) (planner.Draft, error) {
	g.user = travelerID
	g.got = prefs
	return g.draft, g.err
}

func (g *stubGenerator) Settings() planner.Settings { return planner.DefaultSettings() }

type recordingNotifier struct {
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note notify.Notification) error {
	n.sent = append(n.sent, note)
	return nil
}

func asTraveler(c *fiber.Ctx) error {
	c.Locals("user_id", "traveler-1")
	return c.Next()
}

func newApp(gen Generator, store *Store, notifier Notifier) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/itineraries"), NewHandler(gen, store, notifier, zerolog.Nop()), asTraveler)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestGenerateHandlerReturnsDraft(t *testing.T) {
	gen := &stubGenerator{draft: sampleDraft()}
	app := newApp(gen, nil, nil)

	resp := postJSON(t, app, "/itineraries/generate", map[string]any{
		"area":               "Bacolod",
		"start_date":         "2025-06-01",
		"end_date":           "2025-06-02",
		"companions":         []string{"Family"},
		"activity_intensity": "Moderate",
		"travel_distance":    "Nearby",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gen.user != "traveler-1" || gen.got.Area != "Bacolod" || gen.got.StartDate.String() != "2025-06-01" {
		t.Fatalf("unexpected generate call %q %+v", gen.user, gen.got)
	}

	var draft planner.Draft
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(draft.Items) != 2 || draft.Items[0].Start.String() != "08:00" {
		t.Fatalf("unexpected draft %+v", draft)
	}
}

func TestGenerateHandlerErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"validation", &planner.ValidationError{Problems: []string{"travel_distance is required"}}, http.StatusBadRequest, "travel_distance"},
		{"empty", &planner.NoCandidatesError{Breakdown: planner.Breakdown{Active: 5, Area: 3, Budget: 0, Suggestion: "raise the budget"}}, http.StatusNotFound, "diagnostics"},
		{"catalog", errors.New("load experiences: boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tc := range cases {
		app := newApp(&stubGenerator{err: tc.err}, nil, nil)
		resp := postJSON(t, app, "/itineraries/generate", map[string]any{"area": "x"})
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), tc.want) {
			t.Fatalf("%s: body %s missing %q", tc.name, body, tc.want)
		}
	}
}

func TestGenerateHandlerBadBody(t *testing.T) {
	app := newApp(&stubGenerator{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/itineraries/generate", strings.NewReader(`{"start_date":"06/01/2025"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestGenerateHandlerRequiresUser(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/itineraries"), NewHandler(&stubGenerator{}, nil, nil, zerolog.Nop()), func(c *fiber.Ctx) error { return c.Next() })
	resp := postJSON(t, app, "/itineraries/generate", map[string]any{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSaveHandlerPersistsAndNotifies(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO itineraries`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	expectItem(mock, "exp-heritage", "host-bacolod", 250.0, 1, "sun", "08:00", "10:00")
	expectItem(mock, "exp-cooking", "host-silay", 1200.0, 2, "mon", "10:00", "13:00")
	mock.ExpectCommit()

	notifier := &recordingNotifier{}
	app := newApp(&stubGenerator{}, NewStore(mock, nil), notifier)

	draft := sampleDraft()
	draft.TravelerID = "someone-else"
	resp := postJSON(t, app, "/itineraries/", draft)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var result SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Itinerary.TravelerID != "traveler-1" || len(result.Bookings) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Kind != notify.KindItineraryCreated || notifier.sent[0].RecipientID != "traveler-1" {
		t.Fatalf("unexpected traveler notification %+v", notifier.sent[0])
	}
	if notifier.sent[2].Kind != notify.KindBookingRequested || notifier.sent[2].RecipientID != "host-silay" {
		t.Fatalf("unexpected host notification %+v", notifier.sent[2])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveHandlerRejectsInvalidDraft(t *testing.T) {
	app := newApp(&stubGenerator{}, NewStore(nil, nil), nil)

	draft := sampleDraft()
	draft.Items[1].ExperienceID = "exp-heritage"
	resp := postJSON(t, app, "/itineraries/", draft)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for repeated experience, got %d", resp.StatusCode)
	}

	draft = sampleDraft()
	draft.Items = nil
	resp = postJSON(t, app, "/itineraries/", draft)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty draft, got %d", resp.StatusCode)
	}
}

func TestSaveHandlerRejectsWindowNotOffered(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO itineraries`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	expectLookup(mock, "exp-heritage", "host-bacolod", 250.0, "active")
	expectOffered(mock, "exp-heritage", "sun", "03:00", "04:00", false)
	mock.ExpectRollback()

	notifier := &recordingNotifier{}
	app := newApp(&stubGenerator{}, NewStore(mock, nil), notifier)

	draft := sampleDraft()
	draft.Items[0].Start = experience.Clock(3, 0)
	draft.Items[0].End = experience.Clock(4, 0)
	resp := postJSON(t, app, "/itineraries/", draft)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a window the host never offered, got %d", resp.StatusCode)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.sent))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM itineraries WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	app := newApp(&stubGenerator{}, NewStore(mock, nil), nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/itineraries/missing", nil))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
