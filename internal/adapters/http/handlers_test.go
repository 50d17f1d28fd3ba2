package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/oskarlindgren/pendla/internal/adapters/http"
	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/usecases"
)

// ---- Mock repositories ----

type mockSessionRepo struct {
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	if token == "tok-u1" {
		return &domain.Session{Token: token, UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockSessionRepo) Delete(ctx context.Context, token string) error { return nil }

type mockStopRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Stop, error)
	getByIDsFn   func(ctx context.Context, ids []string) ([]domain.Stop, error)
	searchFn     func(ctx context.Context, prefix string, limit int) ([]domain.Stop, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Stop, error)
}

func (m *mockStopRepo) Upsert(ctx context.Context, s *domain.Stop) error       { return nil }
func (m *mockStopRepo) UpsertBatch(ctx context.Context, s []domain.Stop) error { return nil }
func (m *mockStopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Stop{ID: id, StopID: "740000" + id, Name: "Stop " + id}, nil
}
func (m *mockStopRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Stop, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}
func (m *mockStopRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Stop, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, prefix, limit)
	}
	return nil, nil
}
func (m *mockStopRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Stop, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

type mockPlanner struct {
	planTripsFn func(ctx context.Context, from, to string, depart time.Time) ([]domain.Itinerary, error)
}

func (m *mockPlanner) PlanTrips(ctx context.Context, from, to string, depart time.Time) ([]domain.Itinerary, error) {
	if m.planTripsFn != nil {
		return m.planTripsFn(ctx, from, to, depart)
	}
	return nil, nil
}

type mockBoard struct {
	departuresFn func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error)
}

func (m *mockBoard) Departures(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
	if m.departuresFn != nil {
		return m.departuresFn(ctx, stopID, at)
	}
	return nil, nil
}

type mockRouteRepo struct {
	createFn     func(ctx context.Context, r *domain.CommuteRoute) error
	updateFn     func(ctx context.Context, r *domain.CommuteRoute) error
	deleteFn     func(ctx context.Context, id string) error
	getByIDFn    func(ctx context.Context, id string) (*domain.CommuteRoute, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.CommuteRoute, error)
	listActiveFn func(ctx context.Context, day time.Weekday, from, to string) ([]domain.CommuteRoute, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, r *domain.CommuteRoute) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	r.ID = "route-1"
	return nil
}
func (m *mockRouteRepo) Update(ctx context.Context, r *domain.CommuteRoute) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, r)
	}
	return nil
}
func (m *mockRouteRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.CommuteRoute, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockRouteRepo) ListByUser(ctx context.Context, userID string) ([]domain.CommuteRoute, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockRouteRepo) ListActive(ctx context.Context, day time.Weekday, from, to string) ([]domain.CommuteRoute, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, day, from, to)
	}
	return nil, nil
}

type mockJourneyRepo struct {
	createFn       func(ctx context.Context, j *domain.Journey) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Journey, error)
	findFn         func(ctx context.Context, routeID string, date time.Time) (*domain.Journey, error)
	listByUserFn   func(ctx context.Context, userID string, limit int) ([]domain.Journey, error)
	updateStatusFn func(ctx context.Context, id string, status domain.JourneyStatus) error
	updateDelayFn  func(ctx context.Context, id string, delayMinutes int) error
}

func (m *mockJourneyRepo) Create(ctx context.Context, j *domain.Journey) error {
	if m.createFn != nil {
		return m.createFn(ctx, j)
	}
	j.ID = "journey-1"
	return nil
}
func (m *mockJourneyRepo) GetByID(ctx context.Context, id string) (*domain.Journey, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockJourneyRepo) FindByRouteAndDate(ctx context.Context, routeID string, date time.Time) (*domain.Journey, error) {
	if m.findFn != nil {
		return m.findFn(ctx, routeID, date)
	}
	return nil, domain.ErrNotFound
}
func (m *mockJourneyRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Journey, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}
func (m *mockJourneyRepo) UpdateStatus(ctx context.Context, id string, status domain.JourneyStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}
func (m *mockJourneyRepo) UpdateDelay(ctx context.Context, id string, delayMinutes int) error {
	if m.updateDelayFn != nil {
		return m.updateDelayFn(ctx, id, delayMinutes)
	}
	return nil
}

type mockCaseRepo struct {
	createUniqueFn func(ctx context.Context, c *domain.CompensationCase) error
	getByIDFn      func(ctx context.Context, id string) (*domain.CompensationCase, error)
	getByJourneyFn func(ctx context.Context, journeyID string) (*domain.CompensationCase, error)
	listByUserFn   func(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error)
	updateStatusFn func(ctx context.Context, id string, status domain.CaseStatus) error
	setClaimDataFn func(ctx context.Context, id string, data []byte) error
}

func (m *mockCaseRepo) CreateUnique(ctx context.Context, c *domain.CompensationCase) error {
	if m.createUniqueFn != nil {
		return m.createUniqueFn(ctx, c)
	}
	c.ID = "case-1"
	return nil
}
func (m *mockCaseRepo) GetByID(ctx context.Context, id string) (*domain.CompensationCase, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCaseRepo) GetByJourney(ctx context.Context, journeyID string) (*domain.CompensationCase, error) {
	if m.getByJourneyFn != nil {
		return m.getByJourneyFn(ctx, journeyID)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCaseRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}
func (m *mockCaseRepo) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}
func (m *mockCaseRepo) SetClaimData(ctx context.Context, id string, data []byte) error {
	if m.setClaimDataFn != nil {
		return m.setClaimDataFn(ctx, id, data)
	}
	return nil
}

type mockNotificationRepo struct {
	createFn      func(ctx context.Context, n *domain.Notification) error
	listByUserFn  func(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	markReadFn    func(ctx context.Context, id, userID string) error
	markAllReadFn func(ctx context.Context, userID string) error
	lastOfTypeFn  func(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	return nil
}
func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, unreadOnly, limit)
	}
	return nil, nil
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, id, userID)
	}
	return nil
}
func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, userID)
	}
	return nil
}
func (m *mockNotificationRepo) LastOfType(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error) {
	if m.lastOfTypeFn != nil {
		return m.lastOfTypeFn(ctx, userID, journeyID, t)
	}
	return nil, domain.ErrNotFound
}

type mockAlertRepo struct {
	listActiveFn func(ctx context.Context, at time.Time) ([]domain.ServiceAlert, error)
}

func (m *mockAlertRepo) Upsert(ctx context.Context, a *domain.ServiceAlert) error { return nil }
func (m *mockAlertRepo) ListActive(ctx context.Context, at time.Time) ([]domain.ServiceAlert, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, at)
	}
	return nil, nil
}

type mockLineRepo struct {
	listByModeFn func(ctx context.Context, mode domain.TransportMode) ([]domain.Line, error)
}

func (m *mockLineRepo) Upsert(ctx context.Context, l *domain.Line) error { return nil }
func (m *mockLineRepo) GetByID(ctx context.Context, id string) (*domain.Line, error) {
	return nil, domain.ErrNotFound
}
func (m *mockLineRepo) ListByMode(ctx context.Context, mode domain.TransportMode) ([]domain.Line, error) {
	if m.listByModeFn != nil {
		return m.listByModeFn(ctx, mode)
	}
	return nil, nil
}

type mockPushRepo struct {
	createFn     func(ctx context.Context, sub *domain.PushSubscription) error
	deleteFn     func(ctx context.Context, id, userID string) error
	listByUserFn func(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}

func (m *mockPushRepo) Create(ctx context.Context, sub *domain.PushSubscription) error {
	if m.createFn != nil {
		return m.createFn(ctx, sub)
	}
	sub.ID = "sub-1"
	return nil
}
func (m *mockPushRepo) Delete(ctx context.Context, id, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}
func (m *mockPushRepo) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	stopRepo := &mockStopRepo{}
	routeRepo := &mockRouteRepo{}
	notifSvc := usecases.NewNotificationService(&mockNotificationRepo{}, &mockPushRepo{}, nil, nil)
	compSvc := usecases.NewCompensationService(&mockCaseRepo{}, routeRepo, notifSvc)

	d := &handler.Dependencies{
		Stops:         usecases.NewStopService(stopRepo, nil),
		Planner:       usecases.NewPlannerService(&mockPlanner{}, stopRepo, nil),
		Departures:    usecases.NewDepartureService(&mockBoard{}, nil),
		Routes:        usecases.NewCommuteRouteService(routeRepo, stopRepo),
		Journeys:      usecases.NewJourneyService(&mockJourneyRepo{}, notifSvc, compSvc),
		Compensations: compSvc,
		Notifications: notifSvc,
		Sessions:      &mockSessionRepo{},
		Push:          &mockPushRepo{},
		Alerts:        &mockAlertRepo{},
		Lines:         &mockLineRepo{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func jsonReq(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer tok-u1")
	return req
}

func legBetween(from, to string, dep time.Time) domain.Leg {
	return domain.Leg{
		Kind:       domain.LegTransit,
		From:       domain.Stop{ID: from, Name: "Stop " + from},
		To:         domain.Stop{ID: to, Name: "Stop " + to},
		PlannedDep: dep,
		PlannedArr: dep.Add(20 * time.Minute),
		Valid:      true,
	}
}

// ---- Auth middleware tests ----

func TestAuth_MissingHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/routes", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "unauthorized" {
		t.Errorf("expected unauthorized error, got %s", apiErr.Code)
	}
}

func TestAuth_NotBearer(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/routes", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuth_UnknownToken(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/routes", nil)
	req.Header.Set("Authorization", "Bearer no-such-token")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuth_ExpiredSession(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Sessions = &mockSessionRepo{
			getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
				return &domain.Session{Token: token, UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}, nil
			},
		}
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/routes", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

// ---- Plan handler tests ----

func TestPlan_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Planner = usecases.NewPlannerService(&mockPlanner{
			planTripsFn: func(ctx context.Context, from, to string, depart time.Time) ([]domain.Itinerary, error) {
				leg := legBetween(from, to, depart.Add(5*time.Minute))
				leg.Line = &domain.Line{Designation: "43", Mode: domain.ModeRail}
				return []domain.Itinerary{{Legs: []domain.Leg{leg}}}, nil
			},
		}, &mockStopRepo{}, nil)
	})
	app := setupApp(deps)

	req := jsonReq(t, "POST", "/v1/journeys/plan", map[string]any{
		"stop_ids":  []string{"tumba", "sthlm-city"},
		"depart_at": "07:12",
	})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var it domain.Itinerary
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		t.Fatal(err)
	}
	if len(it.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(it.Legs))
	}
	if !it.Legs[0].Valid {
		t.Errorf("expected valid leg, got reason %q", it.Legs[0].Reason)
	}
	if it.Origin().ID != "tumba" || it.Destination().ID != "sthlm-city" {
		t.Errorf("unexpected endpoints %s -> %s", it.Origin().ID, it.Destination().ID)
	}
	if it.Legs[0].Line == nil || it.Legs[0].Line.Designation != "43" {
		t.Errorf("expected line 43 on leg, got %+v", it.Legs[0].Line)
	}
}

func TestPlan_TooFewStops(t *testing.T) {
	app := setupApp(makeDeps())

	req := jsonReq(t, "POST", "/v1/journeys/plan", map[string]any{
		"stop_ids": []string{"tumba"},
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlan_BadDepartAt(t *testing.T) {
	app := setupApp(makeDeps())

	req := jsonReq(t, "POST", "/v1/journeys/plan", map[string]any{
		"stop_ids":  []string{"tumba", "sthlm-city"},
		"depart_at": "7:32am",
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlan_UnknownStop(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Planner = usecases.NewPlannerService(&mockPlanner{}, &mockStopRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Stop, error) {
				return nil, domain.ErrNotFound
			},
		}, nil)
	})
	app := setupApp(deps)

	req := jsonReq(t, "POST", "/v1/journeys/plan", map[string]any{
		"stop_ids": []string{"nope", "sthlm-city"},
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestValidateItinerary_EmptyLegs(t *testing.T) {
	app := setupApp(makeDeps())

	req := jsonReq(t, "POST", "/v1/journeys/validate", map[string]any{
		"itinerary": domain.Itinerary{},
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Insert-via and remove-leg tests ----

func TestInsertVia_Success(t *testing.T) {
	app := setupApp(makeDeps())
	dep := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

	req := jsonReq(t, "POST", "/v1/journeys/plan/via", map[string]any{
		"itinerary":   domain.Itinerary{Legs: []domain.Leg{legBetween("a", "b", dep)}},
		"leg_index":   0,
		"via_stop_id": "c",
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var it domain.Itinerary
	json.NewDecoder(resp.Body).Decode(&it)
	if len(it.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(it.Legs))
	}
	if it.Origin().ID != "a" || it.Destination().ID != "b" {
		t.Errorf("endpoints changed: %s -> %s", it.Origin().ID, it.Destination().ID)
	}
	if it.Legs[0].To.ID != "c" || it.Legs[1].From.ID != "c" {
		t.Errorf("via stop not linked: %s / %s", it.Legs[0].To.ID, it.Legs[1].From.ID)
	}
}

func TestInsertVia_ViaStopNotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Stops = usecases.NewStopService(&mockStopRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Stop, error) {
				return nil, domain.ErrNotFound
			},
		}, nil)
	})
	app := setupApp(deps)
	dep := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

	req := jsonReq(t, "POST", "/v1/journeys/plan/via", map[string]any{
		"itinerary":   domain.Itinerary{Legs: []domain.Leg{legBetween("a", "b", dep)}},
		"leg_index":   0,
		"via_stop_id": "ghost",
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRemoveLeg_First(t *testing.T) {
	app := setupApp(makeDeps())
	dep := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

	req := jsonReq(t, "POST", "/v1/journeys/plan/remove-leg", map[string]any{
		"itinerary": domain.Itinerary{Legs: []domain.Leg{
			legBetween("a", "b", dep),
			legBetween("b", "c", dep.Add(25*time.Minute)),
		}},
		"leg_index": 0,
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var it domain.Itinerary
	json.NewDecoder(resp.Body).Decode(&it)
	if len(it.Legs) != 1 || it.Origin().ID != "b" {
		t.Errorf("expected single leg from b, got %d legs from %s", len(it.Legs), it.Origin().ID)
	}
}

func TestRemoveLeg_OutOfRange(t *testing.T) {
	app := setupApp(makeDeps())
	dep := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

	req := jsonReq(t, "POST", "/v1/journeys/plan/remove-leg", map[string]any{
		"itinerary": domain.Itinerary{Legs: []domain.Leg{legBetween("a", "b", dep)}},
		"leg_index": 3,
	})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Route handler tests ----

func TestCreateRoute_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(jsonReq(t, "POST", "/v1/routes", map[string]any{
		"name":           "Till jobbet",
		"origin_id":      "tumba",
		"destination_id": "sthlm-city",
		"weekdays":       []string{"mon", "fri"},
		"departure_time": "07:32",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var route domain.CommuteRoute
	json.NewDecoder(resp.Body).Decode(&route)
	if route.ID != "route-1" {
		t.Errorf("expected assigned id, got %q", route.ID)
	}
	if !route.Weekdays.Has(time.Monday) || !route.Weekdays.Has(time.Friday) {
		t.Errorf("weekday names not mapped, got %07b", route.Weekdays)
	}
	if route.Weekdays.Has(time.Tuesday) {
		t.Errorf("unexpected weekday set, got %07b", route.Weekdays)
	}
	if route.ThresholdMin != domain.DefaultThresholdMin {
		t.Errorf("expected default threshold, got %d", route.ThresholdMin)
	}
	if route.UserID != "u1" {
		t.Errorf("expected owner u1, got %s", route.UserID)
	}
}

func TestCreateRoute_SameEndpoints(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(jsonReq(t, "POST", "/v1/routes", map[string]any{
		"name":           "Nowhere",
		"origin_id":      "tumba",
		"destination_id": "tumba",
		"weekdays":       []string{"mon"},
		"departure_time": "07:32",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateRoute_BadWeekdayName(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(jsonReq(t, "POST", "/v1/routes", map[string]any{
		"name":           "Till jobbet",
		"origin_id":      "tumba",
		"destination_id": "sthlm-city",
		"weekdays":       []string{"monday"},
		"departure_time": "07:32",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateRoute_NotOwner(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Routes = usecases.NewCommuteRouteService(&mockRouteRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.CommuteRoute, error) {
				return &domain.CommuteRoute{ID: id, UserID: "someone-else"}, nil
			},
		}, &mockStopRepo{})
	})
	app := setupApp(deps)

	req := asUser(jsonReq(t, "PUT", "/v1/routes/r1", map[string]any{
		"name":           "Till jobbet",
		"origin_id":      "tumba",
		"destination_id": "sthlm-city",
		"weekdays":       []string{"mon"},
		"departure_time": "07:32",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestDeleteRoute_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(httptest.NewRequest("DELETE", "/v1/routes/ghost", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetRoute_Forbidden(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Routes = usecases.NewCommuteRouteService(&mockRouteRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.CommuteRoute, error) {
				return &domain.CommuteRoute{ID: id, UserID: "someone-else"}, nil
			},
		}, &mockStopRepo{})
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/routes/r1", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestListRoutes_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Routes = usecases.NewCommuteRouteService(&mockRouteRepo{
			listByUserFn: func(ctx context.Context, userID string) ([]domain.CommuteRoute, error) {
				return []domain.CommuteRoute{
					{ID: "r1", UserID: userID, Name: "Till jobbet"},
					{ID: "r2", UserID: userID, Name: "Hem igen"},
				}, nil
			},
		}, &mockStopRepo{})
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/routes", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.CommuteRoute `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 routes, got %d", len(result.Data))
	}
}

// ---- Journey handler tests ----

func TestPromoteJourney_Success(t *testing.T) {
	app := setupApp(makeDeps())
	dep := time.Date(2026, 3, 9, 7, 32, 0, 0, time.UTC)

	req := asUser(jsonReq(t, "POST", "/v1/journeys", map[string]any{
		"route_id":  "r1",
		"itinerary": domain.Itinerary{Legs: []domain.Leg{legBetween("tumba", "sthlm-city", dep)}},
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var j domain.Journey
	json.NewDecoder(resp.Body).Decode(&j)
	if j.ID != "journey-1" {
		t.Errorf("expected assigned id, got %q", j.ID)
	}
	if j.Status != domain.JourneyPlanned {
		t.Errorf("expected planned status, got %s", j.Status)
	}
	if !j.TravelDate.Equal(dep) {
		t.Errorf("expected travel date %v, got %v", dep, j.TravelDate)
	}
}

func TestPromoteJourney_BrokenChain(t *testing.T) {
	app := setupApp(makeDeps())
	dep := time.Date(2026, 3, 9, 7, 32, 0, 0, time.UTC)

	req := asUser(jsonReq(t, "POST", "/v1/journeys", map[string]any{
		"itinerary": domain.Itinerary{Legs: []domain.Leg{
			legBetween("a", "b", dep),
			legBetween("c", "d", dep.Add(30*time.Minute)),
		}},
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListJourneys_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		notifSvc := usecases.NewNotificationService(&mockNotificationRepo{}, &mockPushRepo{}, nil, nil)
		compSvc := usecases.NewCompensationService(&mockCaseRepo{}, &mockRouteRepo{}, notifSvc)
		d.Journeys = usecases.NewJourneyService(&mockJourneyRepo{
			listByUserFn: func(ctx context.Context, userID string, limit int) ([]domain.Journey, error) {
				return []domain.Journey{
					{ID: "j1", UserID: userID, Status: domain.JourneyCompleted},
					{ID: "j2", UserID: userID, Status: domain.JourneyActive},
				}, nil
			},
		}, notifSvc, compSvc)
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/journeys", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Journey `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 2 || len(result.Data) != 2 {
		t.Errorf("expected 2 journeys, got %d (total %d)", len(result.Data), result.Pagination.Total)
	}
}

func TestGetJourney_NotOwner(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		notifSvc := usecases.NewNotificationService(&mockNotificationRepo{}, &mockPushRepo{}, nil, nil)
		compSvc := usecases.NewCompensationService(&mockCaseRepo{}, &mockRouteRepo{}, notifSvc)
		d.Journeys = usecases.NewJourneyService(&mockJourneyRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Journey, error) {
				return &domain.Journey{ID: id, UserID: "someone-else"}, nil
			},
		}, notifSvc, compSvc)
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/journeys/j1", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

// ---- Compensation case handler tests ----

func caseDeps(caseRepo *mockCaseRepo) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) {
		notifSvc := usecases.NewNotificationService(&mockNotificationRepo{}, &mockPushRepo{}, nil, nil)
		d.Compensations = usecases.NewCompensationService(caseRepo, &mockRouteRepo{}, notifSvc)
	}
}

func TestListCases_Success(t *testing.T) {
	deps := makeDeps(caseDeps(&mockCaseRepo{
		listByUserFn: func(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error) {
			return []domain.CompensationCase{
				{ID: "c1", UserID: userID, DelayMinutes: 35, AmountSEK: 228, Status: domain.CaseDetected},
			}, nil
		},
	}))
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/compensation/cases", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data []domain.CompensationCase `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 {
		t.Fatalf("expected 1 case, got %d", len(result.Data))
	}
	if result.Data[0].AmountSEK != 228 {
		t.Errorf("expected 228 SEK, got %d", result.Data[0].AmountSEK)
	}
}

func TestGetCase_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(httptest.NewRequest("GET", "/v1/compensation/cases/ghost", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSubmitCase_Success(t *testing.T) {
	var storedClaim []byte
	var storedStatus domain.CaseStatus
	deps := makeDeps(caseDeps(&mockCaseRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.CompensationCase, error) {
			return &domain.CompensationCase{
				ID: id, UserID: "u1", JourneyID: "j1",
				DelayMinutes: 35, ThresholdMin: 20, AmountSEK: 228,
				Status: domain.CaseDetected,
			}, nil
		},
		setClaimDataFn: func(ctx context.Context, id string, data []byte) error {
			storedClaim = data
			return nil
		},
		updateStatusFn: func(ctx context.Context, id string, status domain.CaseStatus) error {
			storedStatus = status
			return nil
		},
	}))
	app := setupApp(deps)

	req := asUser(jsonReq(t, "POST", "/v1/compensation/cases/c1/submit", map[string]any{
		"claim_data": map[string]string{"account": "SE45 5000 0000 0583 9825 7466"},
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var kase domain.CompensationCase
	json.NewDecoder(resp.Body).Decode(&kase)
	if kase.Status != domain.CaseSubmitted {
		t.Errorf("expected submitted, got %s", kase.Status)
	}
	if storedStatus != domain.CaseSubmitted {
		t.Errorf("status not persisted, got %s", storedStatus)
	}
	if len(storedClaim) == 0 {
		t.Error("claim data not stored")
	}
}

func TestSubmitCase_Forbidden(t *testing.T) {
	deps := makeDeps(caseDeps(&mockCaseRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.CompensationCase, error) {
			return &domain.CompensationCase{ID: id, UserID: "someone-else", Status: domain.CaseDetected}, nil
		},
	}))
	app := setupApp(deps)

	req := asUser(jsonReq(t, "POST", "/v1/compensation/cases/c1/submit", map[string]any{}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSubmitCase_AlreadyApproved(t *testing.T) {
	deps := makeDeps(caseDeps(&mockCaseRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.CompensationCase, error) {
			return &domain.CompensationCase{ID: id, UserID: "u1", Status: domain.CaseApproved}, nil
		},
	}))
	app := setupApp(deps)

	req := asUser(jsonReq(t, "POST", "/v1/compensation/cases/c1/submit", map[string]any{}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

// ---- Notification handler tests ----

func TestListNotifications_UnreadOnly(t *testing.T) {
	var gotUnread bool
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Notifications = usecases.NewNotificationService(&mockNotificationRepo{
			listByUserFn: func(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
				gotUnread = unreadOnly
				return []domain.Notification{
					{ID: "n1", UserID: userID, Type: domain.NotifyDelay, Severity: domain.SeverityWarning},
				}, nil
			},
		}, &mockPushRepo{}, nil, nil)
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("GET", "/v1/notifications?unread=true", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !gotUnread {
		t.Error("unread filter not passed through")
	}

	var result struct {
		Data []domain.Notification `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 {
		t.Errorf("expected 1 notification, got %d", len(result.Data))
	}
}

func TestMarkNotificationRead(t *testing.T) {
	var gotID, gotUser string
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Notifications = usecases.NewNotificationService(&mockNotificationRepo{
			markReadFn: func(ctx context.Context, id, userID string) error {
				gotID, gotUser = id, userID
				return nil
			},
		}, &mockPushRepo{}, nil, nil)
	})
	app := setupApp(deps)

	req := asUser(httptest.NewRequest("POST", "/v1/notifications/n1/read", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if gotID != "n1" || gotUser != "u1" {
		t.Errorf("expected n1/u1, got %s/%s", gotID, gotUser)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(httptest.NewRequest("POST", "/v1/notifications/read-all", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

// ---- Push subscription handler tests ----

func TestCreatePushSubscription_Success(t *testing.T) {
	var created *domain.PushSubscription
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Push = &mockPushRepo{
			createFn: func(ctx context.Context, sub *domain.PushSubscription) error {
				sub.ID = "sub-1"
				created = sub
				return nil
			},
		}
	})
	app := setupApp(deps)

	req := asUser(jsonReq(t, "POST", "/v1/push/subscriptions", map[string]any{
		"endpoint": "https://push.example.com/sub/abc",
		"p256dh":   "BNcR...",
		"auth":     "k8J...",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created == nil || created.UserID != "u1" {
		t.Fatalf("subscription not created for u1: %+v", created)
	}
}

func TestCreatePushSubscription_MissingEndpoint(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(jsonReq(t, "POST", "/v1/push/subscriptions", map[string]any{
		"p256dh": "BNcR...",
		"auth":   "k8J...",
	}))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeletePushSubscription(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(httptest.NewRequest("DELETE", "/v1/push/subscriptions/sub-1", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

// ---- Stop and departure handler tests ----

func TestSearchStops_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Stops = usecases.NewStopService(&mockStopRepo{
			searchFn: func(ctx context.Context, prefix string, limit int) ([]domain.Stop, error) {
				return []domain.Stop{
					{ID: "s1", StopID: "740000789", Name: "Tumba station"},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/stops/search?q=tum", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stops []domain.Stop
	json.NewDecoder(resp.Body).Decode(&stops)
	if len(stops) != 1 || stops[0].Name != "Tumba station" {
		t.Errorf("unexpected result: %+v", stops)
	}
}

func TestSearchStops_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/stops/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStopDepartures_Success(t *testing.T) {
	planned := time.Date(2026, 3, 9, 7, 32, 0, 0, time.UTC)
	expected := planned.Add(15 * time.Minute)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Departures = usecases.NewDepartureService(&mockBoard{
			departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
				return []domain.Departure{
					{Line: domain.Line{Designation: "43", Mode: domain.ModeRail}, Planned: planned, Expected: &expected},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/stops/s1/departures", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var board []domain.Departure
	json.NewDecoder(resp.Body).Decode(&board)
	if len(board) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(board))
	}
	if board[0].Delay() != 15*time.Minute {
		t.Errorf("expected 15m delay, got %v", board[0].Delay())
	}
}

func TestStopDepartures_UpstreamRateLimited(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Departures = usecases.NewDepartureService(&mockBoard{
			departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
				return nil, domain.ErrUpstreamRateLimited
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/stops/s1/departures", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 429 {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestETag_PublicBoardRevalidates(t *testing.T) {
	planned := time.Date(2026, 3, 9, 7, 32, 0, 0, time.UTC)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Departures = usecases.NewDepartureService(&mockBoard{
			departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
				return []domain.Departure{
					{Line: domain.Line{Designation: "43", Mode: domain.ModeRail}, Planned: planned},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/stops/s1/departures", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	tag := resp.Header.Get("ETag")
	if !strings.HasPrefix(tag, `W/"`) {
		t.Fatalf("expected weak ETag on public board response, got %q", tag)
	}

	req = httptest.NewRequest("GET", "/v1/stops/s1/departures", nil)
	req.Header.Set("If-None-Match", tag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304 on matching If-None-Match, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("expected empty body on 304, got %d bytes", len(body))
	}
}

func TestETag_PrivateResponsesUntagged(t *testing.T) {
	app := setupApp(makeDeps())

	req := asUser(httptest.NewRequest("GET", "/v1/routes", nil))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if tag := resp.Header.Get("ETag"); tag != "" {
		t.Errorf("per-user response must not carry an ETag, got %q", tag)
	}
}

// ---- Alert and line handler tests ----

func TestListAlerts_ActiveOnly(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Alerts = &mockAlertRepo{
			listActiveFn: func(ctx context.Context, at time.Time) ([]domain.ServiceAlert, error) {
				return []domain.ServiceAlert{
					{ID: "a1", Header: "Signalfel Flemingsberg", Severity: domain.SeverityCritical},
				}, nil
			},
		}
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/alerts", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var alerts []domain.ServiceAlert
	json.NewDecoder(resp.Body).Decode(&alerts)
	if len(alerts) != 1 || alerts[0].Severity != domain.SeverityCritical {
		t.Errorf("unexpected alerts: %+v", alerts)
	}
}

func TestListLines_ByMode(t *testing.T) {
	var gotMode domain.TransportMode
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Lines = &mockLineRepo{
			listByModeFn: func(ctx context.Context, mode domain.TransportMode) ([]domain.Line, error) {
				gotMode = mode
				return []domain.Line{{ID: "l1", Designation: "43", Mode: mode}}, nil
			},
		}
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/lines?mode=rail", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotMode != domain.ModeRail {
		t.Errorf("expected rail, got %s", gotMode)
	}
}

func TestListLines_BadMode(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/lines?mode=zeppelin", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
