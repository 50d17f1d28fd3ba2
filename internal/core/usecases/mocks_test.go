package usecases_test

import (
	"context"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// Function-field mocks for the repository and provider ports. Tests fill in
// only the functions they care about; everything else returns zero values.

type mockStopRepo struct {
	getByIDFn  func(ctx context.Context, id string) (*domain.Stop, error)
	getByIDsFn func(ctx context.Context, ids []string) ([]domain.Stop, error)
	searchFn   func(ctx context.Context, prefix string, limit int) ([]domain.Stop, error)
	nearbyFn   func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Stop, error)
}

func (m *mockStopRepo) Upsert(ctx context.Context, stop *domain.Stop) error        { return nil }
func (m *mockStopRepo) UpsertBatch(ctx context.Context, stops []domain.Stop) error { return nil }

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
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

type mockTripPlanner struct {
	planFn func(ctx context.Context, fromStopID, toStopID string, depart time.Time) ([]domain.Itinerary, error)
}

func (m *mockTripPlanner) PlanTrips(ctx context.Context, fromStopID, toStopID string, depart time.Time) ([]domain.Itinerary, error) {
	if m.planFn != nil {
		return m.planFn(ctx, fromStopID, toStopID, depart)
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
	createFn     func(ctx context.Context, route *domain.CommuteRoute) error
	updateFn     func(ctx context.Context, route *domain.CommuteRoute) error
	deleteFn     func(ctx context.Context, id string) error
	getByIDFn    func(ctx context.Context, id string) (*domain.CommuteRoute, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.CommuteRoute, error)
	listActiveFn func(ctx context.Context, day time.Weekday, from, to string) ([]domain.CommuteRoute, error)
}

func (m *mockRouteRepo) Create(ctx context.Context, route *domain.CommuteRoute) error {
	if m.createFn != nil {
		return m.createFn(ctx, route)
	}
	route.ID = "route-1"
	return nil
}

func (m *mockRouteRepo) Update(ctx context.Context, route *domain.CommuteRoute) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, route)
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
	findByRouteFn  func(ctx context.Context, routeID string, date time.Time) (*domain.Journey, error)
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
	if m.findByRouteFn != nil {
		return m.findByRouteFn(ctx, routeID, date)
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
	createFn     func(ctx context.Context, n *domain.Notification) error
	lastOfTypeFn func(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error { return nil }
func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error  { return nil }

func (m *mockNotificationRepo) LastOfType(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error) {
	if m.lastOfTypeFn != nil {
		return m.lastOfTypeFn(ctx, userID, journeyID, t)
	}
	return nil, nil
}

type mockPushRepo struct {
	listByUserFn func(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}

func (m *mockPushRepo) Create(ctx context.Context, sub *domain.PushSubscription) error { return nil }
func (m *mockPushRepo) Delete(ctx context.Context, id, userID string) error            { return nil }

func (m *mockPushRepo) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

type mockPublisher struct {
	delays        []*domain.Notification
	cancellations []*domain.Notification
	cases         []*domain.CompensationCase
}

func (m *mockPublisher) PublishDelay(ctx context.Context, userID string, n *domain.Notification) error {
	m.delays = append(m.delays, n)
	return nil
}

func (m *mockPublisher) PublishCancellation(ctx context.Context, userID string, n *domain.Notification) error {
	m.cancellations = append(m.cancellations, n)
	return nil
}

func (m *mockPublisher) PublishCase(ctx context.Context, c *domain.CompensationCase) error {
	m.cases = append(m.cases, c)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := m.store[key]; ok {
		return data, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}
