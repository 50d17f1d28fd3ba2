package http

import (
	"github.com/nats-io/nats.go"

	"github.com/oskarlindgren/pendla/internal/adapters/postgres"
	"github.com/oskarlindgren/pendla/internal/adapters/valkey"
	"github.com/oskarlindgren/pendla/internal/core/ports"
	"github.com/oskarlindgren/pendla/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Stops         *usecases.StopService
	Planner       *usecases.PlannerService
	Departures    *usecases.DepartureService
	Routes        *usecases.CommuteRouteService
	Journeys      *usecases.JourneyService
	Compensations *usecases.CompensationService
	Notifications *usecases.NotificationService
	Sessions      ports.SessionRepository
	Push          ports.PushSubscriptionRepository
	Alerts        ports.ServiceAlertRepository
	Lines         ports.LineRepository
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
