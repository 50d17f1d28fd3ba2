package resrobot_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oskarlindgren/pendla/internal/adapters/resrobot"
	"github.com/oskarlindgren/pendla/internal/core/domain"
)

const tripPayload = `{
  "Trip": [
    {
      "LegList": {
        "Leg": [
          {
            "Origin": {
              "extId": "740000789", "name": "Tumba station",
              "lat": 59.1994, "lon": 17.8351, "track": "2",
              "date": "2026-03-09", "time": "07:32:00",
              "rtDate": "2026-03-09", "rtTime": "07:44:00"
            },
            "Destination": {
              "extId": "740000001", "name": "Stockholm City",
              "lat": 59.3318, "lon": 18.0602,
              "date": "2026-03-09", "time": "08:05:00"
            },
            "type": "JNY",
            "name": "Pendeltåg 43",
            "Product": {"num": "43", "catOutS": "JLT", "name": "Pendeltåg 43"}
          },
          {
            "Origin": {
              "extId": "740000001", "name": "Stockholm City",
              "date": "2026-03-09", "time": "08:05:00"
            },
            "Destination": {
              "extId": "740000002", "name": "T-Centralen",
              "date": "2026-03-09", "time": "08:10:00"
            },
            "type": "WALK",
            "name": ""
          }
        ]
      }
    }
  ]
}`

func TestPlanTrips_ParsesLegs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("originExtId") != "740000789" {
			t.Errorf("unexpected origin %q", r.URL.Query().Get("originExtId"))
		}
		if r.URL.Query().Get("accessId") != "test-key" {
			t.Errorf("missing access id")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tripPayload))
	}))
	defer srv.Close()

	c := resrobot.NewWithBaseURL("test-key", srv.URL)
	depart := time.Date(2026, 3, 9, 7, 30, 0, 0, time.Local)

	its, err := c.PlanTrips(context.Background(), "740000789", "740000002", depart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(its) != 1 {
		t.Fatalf("expected 1 itinerary, got %d", len(its))
	}

	legs := its[0].Legs
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}

	first := legs[0]
	if first.Kind != domain.LegTransit {
		t.Errorf("expected transit leg, got %s", first.Kind)
	}
	if first.From.Name != "Tumba station" || first.To.Name != "Stockholm City" {
		t.Errorf("unexpected endpoints %s -> %s", first.From.Name, first.To.Name)
	}
	if first.Line == nil || first.Line.Designation != "43" || first.Line.Mode != domain.ModeRail {
		t.Errorf("unexpected line %+v", first.Line)
	}
	if first.Platform != "2" {
		t.Errorf("expected platform 2, got %q", first.Platform)
	}
	if first.ExpectedDep == nil {
		t.Fatal("expected realtime departure")
	}
	if d := first.Delay(); d != 12*time.Minute {
		t.Errorf("expected 12m delay, got %v", d)
	}

	if legs[1].Kind != domain.LegWalk {
		t.Errorf("expected walk leg, got %s", legs[1].Kind)
	}
	if legs[1].WalkDuration != 5*time.Minute {
		t.Errorf("expected 5m walk, got %v", legs[1].WalkDuration)
	}
}

func TestPlanTrips_EmptyResultIsNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Trip": []}`))
	}))
	defer srv.Close()

	c := resrobot.NewWithBaseURL("k", srv.URL)
	_, err := c.PlanTrips(context.Background(), "a", "b", time.Now())
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestPlanTrips_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := resrobot.NewWithBaseURL("k", srv.URL)
	_, err := c.PlanTrips(context.Background(), "a", "b", time.Now())
	if !errors.Is(err, domain.ErrUpstreamRateLimited) {
		t.Errorf("expected ErrUpstreamRateLimited, got %v", err)
	}
}

func TestPlanTrips_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := resrobot.NewWithBaseURL("k", srv.URL)
	_, err := c.PlanTrips(context.Background(), "a", "b", time.Now())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestPlanTrips_CancelledLegMarkedInvalid(t *testing.T) {
	payload := `{"Trip":[{"LegList":{"Leg":[{
		"Origin":{"extId":"a","name":"A","date":"2026-03-09","time":"07:00:00"},
		"Destination":{"extId":"b","name":"B","date":"2026-03-09","time":"07:30:00"},
		"type":"JNY","cancelled":true,
		"Product":{"num":"43","catOutS":"JLT"}
	}]}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := resrobot.NewWithBaseURL("k", srv.URL)
	its, err := c.PlanTrips(context.Background(), "a", "b", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leg := its[0].Legs[0]
	if !leg.Cancelled || leg.Valid {
		t.Errorf("cancelled leg should be invalid, got cancelled=%v valid=%v", leg.Cancelled, leg.Valid)
	}
}
