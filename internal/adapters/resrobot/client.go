// Package resrobot wraps the ResRobot v2.1 trip-planning API.
package resrobot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

const defaultBaseURL = "https://api.resrobot.se/v2.1"

// Client calls the ResRobot trip-search endpoint. There is no retry
// policy: a failed request is terminal and the caller re-triggers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a ResRobot client.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// NewWithBaseURL creates a client against a non-default endpoint, used in
// tests and for proxy setups.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	return c
}

// tripResponse mirrors the nested ResRobot payload.
type tripResponse struct {
	Trip []trip `json:"Trip"`
}

type trip struct {
	LegList legList `json:"LegList"`
}

type legList struct {
	Leg []leg `json:"Leg"`
}

type leg struct {
	Origin      legPoint `json:"Origin"`
	Destination legPoint `json:"Destination"`
	Type        string   `json:"type"` // "JNY" or "WALK"
	Name        string   `json:"name"`
	Cancelled   bool     `json:"cancelled"`
	Duration    string   `json:"duration,omitempty"`
	Product     *product `json:"Product,omitempty"`
}

type legPoint struct {
	ExtID  string  `json:"extId"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Track  string  `json:"track,omitempty"`
	Date   string  `json:"date"`   // planned, "2006-01-02"
	Time   string  `json:"time"`   // planned, "15:04:05"
	RtDate string  `json:"rtDate"` // realtime, may be empty
	RtTime string  `json:"rtTime"`
}

type product struct {
	Num          string `json:"num"`
	Line         string `json:"line"`
	CatOutS      string `json:"catOutS"` // e.g. "JLT", "BLT", "ULT"
	Name         string `json:"name"`
	OperatorInfo string `json:"operator,omitempty"`
}

// PlanTrips returns itinerary candidates for a stop pair. Empty upstream
// results map to domain.ErrNoRouteFound, quota errors to
// domain.ErrUpstreamRateLimited, anything else to
// domain.ErrUpstreamUnavailable.
func (c *Client) PlanTrips(ctx context.Context, fromStopID, toStopID string, depart time.Time) ([]domain.Itinerary, error) {
	q := url.Values{}
	q.Set("originExtId", fromStopID)
	q.Set("destExtId", toStopID)
	q.Set("date", depart.Format("2006-01-02"))
	q.Set("time", depart.Format("15:04"))
	q.Set("format", "json")
	q.Set("accessId", c.apiKey)

	reqURL := c.baseURL + "/trip?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrUpstreamRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var tr tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(tr.Trip) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	itineraries := make([]domain.Itinerary, 0, len(tr.Trip))
	for _, t := range tr.Trip {
		it := domain.Itinerary{}
		for _, l := range t.LegList.Leg {
			it.Legs = append(it.Legs, convertLeg(l))
		}
		if len(it.Legs) > 0 {
			itineraries = append(itineraries, it)
		}
	}
	if len(itineraries) == 0 {
		return nil, domain.ErrNoRouteFound
	}
	return itineraries, nil
}

func convertLeg(l leg) domain.Leg {
	out := domain.Leg{
		Kind: domain.LegTransit,
		From: domain.Stop{
			StopID:       l.Origin.ExtID,
			Name:         l.Origin.Name,
			Location:     domain.GeoPoint{Lat: l.Origin.Lat, Lon: l.Origin.Lon},
			PlatformCode: l.Origin.Track,
		},
		To: domain.Stop{
			StopID:       l.Destination.ExtID,
			Name:         l.Destination.Name,
			Location:     domain.GeoPoint{Lat: l.Destination.Lat, Lon: l.Destination.Lon},
			PlatformCode: l.Destination.Track,
		},
		Platform:  l.Origin.Track,
		Cancelled: l.Cancelled,
		Valid:     !l.Cancelled,
	}

	out.PlannedDep = parseTimestamp(l.Origin.Date, l.Origin.Time)
	out.PlannedArr = parseTimestamp(l.Destination.Date, l.Destination.Time)
	if t := parseTimestamp(l.Origin.RtDate, l.Origin.RtTime); !t.IsZero() {
		out.ExpectedDep = &t
	}
	if t := parseTimestamp(l.Destination.RtDate, l.Destination.RtTime); !t.IsZero() {
		out.ExpectedArr = &t
	}

	if l.Type == "WALK" {
		out.Kind = domain.LegWalk
		out.WalkDuration = out.PlannedArr.Sub(out.PlannedDep)
		return out
	}

	if l.Product != nil {
		out.Line = &domain.Line{
			Designation: l.Product.Num,
			Mode:        modeForCategory(l.Product.CatOutS),
			Name:        l.Product.Name,
		}
	}
	return out
}

// parseTimestamp combines ResRobot's split date and time fields. Either
// part missing yields the zero time.
func parseTimestamp(date, clock string) time.Time {
	if date == "" || clock == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// modeForCategory maps ResRobot product categories onto transport modes.
func modeForCategory(cat string) domain.TransportMode {
	switch cat {
	case "JLT", "JRE", "JIC", "JPT", "JEX":
		return domain.ModeRail
	case "ULT":
		return domain.ModeMetro
	case "SLT":
		return domain.ModeTram
	case "BLT", "BRE", "BAX":
		return domain.ModeBus
	case "FLT":
		return domain.ModeFerry
	default:
		return domain.ModeOther
	}
}
