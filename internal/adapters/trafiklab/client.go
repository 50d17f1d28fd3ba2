// Package trafiklab wraps the Trafiklab realtime-departures API.
package trafiklab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

const defaultBaseURL = "https://realtime-api.trafiklab.se/v1"

// Client fetches realtime departure boards by stop. Same contract as the
// trip planner: no retries, failures are terminal per request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a Trafiklab client.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// NewWithBaseURL creates a client against a non-default endpoint.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	return c
}

type boardResponse struct {
	Departures []boardDeparture `json:"departures"`
}

type boardDeparture struct {
	Scheduled string     `json:"scheduled"` // RFC 3339
	Realtime  string     `json:"realtime,omitempty"`
	Canceled  bool       `json:"canceled"`
	Direction string     `json:"direction"`
	Platform  *platform  `json:"realtime_platform,omitempty"`
	Route     boardRoute `json:"route"`
}

type platform struct {
	Designation string `json:"designation"`
}

type boardRoute struct {
	Designation   string `json:"designation"`
	Name          string `json:"name"`
	TransportMode string `json:"transport_mode"`
}

// Departures returns the realtime board for a stop at the given time.
func (c *Client) Departures(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
	reqURL := fmt.Sprintf("%s/departures/%s/%s?key=%s",
		c.baseURL, stopID, at.Format("2006-01-02T15:04"), c.apiKey)

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
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoRouteFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var br boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}

	departures := make([]domain.Departure, 0, len(br.Departures))
	for _, d := range br.Departures {
		dep, err := convertDeparture(d)
		if err != nil {
			continue
		}
		departures = append(departures, dep)
	}
	return departures, nil
}

func convertDeparture(d boardDeparture) (domain.Departure, error) {
	planned, err := time.Parse(time.RFC3339, d.Scheduled)
	if err != nil {
		return domain.Departure{}, fmt.Errorf("parse scheduled %q: %w", d.Scheduled, err)
	}

	out := domain.Departure{
		Line: domain.Line{
			Designation: d.Route.Designation,
			Name:        d.Route.Name,
			Mode:        modeFor(d.Route.TransportMode),
		},
		Direction: d.Direction,
		Planned:   planned,
		Cancelled: d.Canceled,
	}
	if d.Realtime != "" {
		if t, err := time.Parse(time.RFC3339, d.Realtime); err == nil {
			out.Expected = &t
		}
	}
	if d.Platform != nil {
		out.Platform = d.Platform.Designation
	}
	return out, nil
}

func modeFor(mode string) domain.TransportMode {
	switch mode {
	case "METRO":
		return domain.ModeMetro
	case "TRAIN", "RAIL":
		return domain.ModeRail
	case "BUS":
		return domain.ModeBus
	case "TRAM":
		return domain.ModeTram
	case "FERRY", "SHIP":
		return domain.ModeFerry
	default:
		return domain.ModeOther
	}
}
