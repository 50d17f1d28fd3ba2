package domain

import (
	"fmt"
	"time"
)

// LegKind distinguishes riding a line from walking between stops.
type LegKind string

const (
	LegTransit LegKind = "transit"
	LegWalk    LegKind = "walk"
)

// Leg is one segment of an itinerary: either a ride on a transit line or a
// walk between two stops.
type Leg struct {
	Kind LegKind `json:"kind"`
	From Stop    `json:"from"`
	To   Stop    `json:"to"`

	// Transit fields.
	Line            *Line      `json:"line,omitempty"`
	Platform        string     `json:"platform,omitempty"`
	PlannedDep      time.Time  `json:"planned_departure"`
	PlannedArr      time.Time  `json:"planned_arrival"`
	ExpectedDep     *time.Time `json:"expected_departure,omitempty"`
	ExpectedArr     *time.Time `json:"expected_arrival,omitempty"`
	Cancelled       bool       `json:"cancelled"`

	// Walk fields.
	WalkDuration time.Duration `json:"walk_duration,omitempty"`

	// Validation state, filled by the planner.
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Delay returns expected minus planned departure, clamped to zero when the
// realtime estimate is absent or early.
func (l Leg) Delay() time.Duration {
	if l.ExpectedDep == nil {
		return 0
	}
	d := l.ExpectedDep.Sub(l.PlannedDep)
	if d < 0 {
		return 0
	}
	return d
}

// DepartsAt returns the expected departure when known, otherwise planned.
func (l Leg) DepartsAt() time.Time {
	if l.ExpectedDep != nil {
		return *l.ExpectedDep
	}
	return l.PlannedDep
}

// ArrivesAt returns the expected arrival when known, otherwise planned.
func (l Leg) ArrivesAt() time.Time {
	if l.ExpectedArr != nil {
		return *l.ExpectedArr
	}
	return l.PlannedArr
}

// Itinerary is an ordered chain of legs from an origin to a destination.
// Adjacent legs share a stop: legs[i].To == legs[i+1].From.
type Itinerary struct {
	Legs []Leg `json:"legs"`
}

// Origin returns the first leg's origin stop.
func (it Itinerary) Origin() Stop {
	if len(it.Legs) == 0 {
		return Stop{}
	}
	return it.Legs[0].From
}

// Destination returns the last leg's destination stop.
func (it Itinerary) Destination() Stop {
	if len(it.Legs) == 0 {
		return Stop{}
	}
	return it.Legs[len(it.Legs)-1].To
}

// PlannedDeparture is the first leg's planned departure.
func (it Itinerary) PlannedDeparture() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[0].PlannedDep
}

// ExpectedDeparture is the first leg's expected-or-planned departure.
func (it Itinerary) ExpectedDeparture() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[0].DepartsAt()
}

// PlannedArrival is the last leg's planned arrival.
func (it Itinerary) PlannedArrival() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[len(it.Legs)-1].PlannedArr
}

// ExpectedArrival is the last leg's expected-or-planned arrival.
func (it Itinerary) ExpectedArrival() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[len(it.Legs)-1].ArrivesAt()
}

// Duration is expected-or-planned arrival minus expected-or-planned departure.
func (it Itinerary) Duration() time.Duration {
	if len(it.Legs) == 0 {
		return 0
	}
	return it.ExpectedArrival().Sub(it.ExpectedDeparture())
}

// TotalDelay is the maximum delay over all legs. A single disruption often
// shows up on several downstream legs, so summing would double-count it.
func (it Itinerary) TotalDelay() time.Duration {
	var max time.Duration
	for _, l := range it.Legs {
		if d := l.Delay(); d > max {
			max = d
		}
	}
	return max
}

// Cancelled reports whether any leg is cancelled.
func (it Itinerary) Cancelled() bool {
	for _, l := range it.Legs {
		if l.Cancelled {
			return true
		}
	}
	return false
}

// Validate checks the chain contiguity invariant.
func (it Itinerary) Validate() error {
	for i := 0; i+1 < len(it.Legs); i++ {
		if it.Legs[i].To.ID != it.Legs[i+1].From.ID {
			return fmt.Errorf("leg %d ends at %q but leg %d starts at %q",
				i, it.Legs[i].To.ID, i+1, it.Legs[i+1].From.ID)
		}
	}
	return nil
}
