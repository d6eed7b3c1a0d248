// Package domain defines attendance types and ports
package domain

// Status is one RSVP response class
type Status string

// Response classes. Anything that is not an exact Accepted, Declined, or
// Tentative response counts as no response
const (
	StatusAccepted   Status = "accepted"
	StatusDeclined   Status = "declined"
	StatusTentative  Status = "tentative"
	StatusNoResponse Status = "no_response"
)

// Classify maps a raw roster status cell to a Status
func Classify(raw string) Status {
	switch raw {
	case "Accepted":
		return StatusAccepted
	case "Declined":
		return StatusDeclined
	case "Tentative":
		return StatusTentative
	default:
		return StatusNoResponse
	}
}

// Record is one session date's attendance, four disjoint alias sets
type Record struct {
	Accepted   map[string]struct{}
	Declined   map[string]struct{}
	Tentative  map[string]struct{}
	NoResponse map[string]struct{}
}

// NewRecord returns an empty Record
func NewRecord() Record {
	return Record{
		Accepted:   map[string]struct{}{},
		Declined:   map[string]struct{}{},
		Tentative:  map[string]struct{}{},
		NoResponse: map[string]struct{}{},
	}
}

// Effective returns the attendance set the engine pairs on:
// accepted plus tentative plus no_response. Declines are out
func (r Record) Effective() map[string]struct{} {
	out := make(map[string]struct{}, len(r.Accepted)+len(r.Tentative)+len(r.NoResponse))
	for a := range r.Accepted {
		out[a] = struct{}{}
	}
	for a := range r.Tentative {
		out[a] = struct{}{}
	}
	for a := range r.NoResponse {
		out[a] = struct{}{}
	}
	return out
}

// Summary carries the four set sizes for operator display
type Summary struct {
	Accepted   int `json:"accepted"`
	Declined   int `json:"declined"`
	Tentative  int `json:"tentative"`
	NoResponse int `json:"no_response"`
}
