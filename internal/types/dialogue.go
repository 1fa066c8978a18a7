package types

import "encoding/json"

// Dialogue stages. The zero value (empty string) means "no conversation yet"
// and triggers the greeting turn.
const (
	StageNone              = ""
	StageAwaitingLocations = "awaiting_locations"
	StageAwaitingCategory  = "awaiting_category"
	StageAwaitingDate      = "awaiting_date"
	StageCompleted         = "completed"
)

// Awaiting values returned to the client. Empty means the dialogue finished.
const (
	AwaitingLocations = "locations"
	AwaitingCategory  = "category"
	AwaitingDate      = "date"
)

// ConversationContext is the caller-echoed dialogue state. The server keeps no
// session store: the full context travels with every request and response, so
// every stage re-validates the fields it depends on before acting.
type ConversationContext struct {
	Stage      string   `json:"stage"`
	Locations  []string `json:"locations"`
	Category   string   `json:"category"`
	TravelDate string   `json:"travel_date,omitempty"`
}

// FreshContext returns the context handed out with the greeting turn.
func FreshContext() ConversationContext {
	return ConversationContext{
		Stage:     StageAwaitingLocations,
		Locations: []string{},
		Category:  "",
	}
}

// TurnRequest is the body of POST /api/v1/itinerary/turn.
type TurnRequest struct {
	Prompt  string               `json:"prompt"`
	Context *ConversationContext `json:"context,omitempty"`
}

// TurnResponse is the single response shape of the turn endpoint. Domain-level
// problems (unmatched input, missing keys) are always reported inside this
// shape with a guiding message, never as a transport-level error.
type TurnResponse struct {
	Response     string              `json:"response"`
	Awaiting     *string             `json:"awaiting"`
	Context      ConversationContext `json:"context"`
	RouteGeoJSON json.RawMessage     `json:"route_geojson,omitempty"`
	Locations    []SubPlace          `json:"locations,omitempty"`
}

// ItineraryResult is what the assembler produces on the terminal stage.
type ItineraryResult struct {
	Summary      string          // human-readable itinerary text
	RouteGeoJSON json.RawMessage // nil when no route is available
	Locations    []SubPlace      // structured sub-place list, coordinate-carrying
}
