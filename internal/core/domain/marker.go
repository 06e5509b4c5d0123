package domain

import (
	"time"
)

// Marker is a persisted record of a visited place on a user's map.
// Lat/Lon always hold the geocoding result of the current Place value;
// the two are never updated independently.
type Marker struct {
	ID        string    `json:"id"`
	Place     string    `json:"place"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Owner     string    `json:"owner"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location returns the marker coordinates as a GeoPoint.
func (m Marker) Location() GeoPoint {
	return GeoPoint{Lat: m.Lat, Lon: m.Lon}
}

// MarkerDraft is the input for creating a marker. The store assigns
// ID and timestamps.
type MarkerDraft struct {
	Place    string  `json:"place"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Owner    string  `json:"owner"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Validate checks the fields a store requires before accepting a draft.
func (d MarkerDraft) Validate() error {
	if d.Place == "" {
		return &ValidationError{Field: "place", Reason: "must not be empty"}
	}
	if d.Owner == "" {
		return &ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	return nil
}

// MarkerPatch is a partial update. Nil fields are left untouched.
// Place, Lat and Lon travel together: the orchestrator never submits a
// patch that changes Place without fresh coordinates.
type MarkerPatch struct {
	Place    *string  `json:"place,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	ImageURL *string  `json:"image_url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p MarkerPatch) Empty() bool {
	return p.Place == nil && p.Lat == nil && p.Lon == nil && p.ImageURL == nil
}
