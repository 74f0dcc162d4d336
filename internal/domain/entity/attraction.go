package entity

import "fmt"

// ExpectedSpotCount is the number of attractions a suggestion query must
// return. The provider-side function schema asks for exactly this many, and
// the client re-validates because upstream violations happen in practice.
const ExpectedSpotCount = 5

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Attraction is one tourist spot returned by the structured suggestion query.
// It is transient: returned to the caller directly, never persisted.
type Attraction struct {
	Name          string      `json:"name"`
	NameAr        string      `json:"nameAr"`
	Distance      string      `json:"distance"`
	WalkingTime   string      `json:"walkingTime"`
	Direction     string      `json:"direction"`
	Period        string      `json:"period,omitempty"`
	Description   string      `json:"description"`
	Rating        float64     `json:"rating"`
	Visitors      string      `json:"visitors,omitempty"`
	Coordinates   Coordinates `json:"coordinates"`
	GoogleMapsURL string      `json:"googleMapsUrl"`
	VisitDuration string      `json:"visitDuration"`
	Highlights    []string    `json:"highlights"`
	Tips          string      `json:"tips,omitempty"`
}

// Validate checks that every field the suggestion schema marks required is
// populated and in range.
func (a *Attraction) Validate() error {
	required := map[string]string{
		"name":          a.Name,
		"nameAr":        a.NameAr,
		"distance":      a.Distance,
		"walkingTime":   a.WalkingTime,
		"direction":     a.Direction,
		"description":   a.Description,
		"googleMapsUrl": a.GoogleMapsURL,
		"visitDuration": a.VisitDuration,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("attraction %q: missing required field %s", a.Name, field)
		}
	}
	if a.Rating < 0 || a.Rating > 5 {
		return fmt.Errorf("attraction %q: rating %.2f out of range [0,5]", a.Name, a.Rating)
	}
	if a.Coordinates.Lat < -90 || a.Coordinates.Lat > 90 {
		return fmt.Errorf("attraction %q: latitude %.6f out of range", a.Name, a.Coordinates.Lat)
	}
	if a.Coordinates.Lng < -180 || a.Coordinates.Lng > 180 {
		return fmt.Errorf("attraction %q: longitude %.6f out of range", a.Name, a.Coordinates.Lng)
	}
	if len(a.Highlights) == 0 {
		return fmt.Errorf("attraction %q: highlights must not be empty", a.Name)
	}
	return nil
}

// ValidateSpots enforces the suggestion contract on a full result set:
// exactly ExpectedSpotCount complete records.
func ValidateSpots(spots []Attraction) error {
	if len(spots) != ExpectedSpotCount {
		return fmt.Errorf("expected %d attractions, got %d", ExpectedSpotCount, len(spots))
	}
	for i := range spots {
		if err := spots[i].Validate(); err != nil {
			return fmt.Errorf("spot %d: %w", i, err)
		}
	}
	return nil
}
