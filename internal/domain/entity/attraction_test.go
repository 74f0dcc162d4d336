package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttraction() Attraction {
	return Attraction{
		Name:          "Bahia Palace",
		NameAr:        "قصر الباهية",
		Distance:      "1.2km",
		WalkingTime:   "15 min",
		Direction:     "East",
		Description:   "Nineteenth-century palace with ornate courtyards.",
		Rating:        4.6,
		Coordinates:   Coordinates{Lat: 31.6214, Lng: -7.9825},
		GoogleMapsURL: "https://maps.google.com/?q=31.6214,-7.9825",
		VisitDuration: "45-60 min",
		Highlights:    []string{"courtyards", "zellige tilework"},
	}
}

func TestAttractionValidate(t *testing.T) {
	a := validAttraction()
	require.NoError(t, a.Validate())

	tests := []struct {
		name   string
		mutate func(*Attraction)
	}{
		{"missing name", func(a *Attraction) { a.Name = "" }},
		{"missing arabic name", func(a *Attraction) { a.NameAr = "" }},
		{"missing distance", func(a *Attraction) { a.Distance = "" }},
		{"missing walking time", func(a *Attraction) { a.WalkingTime = "" }},
		{"missing direction", func(a *Attraction) { a.Direction = "" }},
		{"missing description", func(a *Attraction) { a.Description = "" }},
		{"missing maps url", func(a *Attraction) { a.GoogleMapsURL = "" }},
		{"missing visit duration", func(a *Attraction) { a.VisitDuration = "" }},
		{"rating above range", func(a *Attraction) { a.Rating = 5.1 }},
		{"rating below range", func(a *Attraction) { a.Rating = -0.1 }},
		{"latitude out of range", func(a *Attraction) { a.Coordinates.Lat = 95 }},
		{"longitude out of range", func(a *Attraction) { a.Coordinates.Lng = -200 }},
		{"no highlights", func(a *Attraction) { a.Highlights = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAttraction()
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}

	// Optional fields may stay empty.
	a = validAttraction()
	a.Period = ""
	a.Visitors = ""
	a.Tips = ""
	assert.NoError(t, a.Validate())
}

func TestValidateSpots(t *testing.T) {
	spots := make([]Attraction, 5)
	for i := range spots {
		spots[i] = validAttraction()
	}
	require.NoError(t, ValidateSpots(spots))

	assert.Error(t, ValidateSpots(spots[:4]))
	assert.Error(t, ValidateSpots(append(spots, validAttraction())))
	assert.Error(t, ValidateSpots(nil))

	spots[3].Rating = 9
	assert.Error(t, ValidateSpots(spots))
}
