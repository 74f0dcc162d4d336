package openai

const touristSpotsToolName = "get_top_tourist_spots"

// touristSpotsTool is the function schema constraining the suggestion query.
// The model is forced onto this tool via tool_choice; the required list below
// is the contract entity.ValidateSpots re-checks after decoding.
func touristSpotsTool() Tool {
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        touristSpotsToolName,
			Description: "Returns the top 5 tourist attractions near the given location with detailed metadata.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"spots": map[string]interface{}{
						"type":        "array",
						"description": "List of top tourist attractions.",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name": map[string]interface{}{
									"type":        "string",
									"description": "The name of the tourist attraction in local and English.",
								},
								"nameAr": map[string]interface{}{
									"type":        "string",
									"description": "The Arabic name of the tourist attraction.",
								},
								"distance": map[string]interface{}{
									"type":        "string",
									"description": "Distance from user's location (e.g., '150m', '2.5km').",
								},
								"walkingTime": map[string]interface{}{
									"type":        "string",
									"description": "Estimated walking time (e.g., '2 min', '15 min').",
								},
								"direction": map[string]interface{}{
									"type":        "string",
									"description": "Direction from user's location (e.g., 'Northeast', 'South').",
								},
								"period": map[string]interface{}{
									"type":        "string",
									"description": "Historical period or construction date.",
								},
								"description": map[string]interface{}{
									"type":        "string",
									"description": "Brief description of the tourist attraction.",
								},
								"rating": map[string]interface{}{
									"type":        "number",
									"description": "Rating out of 5.0.",
								},
								"visitors": map[string]interface{}{
									"type":        "string",
									"description": "Current visitor count (e.g., '2.3k today').",
								},
								"coordinates": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"lat": map[string]interface{}{"type": "number"},
										"lng": map[string]interface{}{"type": "number"},
									},
									"required": []string{"lat", "lng"},
								},
								"googleMapsUrl": map[string]interface{}{
									"type":        "string",
									"description": "Google Maps URL for the location.",
								},
								"visitDuration": map[string]interface{}{
									"type":        "string",
									"description": "Recommended visit duration (e.g., '15-20 min').",
								},
								"highlights": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "string"},
									"description": "Key highlights or features.",
								},
								"tips": map[string]interface{}{
									"type":        "string",
									"description": "Visitor tips or recommendations.",
								},
							},
							"required": []string{
								"name", "nameAr", "distance", "walkingTime", "direction",
								"description", "rating", "coordinates", "googleMapsUrl",
								"visitDuration", "highlights",
							},
						},
					},
				},
				"required": []string{"spots"},
			},
		},
	}
}
