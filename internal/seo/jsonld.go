// Package seo renders schema.org JSON-LD nodes for event pages.
package seo

import (
	"time"

	"showcal/internal/eastern"
	"showcal/internal/model"
)

// EventNode builds a schema.org Event node for embedding as JSON-LD. Dates
// are rendered in Eastern time with an explicit offset so crawlers see the
// local wall-clock time attendees are told.
func EventNode(ev model.Event, venue *model.Venue, city *model.City, baseURL string) map[string]any {
	node := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "Event",
		"name":                ev.Title,
		"startDate":           eastern.Format(ev.StartAt, time.RFC3339),
		"endDate":             eastern.Format(ev.EndAt, time.RFC3339),
		"eventStatus":         "https://schema.org/EventScheduled",
		"eventAttendanceMode": "https://schema.org/OfflineEventAttendanceMode",
		"url":                 baseURL + "/events/" + ev.Slug,
	}
	if ev.Description != "" {
		node["description"] = ev.Description
	}

	place := map[string]any{"@type": "Place"}
	switch {
	case venue != nil:
		place["name"] = venue.Name
		address := map[string]any{
			"@type":         "PostalAddress",
			"streetAddress": venue.Address,
		}
		if city != nil {
			address["addressLocality"] = city.Name
			address["addressRegion"] = city.State
		}
		place["address"] = address
		if venue.Lat != nil && venue.Lng != nil {
			place["geo"] = map[string]any{
				"@type":     "GeoCoordinates",
				"latitude":  *venue.Lat,
				"longitude": *venue.Lng,
			}
		}
	case city != nil:
		place["name"] = city.Name
		place["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": city.Name,
			"addressRegion":   city.State,
		}
	}
	node["location"] = place

	return node
}
