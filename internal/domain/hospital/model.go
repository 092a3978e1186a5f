package hospital

import "github.com/firstaid/firstaid/internal/platform/places"

// Hospital is one entry of the nearby-hospitals response.
type Hospital struct {
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	Rating   *float64        `json:"rating"`
	Location places.Location `json:"location"`
}

// FromPlaces converts search results, dropping places with no coordinates.
// The result is never nil.
func FromPlaces(ps []places.Place) []Hospital {
	out := make([]Hospital, 0, len(ps))
	for i := range ps {
		loc := ps[i].Location()
		if loc == nil {
			continue
		}
		out = append(out, Hospital{
			Name:     ps[i].Name,
			Address:  ps[i].Vicinity,
			Rating:   ps[i].Rating,
			Location: *loc,
		})
	}
	return out
}
