// Package marketdata loads Agmarknet mandi price reports into an
// in-memory, read-only source for the decision engine. Data is loaded
// once at startup; concurrent reads need no synchronization.
package marketdata

import (
	"sort"

	"faircrop/agent"
)

// cropProfiles is the static crop metadata table.
var cropProfiles = map[string]agent.CropProfile{
	"Tomato": {
		Category:      "Vegetables",
		Perishability: "high",
		ShelfLifeDays: 5,
		Season:        "year-round",
		Unit:          "kg",
	},
}

// districtAliases maps Agmarknet spellings to the hub directory's names.
var districtAliases = map[string]string{
	"Palakad":            "Palakkad",
	"Thirssur":           "Thrissur",
	"Kozhikode(Calicut)": "Kozhikode",
	"Kasargod":           "Kasaragod",
}

// Source implements agent.PriceSource over preloaded records.
type Source struct {
	profiles map[string]agent.CropProfile
	records  map[string][]agent.PriceRecord
}

// New builds a Source from explicit data. Used by tests and by Load.
func New(profiles map[string]agent.CropProfile, records map[string][]agent.PriceRecord) *Source {
	return &Source{profiles: profiles, records: records}
}

// Profile returns the static metadata for a crop.
func (s *Source) Profile(crop string) (agent.CropProfile, bool) {
	p, ok := s.profiles[crop]
	return p, ok
}

// Records returns all price records for a crop. The slice is shared and
// must be treated as read-only.
func (s *Source) Records(crop string) []agent.PriceRecord {
	return s.records[crop]
}

// Crops returns the profiled crop names in sorted order.
func (s *Source) Crops() []string {
	out := make([]string, 0, len(s.profiles))
	for c := range s.profiles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
