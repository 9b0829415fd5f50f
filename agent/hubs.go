package agent

import "sort"

// Hub is a district logistics point used for delivery distance estimates.
type Hub struct {
	Name     string     `json:"hub"`
	District string     `json:"district"`
	Coord    Coordinate `json:"coord"`
}

// hubs maps each of the 14 Kerala districts to its logistics hub.
var hubs = map[string]Hub{
	"Thiruvananthapuram": {Name: "Thiruvananthapuram Central Hub", District: "Thiruvananthapuram", Coord: Coordinate{Lat: 8.5241, Lon: 76.9366}},
	"Kollam":             {Name: "Kollam District Hub", District: "Kollam", Coord: Coordinate{Lat: 8.8932, Lon: 76.6141}},
	"Pathanamthitta":     {Name: "Pathanamthitta District Hub", District: "Pathanamthitta", Coord: Coordinate{Lat: 9.2648, Lon: 76.7870}},
	"Alappuzha":          {Name: "Alappuzha District Hub", District: "Alappuzha", Coord: Coordinate{Lat: 9.4981, Lon: 76.3388}},
	"Kottayam":           {Name: "Kottayam District Hub", District: "Kottayam", Coord: Coordinate{Lat: 9.5916, Lon: 76.5222}},
	"Idukki":             {Name: "Idukki District Hub", District: "Idukki", Coord: Coordinate{Lat: 9.8894, Lon: 76.9720}},
	"Ernakulam":          {Name: "Ernakulam Central Hub", District: "Ernakulam", Coord: Coordinate{Lat: 9.9816, Lon: 76.2999}},
	"Thrissur":           {Name: "Thrissur District Hub", District: "Thrissur", Coord: Coordinate{Lat: 10.5276, Lon: 76.2144}},
	"Palakkad":           {Name: "Palakkad District Hub", District: "Palakkad", Coord: Coordinate{Lat: 10.7867, Lon: 76.6548}},
	"Malappuram":         {Name: "Malappuram District Hub", District: "Malappuram", Coord: Coordinate{Lat: 11.0510, Lon: 76.0711}},
	"Kozhikode":          {Name: "Kozhikode District Hub", District: "Kozhikode", Coord: Coordinate{Lat: 11.2588, Lon: 75.7804}},
	"Wayanad":            {Name: "Wayanad District Hub", District: "Wayanad", Coord: Coordinate{Lat: 11.6854, Lon: 76.1320}},
	"Kannur":             {Name: "Kannur District Hub", District: "Kannur", Coord: Coordinate{Lat: 11.8745, Lon: 75.3704}},
	"Kasaragod":          {Name: "Kasaragod District Hub", District: "Kasaragod", Coord: Coordinate{Lat: 12.4996, Lon: 74.9869}},
}

// DefaultHub handles districts not in the table. Ernakulam sits roughly at
// the centre of the state, so unrecognized districts get an approximate
// delivery cost rather than a failed request.
var DefaultHub = hubs["Ernakulam"]

// ResolveHub returns the logistics hub for a district. Unknown districts
// resolve to DefaultHub; lookup never fails.
func ResolveHub(district string) Hub {
	if h, ok := hubs[district]; ok {
		return h
	}
	return DefaultHub
}

// Districts returns the known district names in sorted order.
func Districts() []string {
	out := make([]string, 0, len(hubs))
	for d := range hubs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
