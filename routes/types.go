package routes

// Stop is a named, geolocated boarding point on one line.
type Stop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Line      string  `json:"line"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Route is one line with its display color, pattern geometry and stops.
type Route struct {
	Line    string       `json:"line"`
	Color   string       `json:"color"`
	Pattern [][2]float64 `json:"pattern"` // ordered [lon,lat] points
	Stops   []Stop       `json:"stops"`
}

// dataset mirrors the on-disk shape produced by the offline generator.
type dataset struct {
	Routes []datasetRoute `json:"routes"`
}

type datasetRoute struct {
	Line    string         `json:"line"`
	Color   string         `json:"color"`
	Pattern [][2]float64   `json:"pattern"`
	Stops   []datasetStop  `json:"stops"`
}

type datasetStop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
}
