// Package nordapi provides a typed client for the NordVPN public API.
// This file contains the response shapes for the server listing.
package nordapi

// ServerRecord is one entry of the /v1/servers listing.
// Records are immutable once fetched.
type ServerRecord struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Station  string `json:"station"`
	// Load is nil when the API omits the field; treated as fully loaded.
	Load         *int         `json:"load"`
	Locations    []Location   `json:"locations"`
	Technologies []Technology `json:"technologies"`
}

// Location is one candidate placement of a server.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   Country `json:"country"`
}

// Country holds the country name and an optional city.
type Country struct {
	Name string `json:"name"`
	City *City  `json:"city"`
}

// City holds a city name.
type City struct {
	Name string `json:"name"`
}

// Technology describes one supported protocol with its metadata.
type Technology struct {
	Identifier string     `json:"identifier"`
	Metadata   []Metadata `json:"metadata"`
}

// Metadata is a key/value pair attached to a technology.
type Metadata struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadOrWorst returns the server load, treating a missing value as 100.
func (r *ServerRecord) LoadOrWorst() int {
	if r.Load == nil {
		return 100
	}
	return *r.Load
}
