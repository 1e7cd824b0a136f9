// Package vpn implements the server ranking and profile generation core.
// This file contains the servers.json summary index.
package vpn

import (
	"encoding/json"
	"os"

	"nordgen/common"
)

// ServerLoad is one (name, load) pair of a city's server list.
// It serializes as a two-element array: ["Germany #881", 12].
type ServerLoad struct {
	Name string
	Load int
}

// MarshalJSON renders the pair as a JSON array.
func (s ServerLoad) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Name, s.Load})
}

// CityIndex aggregates a city's servers and its distance from the user.
type CityIndex struct {
	// Distance is the whole-kilometer distance to the city, taken from
	// its best-ranked server.
	Distance int `json:"distance"`
	// Servers lists (name, load) pairs ordered by load ascending.
	Servers []ServerLoad `json:"servers"`
}

// Summary is the country -> city -> index aggregation of a ranked set.
type Summary map[string]map[string]*CityIndex

// BuildSummary aggregates ranked servers into the nested index.
// The input's (load, distance) ordering carries into each city's server
// list, so per-city entries come out sorted by load ascending.
func BuildSummary(ranked []Server) Summary {
	summary := make(Summary)

	for _, server := range ranked {
		cities, ok := summary[server.Country]
		if !ok {
			cities = make(map[string]*CityIndex)
			summary[server.Country] = cities
		}

		city, ok := cities[server.City]
		if !ok {
			city = &CityIndex{Distance: int(server.Distance)}
			cities[server.City] = city
		}

		city.Servers = append(city.Servers, ServerLoad{Name: server.Name, Load: server.Load})
	}

	return summary
}

// Encode serializes the summary deterministically: encoding/json sorts
// map keys, so country and city ordering is reproducible across runs.
func (s Summary) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Write persists the summary to path.
func (s Summary) Write(path string) error {
	data, err := s.Encode()
	if err != nil {
		return common.WrapError(common.ErrWrite, err.Error())
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return common.WrapError(common.ErrWrite, err.Error())
	}
	return nil
}
