// Package vpn implements the server ranking and profile generation core.
// This file contains the Server type, the ranking pass, and the
// best-per-location selection.
package vpn

import (
	"sort"

	"nordgen/nordapi"
)

const (
	// UnknownCity is the sentinel used when a location carries no city.
	UnknownCity = "unknown"

	technologyWireGuard = "wireguard_udp"
	metadataPublicKey   = "public_key"
)

// Server is a ranked server: a raw record enriched with the computed
// distance and a validated public key. Never mutated after creation.
type Server struct {
	Name      string
	Hostname  string
	Station   string
	Load      int
	Country   string
	City      string
	Latitude  float64
	Longitude float64
	PublicKey string
	Distance  float64
}

// LocationKey identifies a (country, city) pair.
type LocationKey struct {
	Country string
	City    string
}

// Rank converts raw records into ranked servers ordered by
// (load, distance) ascending, both dominated by load. Records without a
// WireGuard public key or without any location are dropped; duplicate
// names keep only their first occurrence. The second return value is the
// number of dropped records, retained for diagnostics.
//
// Only a record's first listed location is consulted, even when a record
// lists several. This mirrors the provider's own client behavior.
func Rank(records []nordapi.ServerRecord, userLat, userLon float64) ([]Server, int) {
	ranked := make([]Server, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		record := &records[i]
		if len(record.Locations) == 0 {
			continue
		}

		key := publicKey(record)
		if key == "" {
			continue
		}

		if _, dup := seen[record.Name]; dup {
			continue
		}
		seen[record.Name] = struct{}{}

		loc := record.Locations[0]
		city := UnknownCity
		if loc.Country.City != nil {
			city = loc.Country.City.Name
		}

		ranked = append(ranked, Server{
			Name:      record.Name,
			Hostname:  record.Hostname,
			Station:   record.Station,
			Load:      record.LoadOrWorst(),
			Country:   loc.Country.Name,
			City:      city,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			PublicKey: key,
			Distance:  Distance(userLat, userLon, loc.Latitude, loc.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Load != ranked[j].Load {
			return ranked[i].Load < ranked[j].Load
		}
		return ranked[i].Distance < ranked[j].Distance
	})

	return ranked, len(records) - len(ranked)
}

// publicKey extracts the WireGuard public key from a record's
// technology metadata, or "" when the record has none.
func publicKey(record *nordapi.ServerRecord) string {
	for _, tech := range record.Technologies {
		if tech.Identifier != technologyWireGuard {
			continue
		}
		for _, meta := range tech.Metadata {
			if meta.Name == metadataPublicKey {
				return meta.Value
			}
		}
	}
	return ""
}

// BestPerLocation selects the minimum-load server for each distinct
// (country, city) pair. The champion is replaced only on a strictly
// lower load, so the first-seen server wins exact load ties.
func BestPerLocation(ranked []Server) map[LocationKey]Server {
	best := make(map[LocationKey]Server)
	for _, server := range ranked {
		key := LocationKey{Country: server.Country, City: server.City}
		current, exists := best[key]
		if !exists || server.Load < current.Load {
			best[key] = server
		}
	}
	return best
}
