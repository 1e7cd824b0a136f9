// Package vpn implements the server ranking and profile generation core
// of nordgen.
//
// This package turns the raw NordVPN server listing into WireGuard
// connection profiles:
//
//   - Ranking: attaches distance and the WireGuard public key to every
//     usable server and orders the set by load, then distance
//   - Best-of selection: picks the minimum-load server per country/city
//   - Profile rendering: produces the [Interface]/[Peer] text consumed
//     by WireGuard clients, bit-exact
//   - Summary: aggregates the ranked set into the servers.json index
//
// # Data Flow
//
// A typical generation run:
//
//  1. nordapi fetches the raw listing and the user's coordinates
//  2. Rank() derives the ordered []Server, dropping keyless records
//  3. BestPerLocation() selects the per-city champions
//  4. Render()/Persist() materialize one .conf file per server
//  5. BuildSummary() serializes the ranked set to servers.json
//
// # Thread Safety
//
// Server values are immutable after Rank() returns; all functions here
// are pure except Persist, which touches the filesystem and is safe to
// call concurrently for distinct servers.
package vpn
