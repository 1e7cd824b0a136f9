// Package vpn implements the server ranking and profile generation core.
// This file contains profile rendering, path sanitization, and the
// on-disk writer.
package vpn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nordgen/common"
	"nordgen/config"
)

// WireGuard peer constants shared by every generated profile.
const (
	// interfaceAddress is the fixed internal address of the tunnel.
	interfaceAddress = "10.5.0.2/16"
	// allowedIPs routes all traffic through the tunnel.
	allowedIPs = "0.0.0.0/0, ::/0"
	// wireGuardPort is the UDP port NordVPN servers listen on.
	wireGuardPort = 51820
)

// Render produces the profile text for one server. The format is a
// bit-exact contract consumed by third-party WireGuard clients.
func Render(privateKey string, server Server, cfg *config.Config) string {
	endpoint := server.Hostname
	if cfg.UseStationIP {
		endpoint = server.Station
	}

	return fmt.Sprintf(
		"[Interface]\nPrivateKey = %s\nAddress = %s\nDNS = %s\n\n"+
			"[Peer]\nPublicKey = %s\nAllowedIPs = %s\nEndpoint = %s:%d\nPersistentKeepalive = %d",
		privateKey, interfaceAddress, cfg.DNS,
		server.PublicKey, allowedIPs, endpoint, wireGuardPort, cfg.Keepalive,
	)
}

// Sanitize maps a display name to a filesystem-safe path segment:
// lower-case, every character outside [a-z0-9] becomes an underscore,
// underscore runs collapse to one, leading and trailing underscores are
// trimmed. Idempotent.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

// ProfilePath returns the destination path of a server's profile below dir.
func ProfilePath(dir string, server Server) string {
	return filepath.Join(dir,
		Sanitize(server.Country),
		Sanitize(server.City),
		Sanitize(server.Name)+".conf")
}

// Persist writes the rendered profile text below dir, creating all
// intermediate directories. Failures are reported, never retried, and
// must not abort sibling writes.
func Persist(dir string, server Server, text string) (string, error) {
	path := ProfilePath(dir, server)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", common.WrapError(common.ErrWrite, err.Error())
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", common.WrapError(common.ErrWrite, err.Error())
	}

	return path, nil
}
