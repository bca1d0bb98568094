// Package fingerprint generates stable identifiers for host findings so the
// same plugin result on the same host and port deduplicates across scans.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Input contains the data needed to fingerprint a host finding.
type Input struct {
	Host     string // ReportHost name (address or hostname)
	Port     uint   // Port number, 0 for host-level findings
	Protocol string // tcp, udp, icmp
	PluginID int    // Nessus plugin id
}

// Generate returns a SHA256 hash (64 hex characters) of the normalized input.
// Service names are excluded so a renamed service keeps its fingerprint.
func Generate(input Input) string {
	data := fmt.Sprintf("host:%s:%d:%s:%d",
		normalizeHost(input.Host),
		input.Port,
		normalize(input.Protocol),
		input.PluginID,
	)
	return Hash(data)
}

// Hash returns the hex SHA256 of s.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeHost lowercases and strips a trailing root dot from FQDNs.
func normalizeHost(host string) string {
	host = normalize(host)
	return strings.TrimSuffix(host, ".")
}
