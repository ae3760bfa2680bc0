package stream

import (
	"strings"

	"watchtower/dashd/internal/topo"
)

// FindTopologyDeviceID maps a monitoring-system hostname or IP to a stable
// topology device id. Exact IP equality wins first; otherwise a device whose
// id appears (case-insensitively) as a substring of the hostname matches.
// Identities must be sorted by id; among substring matches the longest id
// wins, so "sw-10" beats "sw-1" for "sw-10.lan".
func FindTopologyDeviceID(hostname string, identities []topo.DeviceIdentity) (string, bool) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return "", false
	}

	for _, ident := range identities {
		if ident.IP != "" && ident.IP == hostname {
			return ident.ID, true
		}
	}

	lower := strings.ToLower(hostname)
	best := ""
	for _, ident := range identities {
		if ident.ID == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(ident.ID)) && len(ident.ID) > len(best) {
			best = ident.ID
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// MapSeverity normalizes the monitoring system's severity vocabulary.
func MapSeverity(raw string) topo.AlertSeverity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "alert":
		return topo.SeverityCritical
	case "warning", "warn":
		return topo.SeverityWarning
	case "ok", "recovery":
		return topo.SeverityRecovery
	default:
		return topo.SeverityInfo
	}
}
