package shipping

import "strings"

// Zone is the distance band between origin and destination
type Zone string

const (
	ZoneLocal    Zone = "local"
	ZoneZonal    Zone = "zonal"
	ZoneNational Zone = "national"
)

// IsValid checks if the zone is known
func (z Zone) IsValid() bool {
	switch z {
	case ZoneLocal, ZoneZonal, ZoneNational:
		return true
	}
	return false
}

// String returns the string representation of the zone
func (z Zone) String() string {
	return string(z)
}

// ResolveZone compares postal code prefixes: 3 shared leading characters is local,
// a shared first character (the postal zone digit) is zonal, anything else national.
// Carrier zones do not follow prefixes exactly.
func ResolveZone(originPin, destinationPin string) Zone {
	origin := strings.TrimSpace(originPin)
	dest := strings.TrimSpace(destinationPin)

	if samePrefix(origin, dest, 3) {
		return ZoneLocal
	}
	if samePrefix(origin, dest, 1) {
		return ZoneZonal
	}
	return ZoneNational
}

func samePrefix(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return a[:n] == b[:n]
}
