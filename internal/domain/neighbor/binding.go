package neighbor

import (
	"fmt"
	"net/netip"
	"time"
)

// Binding is one remembered MAC address of a host and when it was last observed.
type Binding struct {
	// MAC is the remembered hardware address.
	MAC MacAddress
	// LastSeen is the last time MAC was observed for the host.
	LastSeen time.Time
}

// Age returns how long ago the binding was last observed.
func (b Binding) Age(now time.Time) time.Duration {
	return now.Sub(b.LastSeen)
}

// ChangeEvent reports that a host answered with a different MAC address
// than one still remembered within the retention window.
type ChangeEvent struct {
	// Host is the IPv4 address whose hardware address changed.
	Host netip.Addr
	// Previous is the remembered binding that differs from Current.
	Previous Binding
	// Current is the MAC address observed in the latest snapshot.
	Current MacAddress
}

// Describe renders the event as a single human readable line.
func (e ChangeEvent) Describe(now time.Time) string {
	return fmt.Sprintf(
		"Host %s has changed from %s to %s in %ds",
		e.Host,
		e.Previous.MAC,
		e.Current,
		int64(e.Previous.Age(now)/time.Second),
	)
}
