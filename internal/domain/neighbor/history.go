package neighbor

import (
	"net/netip"
	"slices"
	"time"
)

// DefaultRetentionWindow is how long a binding is remembered without being observed again.
// A MAC change that happens after the old binding aged out is not reported.
const DefaultRetentionWindow = 300 * time.Second

// History stores, per host, the MAC bindings observed within the retention window.
// It is not safe for concurrent use: a single polling loop owns it.
type History struct {
	// hosts maps an IPv4 address to its bindings in insertion order.
	hosts map[netip.Addr][]Binding
	// retention is the maximum age a binding may reach before eviction.
	retention time.Duration
}

// NewHistory creates an empty store. A non-positive retention selects DefaultRetentionWindow.
func NewHistory(retention time.Duration) *History {
	if retention <= 0 {
		retention = DefaultRetentionWindow
	}

	return &History{
		hosts:     make(map[netip.Addr][]Binding),
		retention: retention,
	}
}

// SeedHistory builds a store holding one binding per record, observed at now.
// A host listed twice yields a DuplicateHostEntryError and no store.
func SeedHistory(records []Record, retention time.Duration, now time.Time) (*History, error) {
	h := NewHistory(retention)

	for _, record := range records {
		if _, ok := h.hosts[record.IP]; ok {
			return nil, &DuplicateHostEntryError{IP: record.IP}
		}

		h.hosts[record.IP] = []Binding{{MAC: record.MAC, LastSeen: now}}
	}

	return h, nil
}

// RetentionWindow returns the configured retention window.
func (h *History) RetentionWindow() time.Duration {
	return h.retention
}

// Len returns the number of tracked hosts.
func (h *History) Len() int {
	return len(h.hosts)
}

// Bindings returns a copy of the bindings tracked for ip.
func (h *History) Bindings(ip netip.Addr) []Binding {
	return slices.Clone(h.hosts[ip])
}

// Observe applies one fresh record to the store and returns the changes it reveals.
//
// Bindings whose age reached the retention window are dropped first. Every
// surviving non-zero binding with a different MAC yields a ChangeEvent; a
// binding with the same MAC is refreshed. Zero MAC bindings stand for
// unresolved entries and never yield events. When nothing matched, the
// observed MAC is appended as a new binding.
func (h *History) Observe(record Record, now time.Time) []ChangeEvent {
	existing, ok := h.hosts[record.IP]
	if !ok {
		h.hosts[record.IP] = []Binding{{MAC: record.MAC, LastSeen: now}}

		return nil
	}

	surviving := make([]Binding, 0, len(existing)+1)

	for _, binding := range existing {
		if binding.Age(now) < h.retention {
			surviving = append(surviving, binding)
		}
	}

	var (
		changes []ChangeEvent
		matched bool
	)

	for i := range surviving {
		binding := &surviving[i]

		if binding.MAC.IsZero() {
			// Unlike other bindings, a zero binding observed again as zero is
			// refreshed in place, not skipped with a second zero binding appended.
			// Events are the same either way; the store keeps one wildcard per host.
			if record.MAC.IsZero() {
				binding.LastSeen = now
				matched = true
			}

			continue
		}

		if binding.MAC == record.MAC {
			binding.LastSeen = now
			matched = true

			continue
		}

		changes = append(changes, ChangeEvent{
			Host:     record.IP,
			Previous: *binding,
			Current:  record.MAC,
		})
	}

	if !matched {
		surviving = append(surviving, Binding{MAC: record.MAC, LastSeen: now})
	}

	h.hosts[record.IP] = surviving

	return changes
}
