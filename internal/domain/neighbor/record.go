package neighbor

import (
	"net/netip"
	"strings"
)

// Field positions of a neighbor table row:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         44:ce:7d:60:66:98     *        wlan0
const (
	fieldIPAddress = iota
	fieldHWType
	fieldFlags
	fieldHWAddress
	fieldMask
	fieldDevice

	recordFieldCount
)

// Record is one parsed row of the neighbor table.
type Record struct {
	// IP is the IPv4 address of the neighbor.
	IP netip.Addr
	// MAC is the hardware address the kernel resolved for IP.
	MAC MacAddress
	// Interface is the network device the entry belongs to.
	Interface string
}

// ParseRecord parses one whitespace-separated neighbor table row.
// The HW type, flags and mask columns are ignored.
func ParseRecord(line string) (Record, error) {
	var (
		record Record
		fields = strings.Fields(line)
	)

	if len(fields) > fieldIPAddress {
		ip, err := parseIPv4(fields[fieldIPAddress])
		if err != nil {
			return Record{}, err
		}

		record.IP = ip
	}

	if len(fields) > fieldHWAddress {
		mac, err := ParseMacAddress(fields[fieldHWAddress])
		if err != nil {
			return Record{}, err
		}

		record.MAC = mac
	}

	if len(fields) < recordFieldCount {
		return Record{}, &ParseError{Kind: IncompleteRecord}
	}

	record.Interface = fields[fieldDevice]

	return record, nil
}

// parseIPv4 accepts dotted-quad IPv4 addresses only.
func parseIPv4(s string) (netip.Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, &ParseError{
			Kind: InvalidIPAddress,
			Err:  err,
		}
	}

	if !ip.Is4() {
		return netip.Addr{}, &ParseError{
			Kind: InvalidIPAddress,
			Err:  errNotIPv4,
		}
	}

	return ip, nil
}
