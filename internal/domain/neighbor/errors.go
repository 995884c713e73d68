package neighbor

import (
	"errors"
	"fmt"
	"net/netip"
)

// ParseErrorKind enumerates the ways a neighbor table row can be malformed.
type ParseErrorKind uint8

const (
	// InvalidIPAddress means field 0 is not a dotted-quad IPv4 address.
	InvalidIPAddress ParseErrorKind = iota + 1
	// InvalidMacByte means one MAC group is not a 2-digit hexadecimal byte.
	InvalidMacByte
	// MacAddressTooShort means the MAC has fewer than 6 groups.
	MacAddressTooShort
	// MacAddressTooLong means the MAC has more than 6 groups.
	MacAddressTooLong
	// IncompleteRecord means the row has fewer than 6 fields.
	IncompleteRecord
)

var (
	// ErrInvalidIPAddress is matched by ParseError values of kind InvalidIPAddress.
	ErrInvalidIPAddress = errors.New("invalid IP address")
	// ErrInvalidMacByte is matched by ParseError values of kind InvalidMacByte.
	ErrInvalidMacByte = errors.New("invalid MAC address byte")
	// ErrMacAddressTooShort is matched by ParseError values of kind MacAddressTooShort.
	ErrMacAddressTooShort = errors.New("MAC address too short")
	// ErrMacAddressTooLong is matched by ParseError values of kind MacAddressTooLong.
	ErrMacAddressTooLong = errors.New("MAC address too long")
	// ErrIncompleteRecord is matched by ParseError values of kind IncompleteRecord.
	ErrIncompleteRecord = errors.New("incomplete neighbor record")
	// ErrDuplicateHostEntry is matched by DuplicateHostEntryError.
	ErrDuplicateHostEntry = errors.New("duplicate host entry")

	// errNotIPv4 is wrapped into InvalidIPAddress errors for well-formed non-IPv4 addresses.
	errNotIPv4 = errors.New("not an IPv4 address")
	// errMacByteWidth is wrapped into InvalidMacByte errors for groups that are not 2 digits wide.
	errMacByteWidth = errors.New("byte group must be 2 hexadecimal digits")
)

// String returns a short name of the kind.
func (k ParseErrorKind) String() string {
	switch k {
	case InvalidIPAddress:
		return "InvalidIpAddress"
	case InvalidMacByte:
		return "InvalidMacByte"
	case MacAddressTooShort:
		return "MacAddressTooShort"
	case MacAddressTooLong:
		return "MacAddressTooLong"
	case IncompleteRecord:
		return "IncompleteRecord"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", uint8(k))
	}
}

// sentinel maps a kind to the exported error it matches.
func (k ParseErrorKind) sentinel() error {
	switch k {
	case InvalidIPAddress:
		return ErrInvalidIPAddress
	case InvalidMacByte:
		return ErrInvalidMacByte
	case MacAddressTooShort:
		return ErrMacAddressTooShort
	case MacAddressTooLong:
		return ErrMacAddressTooLong
	case IncompleteRecord:
		return ErrIncompleteRecord
	default:
		return nil
	}
}

// ParseError describes why a single neighbor table row could not be parsed.
// Only the fields relevant to Kind are populated.
type ParseError struct {
	// Kind identifies the failure.
	Kind ParseErrorKind
	// MissingBytes is set for MacAddressTooShort.
	MissingBytes int
	// ExtraBytes is set for MacAddressTooLong.
	ExtraBytes int
	// Err is the underlying parse failure for InvalidIPAddress and InvalidMacByte.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	base := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		base = s.Error()
	}

	switch {
	case e.Kind == MacAddressTooShort:
		return fmt.Sprintf("%s: %d byte(s) missing", base, e.MissingBytes)
	case e.Kind == MacAddressTooLong:
		return fmt.Sprintf("%s: %d extra byte(s)", base, e.ExtraBytes)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", base, e.Err)
	default:
		return base
	}
}

// Unwrap exposes both the kind sentinel and the underlying failure,
// so errors.Is works against either of them.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// DuplicateHostEntryError is returned when one snapshot lists the same IP twice.
type DuplicateHostEntryError struct {
	// IP is the address that appeared more than once.
	IP netip.Addr
}

// Error implements the error interface.
func (e *DuplicateHostEntryError) Error() string {
	return fmt.Sprintf("%s: host %s has several entries in the neighbor table", ErrDuplicateHostEntry, e.IP)
}

// Unwrap returns ErrDuplicateHostEntry.
func (e *DuplicateHostEntryError) Unwrap() error {
	return ErrDuplicateHostEntry
}
