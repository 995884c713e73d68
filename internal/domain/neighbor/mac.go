package neighbor

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// MacAddressSize is the number of bytes in a hardware address.
const MacAddressSize = 6

// MacAddress is a 6-byte hardware address.
// The zero value is what the kernel reports for an unresolved entry.
type MacAddress [MacAddressSize]byte

// ParseMacAddress parses 6 colon-separated 2-digit hexadecimal groups.
func ParseMacAddress(s string) (MacAddress, error) {
	var (
		mac    MacAddress
		groups = strings.Split(s, ":")
	)

	for i := range MacAddressSize {
		if i >= len(groups) {
			return MacAddress{}, &ParseError{
				Kind:         MacAddressTooShort,
				MissingBytes: MacAddressSize - i,
			}
		}

		if len(groups[i]) != 2 {
			return MacAddress{}, &ParseError{
				Kind: InvalidMacByte,
				Err:  errMacByteWidth,
			}
		}

		value, err := strconv.ParseUint(groups[i], 16, 8)
		if err != nil {
			return MacAddress{}, &ParseError{
				Kind: InvalidMacByte,
				Err:  err,
			}
		}

		mac[i] = byte(value)
	}

	if extra := len(groups) - MacAddressSize; extra > 0 {
		return MacAddress{}, &ParseError{
			Kind:       MacAddressTooLong,
			ExtraBytes: extra,
		}
	}

	return mac, nil
}

// IsZero reports whether every byte is 0.
func (m MacAddress) IsZero() bool {
	return m == MacAddress{}
}

// String formats the address as lowercase colon-separated hex.
func (m MacAddress) String() string {
	var b strings.Builder

	b.Grow(MacAddressSize*3 - 1)

	for i, v := range m {
		if i > 0 {
			b.WriteByte(':')
		}

		b.WriteString(hex.EncodeToString([]byte{v}))
	}

	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (m MacAddress) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MacAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseMacAddress(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}
