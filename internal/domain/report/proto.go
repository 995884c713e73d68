package report

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
)

// Keys of the protobuf Struct encoding.
const (
	keyTimestamp    = "timestamp"
	keyObserver     = "observer"
	keyLevel        = "level"
	keyError        = "error"
	keyChanges      = "changes"
	keyHost         = "host"
	keyPreviousMAC  = "previous_mac"
	keyPreviousSeen = "previous_last_seen"
	keyCurrentMAC   = "current_mac"
)

// errMalformedChange is returned when a change entry is not a Struct.
var errMalformedChange = errors.New("malformed change entry")

// ToProto encodes the report as a protobuf Struct.
func (r *Report) ToProto() (*structpb.Struct, error) {
	changes := make([]any, 0, len(r.Changes))
	for _, change := range r.Changes {
		changes = append(changes, map[string]any{
			keyHost:         change.Host.String(),
			keyPreviousMAC:  change.Previous.MAC.String(),
			keyPreviousSeen: change.Previous.LastSeen.Format(time.RFC3339Nano),
			keyCurrentMAC:   change.Current.String(),
		})
	}

	value, err := structpb.NewStruct(map[string]any{
		keyTimestamp: r.Timestamp.Format(time.RFC3339Nano),
		keyObserver:  r.Observer,
		keyLevel:     string(r.Level),
		keyError:     r.Error,
		keyChanges:   changes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	return value, nil
}

// FromProto decodes a report produced by ToProto.
func FromProto(value *structpb.Struct) (*Report, error) {
	fields := value.GetFields()

	timestamp, err := parseTime(fields[keyTimestamp].GetStringValue())
	if err != nil {
		return nil, err
	}

	r := &Report{
		Timestamp: timestamp,
		Observer:  fields[keyObserver].GetStringValue(),
		Level:     Level(fields[keyLevel].GetStringValue()),
		Error:     fields[keyError].GetStringValue(),
	}

	for _, item := range fields[keyChanges].GetListValue().GetValues() {
		change, err := changeFromProto(item.GetStructValue())
		if err != nil {
			return nil, err
		}

		r.Changes = append(r.Changes, change)
	}

	return r, nil
}

// changeFromProto decodes a single change entry.
func changeFromProto(value *structpb.Struct) (neighbor.ChangeEvent, error) {
	if value == nil {
		return neighbor.ChangeEvent{}, errMalformedChange
	}

	fields := value.GetFields()

	host, err := netip.ParseAddr(fields[keyHost].GetStringValue())
	if err != nil {
		return neighbor.ChangeEvent{}, fmt.Errorf("decode change host: %w", err)
	}

	previous, err := neighbor.ParseMacAddress(fields[keyPreviousMAC].GetStringValue())
	if err != nil {
		return neighbor.ChangeEvent{}, fmt.Errorf("decode previous MAC: %w", err)
	}

	current, err := neighbor.ParseMacAddress(fields[keyCurrentMAC].GetStringValue())
	if err != nil {
		return neighbor.ChangeEvent{}, fmt.Errorf("decode current MAC: %w", err)
	}

	lastSeen, err := parseTime(fields[keyPreviousSeen].GetStringValue())
	if err != nil {
		return neighbor.ChangeEvent{}, err
	}

	return neighbor.ChangeEvent{
		Host:     host,
		Previous: neighbor.Binding{MAC: previous, LastSeen: lastSeen},
		Current:  current,
	}, nil
}

// parseTime decodes an RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp: %w", err)
	}

	return t, nil
}
