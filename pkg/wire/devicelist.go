package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Device is one entry of a device listing. It is an immutable snapshot
// of what the server reported; the client does not track devices
// beyond it.
type Device struct {
	// UID is the device identifier used in connect commands.
	UID string

	// Name is the device's display name (e.g. "E4 2.1").
	Name string

	// Allowed reports whether the server permits connecting to the
	// device. Listings that omit the flag mean allowed.
	Allowed bool
}

// String returns a short human-readable description.
func (d Device) String() string {
	if d.Allowed {
		return fmt.Sprintf("%s (%s)", d.UID, d.Name)
	}
	return fmt.Sprintf("%s (%s, not allowed)", d.UID, d.Name)
}

// ParseDeviceList parses the payload of a device_list or
// device_discover_list query reply:
//
//	<NUMBER_OF_DEVICES> | <UID> <Name> [allowed] | ...
//
// The reply is part of a command outcome, so unlike Decode this is
// strict: a malformed payload is an error, not noise to ignore.
func ParseDeviceList(data string) ([]Device, error) {
	elems := strings.Split(data, "|")
	for i := range elems {
		elems[i] = strings.TrimSpace(elems[i])
	}

	count, err := strconv.Atoi(elems[0])
	if err != nil {
		return nil, fmt.Errorf("device list: bad device count %q", elems[0])
	}

	entries := elems[1:]
	if len(entries) != count {
		return nil, fmt.Errorf("device list: announced %d device(s), got %d", count, len(entries))
	}

	devices := make([]Device, 0, count)
	for _, entry := range entries {
		uid, rest := cutToken(entry)
		name, rest := cutToken(rest)
		if uid == "" || name == "" {
			return nil, fmt.Errorf("device list: malformed entry %q", entry)
		}

		allowed := true
		if rest != "" {
			allowed = rest == "allowed"
		}
		devices = append(devices, Device{UID: uid, Name: name, Allowed: allowed})
	}
	return devices, nil
}
