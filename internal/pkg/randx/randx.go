/*
Package randx provides functions for generating and checking random identifiers.

It is primarily used to generate device identifiers for installations that do not
supply their own, and to validate the shape of client-supplied ones.
*/
package randx

import (
	"github.com/google/uuid"
)

const (
	// DeviceIDMaxLength is the maximum accepted length of a device identifier.
	DeviceIDMaxLength = 64
)

// DeviceID generates a standard UUID v4 string to serve as a device identifier.
func DeviceID() string {
	return uuid.New().String()
}

// IsValidDeviceID checks if the given string is an acceptable device identifier.
// Identifiers are opaque, but must be 1-64 characters drawn from [A-Za-z0-9_-].
func IsValidDeviceID(id string) bool {
	if len(id) == 0 || len(id) > DeviceIDMaxLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}

	return true
}
