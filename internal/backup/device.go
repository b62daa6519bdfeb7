package backup

import (
	"github.com/lherron/prefstore/internal/wire"
)

// DeviceSpecificVersion is the format version of the device-specific
// section head. Bump it any time the head layout or data set changes.
const DeviceSpecificVersion = 1

// Identity is the pair of identifiers a device-specific payload is bound
// to. Restore requires an exact byte match on both.
type Identity struct {
	Manufacturer string
	Product      string
}

// AppendDeviceHeader writes the fixed head of a device-specific section:
// format version, then manufacturer and product as length-prefixed strings.
func AppendDeviceHeader(out []byte, id Identity) []byte {
	out = wire.AppendInt(out, DeviceSpecificVersion)
	out = wire.AppendString(out, id.Manufacturer, true)
	out = wire.AppendString(out, id.Product, true)
	return out
}
