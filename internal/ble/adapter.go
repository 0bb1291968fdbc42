// Package ble exposes the keypad as a BLE peripheral. A HID-over-GATT
// service carries keyboard, consumer and mouse reports, and a config
// service carries the JSON control protocol over a write/notify pair.
package ble

import "fmt"

// Config service UUIDs.
const (
	ConfigServiceUUID = "4fafc201-1fb5-459e-8fcc-c5c9c331914b"
	CmdCharUUID       = "4fafc201-1fb5-459e-8fcc-c5c9c331914c"
	EvtCharUUID       = "4fafc201-1fb5-459e-8fcc-c5c9c331914d"
	BulkCharUUID      = "4fafc201-1fb5-459e-8fcc-c5c9c331914e"
)

// Assigned numbers for the standard services.
const (
	UUIDHIDService         uint16 = 0x1812
	UUIDHIDReport          uint16 = 0x2A4D
	UUIDHIDReportMap       uint16 = 0x2A4B
	UUIDHIDInformation     uint16 = 0x2A4A
	UUIDHIDControlPoint    uint16 = 0x2A4C
	UUIDHIDProtocolMode    uint16 = 0x2A4E
	UUIDBatteryService     uint16 = 0x180F
	UUIDBatteryLevel       uint16 = 0x2A19
	UUIDDeviceInfoService  uint16 = 0x180A
	UUIDManufacturerName   uint16 = 0x2A29
	UUIDFirmwareRevision   uint16 = 0x2A26
	UUIDHardwareRevision   uint16 = 0x2A27
	UUIDAppearanceKeyboard uint16 = 0x03C1
)

// UUID16 expands an assigned 16-bit number onto the Bluetooth base UUID.
func UUID16(n uint16) string {
	return fmt.Sprintf("0000%04x-0000-1000-8000-00805f9b34fb", n)
}

// Characteristic is a local GATT characteristic.
type Characteristic interface {
	// Notify updates the value and notifies subscribed centrals.
	Notify(data []byte) error
}

// CharacteristicSpec describes one characteristic of a service being
// registered.
type CharacteristicSpec struct {
	UUID            string
	Value           []byte
	Read            bool
	Write           bool
	WriteNoResponse bool
	Notify          bool
	// OnWrite receives a copy of every value written by a central.
	OnWrite func(data []byte)
}

// Peripheral abstracts the local BLE adapter in peripheral role.
type Peripheral interface {
	// Enable powers on the adapter.
	Enable() error
	// AddService registers a primary service. The returned characteristics
	// are in the same order as chars.
	AddService(uuid string, chars []CharacteristicSpec) ([]Characteristic, error)
	// Advertise starts connectable advertising.
	Advertise(name string, serviceUUIDs []string) error
	// OnConnect registers the callback for central connect and disconnect.
	OnConnect(cb func(connected bool))
}
