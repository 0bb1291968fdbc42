// Package hid defines the fixed-layout HID input reports the keypad emits
// and the transport capability that carries them to the host.
package hid

import "encoding/binary"

// Report IDs in the combined report map.
const (
	ReportIDKeyboard = 0x01
	ReportIDConsumer = 0x02
	ReportIDMouse    = 0x03
)

// Report sizes in bytes, excluding the report ID.
const (
	KeyboardReportLen = 8
	ConsumerReportLen = 2
	MouseReportLen    = 4
)

// Transport is the HID link to the host. Sends made while the link is not
// connected or not ready are dropped by the caller, not queued.
type Transport interface {
	IsConnected() bool
	IsReady() bool
	SendKeyboardReport(modifiers, keycode uint8) error
	SendConsumerReport(usage uint16) error
	SendMouseReport(buttons uint8, dx, dy, wheel int8) error
}

// KeyboardReport builds the 8-byte boot keyboard report:
//
//	byte 0: modifier bitmap
//	byte 1: reserved
//	byte 2-7: key slots (only the first is used)
func KeyboardReport(modifiers, keycode uint8) []byte {
	return []byte{modifiers, 0, keycode, 0, 0, 0, 0, 0}
}

// ConsumerReport builds the 2-byte consumer control report, a single
// little-endian 16-bit usage. A zero usage releases the control.
func ConsumerReport(usage uint16) []byte {
	b := make([]byte, ConsumerReportLen)
	binary.LittleEndian.PutUint16(b, usage)
	return b
}

// MouseReport builds the 4-byte relative mouse report:
//
//	byte 0: button bitmap
//	byte 1: dx
//	byte 2: dy
//	byte 3: wheel
func MouseReport(buttons uint8, dx, dy, wheel int8) []byte {
	return []byte{buttons, byte(dx), byte(dy), byte(wheel)}
}
