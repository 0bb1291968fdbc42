//go:build !linux

package ble

import "errors"

// ErrPeripheralUnsupported is returned where the BLE stack has no GATT
// server support.
var ErrPeripheralUnsupported = errors.New("ble: peripheral role not supported on this platform")

// SystemPeripheral is unavailable outside Linux; use the desktop HID
// backend instead.
type SystemPeripheral struct{}

// NewSystemPeripheral returns a peripheral whose Enable always fails.
func NewSystemPeripheral() *SystemPeripheral { return &SystemPeripheral{} }

func (p *SystemPeripheral) Enable() error { return ErrPeripheralUnsupported }

func (p *SystemPeripheral) OnConnect(func(bool)) {}

func (p *SystemPeripheral) AddService(string, []CharacteristicSpec) ([]Characteristic, error) {
	return nil, ErrPeripheralUnsupported
}

func (p *SystemPeripheral) Advertise(string, []string) error { return ErrPeripheralUnsupported }

var _ Peripheral = (*SystemPeripheral)(nil)
