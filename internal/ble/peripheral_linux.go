//go:build linux

package ble

import (
	"bytes"
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

// SystemPeripheral wraps tinygo-org/bluetooth on BlueZ.
type SystemPeripheral struct {
	adapter *bluetooth.Adapter

	mu        sync.Mutex
	connectCb func(bool)
}

// NewSystemPeripheral returns the default adapter in peripheral role.
func NewSystemPeripheral() *SystemPeripheral {
	return &SystemPeripheral{adapter: bluetooth.DefaultAdapter}
}

func (p *SystemPeripheral) Enable() error {
	if err := p.adapter.Enable(); err != nil {
		return err
	}
	p.adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		p.mu.Lock()
		cb := p.connectCb
		p.mu.Unlock()
		if cb != nil {
			cb(connected)
		}
	})
	return nil
}

func (p *SystemPeripheral) OnConnect(cb func(connected bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectCb = cb
}

func (p *SystemPeripheral) AddService(uuid string, chars []CharacteristicSpec) ([]Characteristic, error) {
	svcUUID, err := bluetooth.ParseUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("ble: parse service UUID: %w", err)
	}

	handles := make([]bluetooth.Characteristic, len(chars))
	svc := &bluetooth.Service{UUID: svcUUID}
	for i, c := range chars {
		charUUID, err := bluetooth.ParseUUID(c.UUID)
		if err != nil {
			return nil, fmt.Errorf("ble: parse characteristic UUID %s: %w", c.UUID, err)
		}
		cfg := bluetooth.CharacteristicConfig{
			Handle: &handles[i],
			UUID:   charUUID,
			Value:  c.Value,
			Flags:  permissions(c),
		}
		if c.OnWrite != nil {
			onWrite := c.OnWrite
			cfg.WriteEvent = func(_ bluetooth.Connection, _ int, value []byte) {
				onWrite(bytes.Clone(value))
			}
		}
		svc.Characteristics = append(svc.Characteristics, cfg)
	}

	if err := p.adapter.AddService(svc); err != nil {
		return nil, fmt.Errorf("ble: add service %s: %w", uuid, err)
	}

	out := make([]Characteristic, len(chars))
	for i := range handles {
		out[i] = &systemCharacteristic{char: &handles[i]}
	}
	return out, nil
}

func (p *SystemPeripheral) Advertise(name string, serviceUUIDs []string) error {
	uuids := make([]bluetooth.UUID, 0, len(serviceUUIDs))
	for _, s := range serviceUUIDs {
		u, err := bluetooth.ParseUUID(s)
		if err != nil {
			return fmt.Errorf("ble: parse advertised UUID: %w", err)
		}
		uuids = append(uuids, u)
	}

	adv := p.adapter.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: uuids,
	}); err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	return adv.Start()
}

func permissions(c CharacteristicSpec) bluetooth.CharacteristicPermissions {
	var f bluetooth.CharacteristicPermissions
	if c.Read {
		f |= bluetooth.CharacteristicReadPermission
	}
	if c.Write {
		f |= bluetooth.CharacteristicWritePermission
	}
	if c.WriteNoResponse {
		f |= bluetooth.CharacteristicWriteWithoutResponsePermission
	}
	if c.Notify {
		f |= bluetooth.CharacteristicNotifyPermission
	}
	return f
}

var _ Peripheral = (*SystemPeripheral)(nil)

type systemCharacteristic struct {
	char *bluetooth.Characteristic
}

func (c *systemCharacteristic) Notify(data []byte) error {
	_, err := c.char.Write(data)
	return err
}
