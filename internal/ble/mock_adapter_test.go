package ble

import (
	"errors"
	"sync"
	"testing"
)

// mockCharacteristic records notifications.
type mockCharacteristic struct {
	mu       sync.Mutex
	spec     CharacteristicSpec
	notified [][]byte
	err      error
}

func (c *mockCharacteristic) Notify(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.notified = append(c.notified, cp)
	return nil
}

func (c *mockCharacteristic) notifications() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.notified...)
}

// SimulateWrite delivers a central write to the characteristic's handler.
func (c *mockCharacteristic) SimulateWrite(data []byte) {
	if c.spec.OnWrite != nil {
		c.spec.OnWrite(data)
	}
}

// mockPeripheral records registered services and simulates centrals.
type mockPeripheral struct {
	mu          sync.Mutex
	enabled     bool
	services    map[string][]*mockCharacteristic
	order       []string
	advertised  int
	advertErrs  int // number of Advertise calls that fail
	connectCb   func(bool)
	enableErr   error
	advertNames []string
}

func newMockPeripheral() *mockPeripheral {
	return &mockPeripheral{services: make(map[string][]*mockCharacteristic)}
}

func (p *mockPeripheral) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enableErr != nil {
		return p.enableErr
	}
	p.enabled = true
	return nil
}

func (p *mockPeripheral) AddService(uuid string, chars []CharacteristicSpec) ([]Characteristic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Characteristic, len(chars))
	mocks := make([]*mockCharacteristic, len(chars))
	for i, c := range chars {
		mocks[i] = &mockCharacteristic{spec: c}
		out[i] = mocks[i]
	}
	p.services[uuid] = mocks
	p.order = append(p.order, uuid)
	return out, nil
}

func (p *mockPeripheral) Advertise(name string, _ []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advertised++
	if p.advertErrs > 0 {
		p.advertErrs--
		return errors.New("mock: advertising busy")
	}
	p.advertNames = append(p.advertNames, name)
	return nil
}

func (p *mockPeripheral) OnConnect(cb func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectCb = cb
}

// SimulateConnect fires the connect callback.
func (p *mockPeripheral) SimulateConnect(connected bool) {
	p.mu.Lock()
	cb := p.connectCb
	p.mu.Unlock()
	if cb != nil {
		cb(connected)
	}
}

func (p *mockPeripheral) char(service, uuid string) *mockCharacteristic {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.services[service] {
		if c.spec.UUID == uuid {
			return c
		}
	}
	return nil
}

func (p *mockPeripheral) advertiseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advertised
}

func TestMockPeripheralImplementsInterface(t *testing.T) {
	var _ Peripheral = (*mockPeripheral)(nil)
}

func TestMockCharacteristicImplementsInterface(t *testing.T) {
	var _ Characteristic = (*mockCharacteristic)(nil)
}
