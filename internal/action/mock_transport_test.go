package action

import (
	"fmt"
	"time"
)

// report is one call recorded by mockTransport.
type report struct {
	kind    string
	mods    uint8
	key     uint8
	usage   uint16
	buttons uint8
	wheel   int8
}

type mockTransport struct {
	connected bool
	ready     bool
	reports   []report
	failAt    int // fail the n-th send (1-based), 0 disables
}

func newMockTransport() *mockTransport {
	return &mockTransport{connected: true, ready: true}
}

func (m *mockTransport) IsConnected() bool { return m.connected }
func (m *mockTransport) IsReady() bool     { return m.ready }

func (m *mockTransport) record(r report) error {
	m.reports = append(m.reports, r)
	if m.failAt > 0 && len(m.reports) == m.failAt {
		return fmt.Errorf("mock: send %d failed", m.failAt)
	}
	return nil
}

func (m *mockTransport) SendKeyboardReport(mods, key uint8) error {
	return m.record(report{kind: "kbd", mods: mods, key: key})
}

func (m *mockTransport) SendConsumerReport(usage uint16) error {
	return m.record(report{kind: "consumer", usage: usage})
}

func (m *mockTransport) SendMouseReport(buttons uint8, dx, dy, wheel int8) error {
	return m.record(report{kind: "mouse", buttons: buttons, wheel: wheel})
}

type mockSwitcher struct {
	calls []int
	err   error
}

func (s *mockSwitcher) SetActiveProfile(id int) error {
	s.calls = append(s.calls, id)
	return s.err
}

// sleepRecorder counts the delays an Executor asked for.
type sleepRecorder struct{ total time.Duration }

func (s *sleepRecorder) sleep(d time.Duration) { s.total += d }
