package control

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/chaz8081/micropad/internal/device"
)

// mockNotifier captures every outbound message.
type mockNotifier struct {
	mu   sync.Mutex
	sent [][]byte
	err  error
}

func (n *mockNotifier) Send(msg []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, append([]byte(nil), msg...))
	return nil
}

// decoded is a parsed outbound envelope.
type decoded struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      json.RawMessage `json:"id"`
	Event   string          `json:"event"`
	TS      int64           `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

func (n *mockNotifier) messages(t *testing.T) []decoded {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]decoded, len(n.sent))
	for i, m := range n.sent {
		if err := json.Unmarshal(m, &out[i]); err != nil {
			t.Fatalf("outbound message %d is not JSON: %v\n%s", i, err, m)
		}
	}
	return out
}

type fakeDevice struct{}

func (fakeDevice) Info() device.Info {
	return device.Info{
		DeviceID:        "MICROPAD-0A0B0C0D",
		FirmwareVersion: "1.0.0",
		HardwareVersion: "1.0",
		BatteryLevel:    100,
		Capabilities:    []string{"ble", "macros", "profiles"},
		Uptime:          42,
	}
}

var errDisconnected = errors.New("not connected")
