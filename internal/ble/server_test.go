package ble

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chaz8081/micropad/internal/ble/protocol"
	"github.com/chaz8081/micropad/internal/hid"
)

type sleepRecorder struct{ calls []time.Duration }

func (r *sleepRecorder) sleep(d time.Duration) { r.calls = append(r.calls, d) }

func startServer(t *testing.T) (*Server, *mockPeripheral, *sleepRecorder) {
	t.Helper()
	p := newMockPeripheral()
	rec := &sleepRecorder{}
	opts := DefaultServerOptions()
	opts.Sleep = rec.sleep
	s := NewServer(p, opts)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s, p, rec
}

func TestUUID16(t *testing.T) {
	if got := UUID16(UUIDHIDService); got != "00001812-0000-1000-8000-00805f9b34fb" {
		t.Errorf("UUID16(0x1812) = %q", got)
	}
}

func TestStartRegistersServices(t *testing.T) {
	_, p, _ := startServer(t)

	want := []string{UUID16(UUIDHIDService), ConfigServiceUUID, UUID16(UUIDBatteryService), UUID16(UUIDDeviceInfoService)}
	if len(p.order) != len(want) {
		t.Fatalf("registered %d services, want %d", len(p.order), len(want))
	}
	for i := range want {
		if p.order[i] != want[i] {
			t.Errorf("service %d = %s, want %s", i, p.order[i], want[i])
		}
	}

	rm := p.char(UUID16(UUIDHIDService), UUID16(UUIDHIDReportMap))
	if rm == nil || !bytes.Equal(rm.spec.Value, hid.ReportMap) {
		t.Error("report map characteristic missing or wrong value")
	}
	if p.advertiseCount() != 1 || p.advertNames[0] != "Micropad" {
		t.Errorf("advertised %d times as %v", p.advertiseCount(), p.advertNames)
	}
}

func TestStartEnableError(t *testing.T) {
	p := newMockPeripheral()
	p.enableErr = errors.New("no adapter")
	s := NewServer(p, DefaultServerOptions())
	if err := s.Start(); err == nil {
		t.Error("Start() should fail when the adapter cannot be enabled")
	}
}

func TestReportsGatedOnConnection(t *testing.T) {
	s, p, _ := startServer(t)

	if s.IsConnected() || s.IsReady() {
		t.Fatal("server should not be connected before a central connects")
	}
	if err := s.SendKeyboardReport(hid.ModLeftCtrl, hid.KeyC); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendKeyboardReport() while disconnected = %v, want ErrNotConnected", err)
	}

	p.SimulateConnect(true)
	if !s.IsConnected() || !s.IsReady() {
		t.Fatal("server should be ready after connect")
	}

	if err := s.SendKeyboardReport(hid.ModLeftCtrl, hid.KeyC); err != nil {
		t.Fatalf("SendKeyboardReport() error = %v", err)
	}
	if err := s.SendConsumerReport(hid.UsageVolumeUp); err != nil {
		t.Fatalf("SendConsumerReport() error = %v", err)
	}
	if err := s.SendMouseReport(0, 0, 0, -3); err != nil {
		t.Fatalf("SendMouseReport() error = %v", err)
	}

	reports := p.services[UUID16(UUIDHIDService)]
	kb, cc, ms := reports[4].notifications(), reports[5].notifications(), reports[6].notifications()
	if len(kb) != 1 || !bytes.Equal(kb[0], hid.KeyboardReport(hid.ModLeftCtrl, hid.KeyC)) {
		t.Errorf("keyboard notifications = %v", kb)
	}
	if len(cc) != 1 || !bytes.Equal(cc[0], []byte{0xE9, 0x00}) {
		t.Errorf("consumer notifications = %v", cc)
	}
	if len(ms) != 1 || !bytes.Equal(ms[0], []byte{0, 0, 0, 0xFD}) {
		t.Errorf("mouse notifications = %v", ms)
	}
}

func TestSendSmallMessage(t *testing.T) {
	s, p, rec := startServer(t)
	p.SimulateConnect(true)

	msg := []byte(`{"v":1,"type":"event","event":"profileChanged"}`)
	if err := s.Send(msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got := p.char(ConfigServiceUUID, EvtCharUUID).notifications()
	if len(got) != 1 || !bytes.Equal(got[0], msg) {
		t.Errorf("notifications = %q", got)
	}
	if len(rec.calls) != 0 {
		t.Errorf("sleep calls = %v, want none", rec.calls)
	}
}

func TestSendChunkedMessage(t *testing.T) {
	s, p, rec := startServer(t)
	p.SimulateConnect(true)

	msg := bytes.Repeat([]byte("x"), 1200)
	if err := s.Send(msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	frames := p.char(ConfigServiceUUID, EvtCharUUID).notifications()
	if len(frames) != 4 {
		t.Fatalf("sent %d frames, want 4", len(frames))
	}
	if len(rec.calls) != 3 || rec.calls[0] != 10*time.Millisecond {
		t.Errorf("sleep calls = %v, want three 10ms delays", rec.calls)
	}
	for i, f := range frames {
		if len(f) > protocol.MaxMessageBytes {
			t.Errorf("frame %d is %d bytes, limit %d", i, len(f), protocol.MaxMessageBytes)
		}
	}

	var c protocol.Chunk
	if err := json.Unmarshal(frames[3], &c); err != nil {
		t.Fatalf("unmarshal last chunk: %v", err)
	}
	if c.Index != 3 || c.Total != 4 {
		t.Errorf("last chunk = %d/%d, want 3/4", c.Index, c.Total)
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	s, _, _ := startServer(t)
	if err := s.Send([]byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
}

func TestWritesReassembled(t *testing.T) {
	s, p, _ := startServer(t)
	p.SimulateConnect(true)

	msg := append([]byte(`{"v":1,"type":"request","id":4,"cmd":"setProfile","profile":{"name":"`), bytes.Repeat([]byte("n"), 900)...)
	msg = append(msg, `"}}`...)

	cmd := p.char(ConfigServiceUUID, CmdCharUUID)
	for _, f := range protocol.Split(msg, protocol.MaxMessageBytes, protocol.ChunkSize) {
		cmd.SimulateWrite(f)
	}

	select {
	case got := <-s.Messages():
		if !bytes.Equal(got, msg) {
			t.Errorf("message = %d bytes, want %d", len(got), len(msg))
		}
	default:
		t.Fatal("no message delivered")
	}
}

func TestBulkWriteDelivered(t *testing.T) {
	s, p, _ := startServer(t)
	p.SimulateConnect(true)

	p.char(ConfigServiceUUID, BulkCharUUID).SimulateWrite([]byte(`{"cmd":"getStats"}`))
	select {
	case got := <-s.Messages():
		if string(got) != `{"cmd":"getStats"}` {
			t.Errorf("message = %s", got)
		}
	default:
		t.Fatal("no message delivered")
	}
}

func TestDisconnectDiscardsPartialMessage(t *testing.T) {
	s, p, _ := startServer(t)
	p.SimulateConnect(true)

	frames := protocol.Split(bytes.Repeat([]byte("y"), 1000), protocol.MaxMessageBytes, protocol.ChunkSize)
	cmd := p.char(ConfigServiceUUID, CmdCharUUID)
	cmd.SimulateWrite(frames[0])

	s.handleConnect(true)
	cmd.SimulateWrite(frames[1])
	cmd.SimulateWrite(frames[2])

	select {
	case got := <-s.Messages():
		t.Errorf("unexpected message of %d bytes", len(got))
	default:
	}
}

func TestReadvertiseBackoff(t *testing.T) {
	s, p, rec := startServer(t)
	p.mu.Lock()
	p.advertErrs = 3
	p.mu.Unlock()

	s.readvertise()

	if got := p.advertiseCount(); got != 5 {
		t.Errorf("Advertise called %d times, want 5 (1 start + 3 failures + 1 success)", got)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.calls) != len(want) {
		t.Fatalf("sleep calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, rec.calls[i], want[i])
		}
	}
}

func TestReadvertiseStopsWhenClosed(t *testing.T) {
	s, p, _ := startServer(t)
	s.Close()
	s.readvertise()
	if got := p.advertiseCount(); got != 1 {
		t.Errorf("Advertise called %d times after Close, want 1", got)
	}
}

func TestBackoffDelay(t *testing.T) {
	delays := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}
	for i, want := range delays {
		if got := backoffDelay(i, 30); got != want {
			t.Errorf("backoffDelay(%d, 30) = %v, want %v", i, got, want)
		}
	}
}
