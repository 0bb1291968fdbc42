package ble

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/micropad/internal/ble/protocol"
	"github.com/chaz8081/micropad/internal/hid"
	"github.com/chaz8081/micropad/internal/logging"
)

// ErrNotConnected is returned by Send while no central is connected.
var ErrNotConnected = errors.New("ble: not connected")

// ServerOptions configures the peripheral.
type ServerOptions struct {
	DeviceName      string
	Manufacturer    string
	FirmwareVersion string
	HardwareVersion string
	MaxMessage      int           // largest unchunked notification (default 512)
	ChunkSize       int           // message bytes per chunk (default 352)
	InterChunkDelay time.Duration // delay between chunk notifications (default 10ms)
	AdvertiseMax    int           // max re-advertise backoff in seconds
	QueueSize       int           // buffered inbound messages
	Raw             logging.RawLogger
	Sleep           func(time.Duration)
}

// DefaultServerOptions returns the stock settings.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		DeviceName:      "Micropad",
		Manufacturer:    "Micropad",
		MaxMessage:      protocol.MaxMessageBytes,
		ChunkSize:       protocol.ChunkSize,
		InterChunkDelay: 10 * time.Millisecond,
		AdvertiseMax:    30,
		QueueSize:       16,
	}
}

// Server is the keypad's GATT server. It implements hid.Transport and
// delivers reassembled config messages on Messages.
type Server struct {
	periph Peripheral
	opts   ServerOptions

	mu        sync.Mutex
	started   bool
	connected bool
	closed    bool
	keyboard  Characteristic
	consumer  Characteristic
	mouse     Characteristic
	evt       Characteristic

	// sendMu keeps chunk sequences from interleaving.
	sendMu sync.Mutex

	rxMu  sync.Mutex
	reasm protocol.Reassembler

	messages chan []byte
}

// NewServer creates a server on p. Zero option fields take defaults.
func NewServer(p Peripheral, opts ServerOptions) *Server {
	d := DefaultServerOptions()
	if opts.DeviceName == "" {
		opts.DeviceName = d.DeviceName
	}
	if opts.Manufacturer == "" {
		opts.Manufacturer = d.Manufacturer
	}
	if opts.MaxMessage <= 0 {
		opts.MaxMessage = d.MaxMessage
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = d.ChunkSize
	}
	if opts.InterChunkDelay < 0 {
		opts.InterChunkDelay = d.InterChunkDelay
	}
	if opts.AdvertiseMax <= 0 {
		opts.AdvertiseMax = d.AdvertiseMax
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = d.QueueSize
	}
	if opts.Raw == nil {
		opts.Raw = logging.NewRaw(nil)
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Server{
		periph:   p,
		opts:     opts,
		messages: make(chan []byte, opts.QueueSize),
	}
}

// Start enables the adapter, registers the services and begins advertising.
func (s *Server) Start() error {
	if err := s.periph.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	s.periph.OnConnect(s.handleConnect)

	if err := s.addHIDService(); err != nil {
		return err
	}
	if err := s.addConfigService(); err != nil {
		return err
	}
	if err := s.addInfoServices(); err != nil {
		return err
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	if err := s.advertise(); err != nil {
		return err
	}
	slog.Info("[BLE] advertising", "name", s.opts.DeviceName)
	return nil
}

func (s *Server) addHIDService() error {
	chars, err := s.periph.AddService(UUID16(UUIDHIDService), []CharacteristicSpec{
		{UUID: UUID16(UUIDHIDInformation), Read: true, Value: []byte{0x11, 0x01, 0x00, 0x02}},
		{UUID: UUID16(UUIDHIDReportMap), Read: true, Value: hid.ReportMap},
		{UUID: UUID16(UUIDHIDControlPoint), WriteNoResponse: true, OnWrite: s.handleControlPoint},
		{UUID: UUID16(UUIDHIDProtocolMode), Read: true, WriteNoResponse: true, Value: []byte{0x01}},
		{UUID: UUID16(UUIDHIDReport), Read: true, Notify: true, Value: make([]byte, hid.KeyboardReportLen)},
		{UUID: UUID16(UUIDHIDReport), Read: true, Notify: true, Value: make([]byte, hid.ConsumerReportLen)},
		{UUID: UUID16(UUIDHIDReport), Read: true, Notify: true, Value: make([]byte, hid.MouseReportLen)},
	})
	if err != nil {
		return fmt.Errorf("ble: HID service: %w", err)
	}
	s.mu.Lock()
	s.keyboard, s.consumer, s.mouse = chars[4], chars[5], chars[6]
	s.mu.Unlock()
	return nil
}

func (s *Server) addConfigService() error {
	chars, err := s.periph.AddService(ConfigServiceUUID, []CharacteristicSpec{
		{UUID: CmdCharUUID, Write: true, WriteNoResponse: true, OnWrite: s.handleWrite},
		{UUID: EvtCharUUID, Read: true, Notify: true},
		{UUID: BulkCharUUID, Write: true, WriteNoResponse: true, OnWrite: s.handleWrite},
	})
	if err != nil {
		return fmt.Errorf("ble: config service: %w", err)
	}
	s.mu.Lock()
	s.evt = chars[1]
	s.mu.Unlock()
	return nil
}

func (s *Server) addInfoServices() error {
	if _, err := s.periph.AddService(UUID16(UUIDBatteryService), []CharacteristicSpec{
		{UUID: UUID16(UUIDBatteryLevel), Read: true, Notify: true, Value: []byte{100}},
	}); err != nil {
		return fmt.Errorf("ble: battery service: %w", err)
	}
	if _, err := s.periph.AddService(UUID16(UUIDDeviceInfoService), []CharacteristicSpec{
		{UUID: UUID16(UUIDManufacturerName), Read: true, Value: []byte(s.opts.Manufacturer)},
		{UUID: UUID16(UUIDFirmwareRevision), Read: true, Value: []byte(s.opts.FirmwareVersion)},
		{UUID: UUID16(UUIDHardwareRevision), Read: true, Value: []byte(s.opts.HardwareVersion)},
	}); err != nil {
		return fmt.Errorf("ble: device information service: %w", err)
	}
	return nil
}

func (s *Server) advertise() error {
	err := s.periph.Advertise(s.opts.DeviceName, []string{UUID16(UUIDHIDService), ConfigServiceUUID})
	if err != nil {
		return fmt.Errorf("ble: advertise: %w", err)
	}
	return nil
}

// Messages delivers complete inbound config messages.
func (s *Server) Messages() <-chan []byte { return s.messages }

// Close stops re-advertising. The adapter itself stays up.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.connected = false
	return nil
}

// IsConnected reports whether a central is connected.
func (s *Server) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// IsReady reports whether the HID service is registered and a central is
// connected.
func (s *Server) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && s.connected && s.keyboard != nil
}

func (s *Server) SendKeyboardReport(modifiers, keycode uint8) error {
	return s.notifyReport(func() Characteristic { return s.keyboard }, hid.KeyboardReport(modifiers, keycode))
}

func (s *Server) SendConsumerReport(usage uint16) error {
	return s.notifyReport(func() Characteristic { return s.consumer }, hid.ConsumerReport(usage))
}

func (s *Server) SendMouseReport(buttons uint8, dx, dy, wheel int8) error {
	return s.notifyReport(func() Characteristic { return s.mouse }, hid.MouseReport(buttons, dx, dy, wheel))
}

func (s *Server) notifyReport(pick func() Characteristic, report []byte) error {
	s.mu.Lock()
	c := pick()
	ready := s.connected && c != nil
	s.mu.Unlock()
	if !ready {
		return ErrNotConnected
	}
	if err := c.Notify(report); err != nil {
		return fmt.Errorf("ble: notify report: %w", err)
	}
	return nil
}

// Send notifies msg on the event characteristic, chunking it when it
// exceeds the maximum message size.
func (s *Server) Send(msg []byte) error {
	s.mu.Lock()
	evt := s.evt
	connected := s.connected
	s.mu.Unlock()
	if !connected || evt == nil {
		return ErrNotConnected
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	frames := protocol.Split(msg, s.opts.MaxMessage, s.opts.ChunkSize)
	for i, f := range frames {
		s.opts.Raw.Log(false, f)
		if err := evt.Notify(f); err != nil {
			return fmt.Errorf("ble: notify chunk %d/%d: %w", i+1, len(frames), err)
		}
		if i < len(frames)-1 && s.opts.InterChunkDelay > 0 {
			s.opts.Sleep(s.opts.InterChunkDelay)
		}
	}
	if len(frames) > 1 {
		slog.Debug("[BLE] sent chunked message", "bytes", len(msg), "chunks", len(frames))
	}
	return nil
}

// handleWrite runs on the BLE stack's callback goroutine and must not block.
func (s *Server) handleWrite(data []byte) {
	s.opts.Raw.Log(true, data)

	s.rxMu.Lock()
	msg, complete, err := s.reasm.Feed(data)
	s.rxMu.Unlock()
	if err != nil {
		slog.Warn("[BLE] dropping config write", "error", err)
		return
	}
	if !complete {
		return
	}

	select {
	case s.messages <- msg:
	default:
		slog.Warn("[BLE] message queue full, dropping config message", "bytes", len(msg))
	}
}

func (s *Server) handleControlPoint(data []byte) {
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case 0x00:
		slog.Debug("[BLE] host suspended")
	case 0x01:
		slog.Debug("[BLE] host exited suspend")
	}
}

func (s *Server) handleConnect(connected bool) {
	s.mu.Lock()
	s.connected = connected
	closed := s.closed
	s.mu.Unlock()

	s.rxMu.Lock()
	s.reasm.Reset()
	s.rxMu.Unlock()

	if connected {
		slog.Info("[BLE] central connected")
		return
	}
	slog.Warn("[BLE] central disconnected, advertising again")
	if !closed {
		go s.readvertise()
	}
}

// readvertise restarts advertising with exponential backoff until it
// succeeds, a central connects, or the server is closed.
func (s *Server) readvertise() {
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, s.opts.AdvertiseMax)
			slog.Info("[BLE] advertise backoff", "attempt", attempt+1, "delay", delay)
			s.opts.Sleep(delay)
		}

		s.mu.Lock()
		stop := s.closed || s.connected
		s.mu.Unlock()
		if stop {
			return
		}

		if err := s.advertise(); err != nil {
			slog.Warn("[BLE] advertise failed", "error", err, "attempt", attempt+1)
			continue
		}
		return
	}
}

// backoffDelay returns the delay before attempt n, capped at maxSeconds.
func backoffDelay(attempt int, maxSeconds int) time.Duration {
	delay := time.Duration(1<<uint(min(attempt, 30))) * time.Second
	max := time.Duration(maxSeconds) * time.Second
	if delay > max {
		return max
	}
	return delay
}

var _ hid.Transport = (*Server)(nil)
