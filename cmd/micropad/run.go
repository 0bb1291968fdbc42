package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/micropad/internal/action"
	"github.com/chaz8081/micropad/internal/ble"
	"github.com/chaz8081/micropad/internal/config"
	"github.com/chaz8081/micropad/internal/control"
	"github.com/chaz8081/micropad/internal/device"
	"github.com/chaz8081/micropad/internal/gpio"
	"github.com/chaz8081/micropad/internal/hid"
	"github.com/chaz8081/micropad/internal/inject"
	"github.com/chaz8081/micropad/internal/input"
	"github.com/chaz8081/micropad/internal/keypad"
	"github.com/chaz8081/micropad/internal/logging"
	"github.com/chaz8081/micropad/internal/profile"
	"github.com/chaz8081/micropad/internal/sim"
	"github.com/chaz8081/micropad/internal/stats"
	"github.com/chaz8081/micropad/internal/storage"
)

// watchDebounce coalesces the burst of events an atomic save produces.
const watchDebounce = 200 * time.Millisecond

// RunCmd starts the keypad.
type RunCmd struct{}

func (c *RunCmd) Run(cfg *config.Config, raw logging.RawLogger) error {
	printBanner(cfg)

	store, manager, err := openProfiles(cfg)
	if err != nil {
		return err
	}
	counters := stats.New(input.MatrixKeys, profile.NumEncoders)
	dev := device.New(cfg.Device.FirmwareVersion, cfg.Device.HardwareVersion)
	slog.Info("[MAIN] device ready", "id", dev.ID, "profile", manager.ActiveProfileID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		transport hid.Transport
		out       control.Notifier
		messages  <-chan []byte
	)
	switch cfg.HID.Backend {
	case "ble":
		srv := ble.NewServer(ble.NewSystemPeripheral(), ble.ServerOptions{
			DeviceName:      cfg.BLE.DeviceName,
			Manufacturer:    cfg.BLE.Manufacturer,
			FirmwareVersion: dev.FirmwareVersion,
			HardwareVersion: dev.HardwareVersion,
			MaxMessage:      cfg.BLE.MaxMessage,
			ChunkSize:       cfg.BLE.ChunkSize,
			InterChunkDelay: time.Duration(cfg.BLE.InterChunkDelayMS) * time.Millisecond,
			Raw:             raw,
		})
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Close()
		transport, out, messages = srv, srv, srv.Messages()
	default:
		transport, out = inject.NewDesktop(), logNotifier{}
	}

	handler := control.NewHandler(manager, dev, counters, out, control.Options{Restart: dev.Restart})
	exec := action.NewExecutor(transport, keypad.NewSwitcher(manager, handler), action.ExecutorOptions{})

	matrix, encoders, closeInputs, err := openInputs(cfg)
	if err != nil {
		return err
	}
	defer closeInputs()

	var reloads <-chan int
	if cfg.Storage.Watch {
		w, err := storage.WatchProfiles(ctx, store, watchDebounce)
		if err != nil {
			slog.Warn("[MAIN] profile watch disabled", "error", err)
		} else {
			defer w.Close()
			reloads = w.Events()
		}
	}

	combos := make([]keypad.Combo, 0, len(cfg.Combos))
	for _, cb := range cfg.Combos {
		combos = append(combos, keypad.Combo{
			Key1:    cb.Keys[0],
			Key2:    cb.Keys[1],
			Hold:    time.Duration(cb.HoldMS) * time.Millisecond,
			Command: cb.Command,
		})
	}

	rt := keypad.New(keypad.Options{
		Matrix:       matrix,
		Encoders:     encoders,
		Combos:       combos,
		Profiles:     manager,
		Executor:     exec,
		Stats:        counters,
		Events:       handler,
		Messages:     messages,
		Control:      handler,
		Reloads:      reloads,
		ScanInterval: time.Duration(cfg.Matrix.ScanIntervalMS) * time.Millisecond,
	})

	fmt.Println("Ready! Ctrl+C to quit.")
	err = rt.Run(ctx)
	slog.Info("[MAIN] goodbye")
	return err
}

// openInputs builds the matrix scanner and encoders on the configured pin
// backend. The returned func releases the backend.
func openInputs(cfg *config.Config) (*input.Matrix, []*input.Encoder, func(), error) {
	debounce := time.Duration(cfg.Matrix.DebounceMS) * time.Millisecond
	mopts := input.MatrixOptions{
		Debounce: debounce,
		Settle:   time.Duration(cfg.Matrix.SettleUS) * time.Microsecond,
	}
	eopts := input.EncoderOptions{
		Debounce:       debounce,
		AccelThreshold: time.Duration(cfg.Encoders.AccelThresholdMS) * time.Millisecond,
	}

	switch cfg.Matrix.Backend {
	case "gpio":
		layout := gpio.Layout{Rows: cfg.Matrix.Rows, Cols: cfg.Matrix.Cols}
		for _, p := range cfg.Encoders.Pins {
			layout.Encoders = append(layout.Encoders, gpio.EncoderNames{A: p.A, B: p.B, SW: p.SW})
		}
		pins, err := gpio.Open(layout)
		if err != nil {
			return nil, nil, nil, err
		}
		var encoders []*input.Encoder
		for _, e := range pins.Encoders {
			encoders = append(encoders, input.NewEncoder(e.A, e.B, e.SW, eopts))
		}
		return input.NewMatrix(pins.Rows, pins.Cols, mopts), encoders, func() {}, nil

	default:
		board := sim.NewBoard(input.MatrixRows, input.MatrixCols, len(cfg.Sim.Encoders))
		var encoders []*input.Encoder
		keys := make([]sim.EncoderKeys, len(cfg.Sim.Encoders))
		for i, e := range cfg.Sim.Encoders {
			keys[i] = sim.EncoderKeys{CW: e.CW, CCW: e.CCW, Press: e.Press}
			a, b, sw := board.EncoderPins(i)
			encoders = append(encoders, input.NewEncoder(a, b, sw, eopts))
		}
		listener := sim.NewListener(board, cfg.Sim.Keys, keys)
		go listener.Start()
		slog.Info("[MAIN] simulated keypad", "keys", cfg.Sim.Keys)
		return input.NewMatrix(board.RowPins(), board.ColPins(), mopts), encoders, listener.Stop, nil
	}
}

// logNotifier stands in for the config channel when there is no BLE link.
type logNotifier struct{}

func (logNotifier) Send(msg []byte) error {
	slog.Debug("[MAIN] outbound message", "msg", string(msg))
	return nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== micropad ===")
	fmt.Printf("  Matrix:  %s\n", cfg.Matrix.Backend)
	fmt.Printf("  HID:     %s\n", cfg.HID.Backend)
	fmt.Printf("  Storage: %s\n", cfg.Storage.Dir)
	fmt.Printf("  Combos:  %d\n", len(cfg.Combos))
	fmt.Printf("  Log:     %s\n", cfg.LogLevel)
	fmt.Println("================")
}
