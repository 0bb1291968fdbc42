// Command test-matrix is a manual test for the key matrix and encoders.
// It prints every key and encoder edge until Ctrl+C.
//
// Usage:
//
//	go run ./cmd/test-matrix [--backend sim|gpio] [--config path]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/micropad/internal/config"
	"github.com/chaz8081/micropad/internal/gpio"
	"github.com/chaz8081/micropad/internal/input"
	"github.com/chaz8081/micropad/internal/sim"
)

func main() {
	backend := flag.String("backend", "sim", "pin backend: sim or gpio")
	configPath := flag.String("config", config.DefaultConfigPath(), "config file for pin names")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var (
		matrix   *input.Matrix
		encoders []*input.Encoder
		stop     = func() {}
	)
	switch *backend {
	case "gpio":
		layout := gpio.Layout{Rows: cfg.Matrix.Rows, Cols: cfg.Matrix.Cols}
		for _, p := range cfg.Encoders.Pins {
			layout.Encoders = append(layout.Encoders, gpio.EncoderNames{A: p.A, B: p.B, SW: p.SW})
		}
		pins, err := gpio.Open(layout)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		matrix = input.NewMatrix(pins.Rows, pins.Cols, input.MatrixOptions{})
		for _, e := range pins.Encoders {
			encoders = append(encoders, input.NewEncoder(e.A, e.B, e.SW, input.EncoderOptions{}))
		}
	default:
		board := sim.NewBoard(input.MatrixRows, input.MatrixCols, len(sim.DefaultEncoderKeys))
		for i := range sim.DefaultEncoderKeys {
			a, b, sw := board.EncoderPins(i)
			encoders = append(encoders, input.NewEncoder(a, b, sw, input.EncoderOptions{}))
		}
		matrix = input.NewMatrix(board.RowPins(), board.ColPins(), input.MatrixOptions{})
		listener := sim.NewListener(board, sim.DefaultKeys, sim.DefaultEncoderKeys)
		go listener.Start()
		stop = listener.Stop
		fmt.Printf("Keys: %v\n", sim.DefaultKeys)
	}

	fmt.Printf("Scanning %d keys and %d encoders (%s). Press Ctrl+C to exit.\n", matrix.NumKeys(), len(encoders), *backend)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			fmt.Println("\nShutting down...")
			stop()
			return
		case <-ticker.C:
		}

		matrix.Scan()
		for k := 0; k < matrix.NumKeys(); k++ {
			if matrix.JustPressed(k) {
				fmt.Printf(">>> key %2d down\n", k)
			}
			if matrix.JustReleased(k) {
				fmt.Printf("<<< key %2d up\n", k)
			}
		}
		for i, e := range encoders {
			e.Update()
			if d := e.Delta(); d != 0 {
				fmt.Printf("~~~ encoder %d: %+d (position %d, accel %.1f)\n", i, d, e.Position(), e.Acceleration())
			}
			if e.SWJustPressed() {
				fmt.Printf(">>> encoder %d button down\n", i)
			}
		}
	}
}
