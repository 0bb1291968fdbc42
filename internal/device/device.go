// Package device describes the running keypad: identity, firmware and
// hardware versions, resource usage, and restart.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	DefaultName            = "Micropad"
	DefaultFirmwareVersion = "1.0.0"
	DefaultHardwareVersion = "1.0"
)

// Capabilities advertised to the companion app.
var Capabilities = []string{"ble", "macros", "profiles"}

// machineIDPaths are tried in order for a stable host secret.
var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// Info is the payload of getDeviceInfo.
type Info struct {
	DeviceID        string   `json:"deviceId"`
	FirmwareVersion string   `json:"firmwareVersion"`
	HardwareVersion string   `json:"hardwareVersion"`
	BatteryLevel    int      `json:"batteryLevel"`
	Capabilities    []string `json:"capabilities"`
	Uptime          uint64   `json:"uptime"`
	FreeHeap        uint64   `json:"freeHeap"`
}

// Device holds the static identity of this keypad.
type Device struct {
	ID              string
	FirmwareVersion string
	HardwareVersion string
	start           time.Time
}

// New builds a Device, deriving its id from the host machine id.
func New(firmware, hardware string) *Device {
	if firmware == "" {
		firmware = DefaultFirmwareVersion
	}
	if hardware == "" {
		hardware = DefaultHardwareVersion
	}
	return &Device{
		ID:              LocalID(),
		FirmwareVersion: firmware,
		HardwareVersion: hardware,
		start:           time.Now(),
	}
}

// LocalID derives the device id from the first readable machine id, or
// from the hostname when none exists.
func LocalID() string {
	for _, p := range machineIDPaths {
		if data, err := os.ReadFile(p); err == nil {
			if s := strings.TrimSpace(string(data)); s != "" {
				return DeriveID([]byte(s))
			}
		}
	}
	host, _ := os.Hostname()
	return DeriveID([]byte(host))
}

// DeriveID maps a host secret to a short, app-specific identifier so the
// raw machine id never leaves the host.
func DeriveID(secret []byte) string {
	r := hkdf.New(sha256.New, secret, nil, []byte("micropad device id"))
	id := make([]byte, 4)
	if _, err := io.ReadFull(r, id); err != nil {
		return "MICROPAD-00000000"
	}
	return "MICROPAD-" + strings.ToUpper(hex.EncodeToString(id))
}

// Uptime returns time since New.
func (d *Device) Uptime() time.Duration { return time.Since(d.start) }

// Info reports the current device state.
func (d *Device) Info() Info {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	free := uint64(0)
	if ms.HeapSys > ms.HeapInuse {
		free = ms.HeapSys - ms.HeapInuse
	}
	return Info{
		DeviceID:        d.ID,
		FirmwareVersion: d.FirmwareVersion,
		HardwareVersion: d.HardwareVersion,
		BatteryLevel:    100,
		Capabilities:    append([]string(nil), Capabilities...),
		Uptime:          uint64(d.Uptime() / time.Second),
		FreeHeap:        free,
	}
}

// Restart replaces the running process with a fresh copy of itself.
func (d *Device) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("device: locate executable: %w", err)
	}
	return restart(exe, os.Args, os.Environ())
}
