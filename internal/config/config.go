package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chaz8081/micropad/internal/ble/protocol"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string         `yaml:"log_level"`
	LogFile    string         `yaml:"log_file"`
	LogRawFile string         `yaml:"log_raw_file"`
	Storage    StorageConfig  `yaml:"storage"`
	Matrix     MatrixConfig   `yaml:"matrix"`
	Encoders   EncodersConfig `yaml:"encoders"`
	Sim        SimConfig      `yaml:"sim"`
	HID        HIDConfig      `yaml:"hid"`
	BLE        BLEConfig      `yaml:"ble"`
	Device     DeviceConfig   `yaml:"device"`
	Combos     []ComboConfig  `yaml:"combos"`
}

// StorageConfig locates persisted profiles and preferences.
type StorageConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"` // reload the active profile when its file changes
}

// MatrixConfig holds key matrix wiring and timing.
type MatrixConfig struct {
	Backend        string   `yaml:"backend"` // "gpio" or "sim"
	Rows           []string `yaml:"rows"`
	Cols           []string `yaml:"cols"`
	DebounceMS     int      `yaml:"debounce_ms"`
	SettleUS       int      `yaml:"settle_us"`
	ScanIntervalMS int      `yaml:"scan_interval_ms"`
}

// EncodersConfig holds rotary encoder wiring and tuning.
type EncodersConfig struct {
	AccelThresholdMS int                 `yaml:"accel_threshold_ms"`
	Pins             []EncoderPinsConfig `yaml:"pins"`
}

// EncoderPinsConfig names the GPIO lines of one encoder.
type EncoderPinsConfig struct {
	A  string `yaml:"a"`
	B  string `yaml:"b"`
	SW string `yaml:"sw"`
}

// SimConfig maps desktop keys onto the simulated keypad.
type SimConfig struct {
	Keys     []string           `yaml:"keys"`
	Encoders []SimEncoderConfig `yaml:"encoders"`
}

// SimEncoderConfig names the desktop keys driving one simulated encoder.
type SimEncoderConfig struct {
	CW    string `yaml:"cw"`
	CCW   string `yaml:"ccw"`
	Press string `yaml:"press"`
}

// HIDConfig selects where HID reports go.
type HIDConfig struct {
	Backend string `yaml:"backend"` // "ble" or "desktop"
}

// BLEConfig holds peripheral settings.
type BLEConfig struct {
	DeviceName        string `yaml:"device_name"`
	Manufacturer      string `yaml:"manufacturer"`
	MaxMessage        int    `yaml:"max_message"`
	ChunkSize         int    `yaml:"chunk_size"`
	InterChunkDelayMS int    `yaml:"inter_chunk_delay_ms"`
}

// DeviceConfig holds the identity reported by getDeviceInfo.
type DeviceConfig struct {
	FirmwareVersion string `yaml:"firmware_version"`
	HardwareVersion string `yaml:"hardware_version"`
}

// ComboConfig binds a two-key hold to a runtime command.
type ComboConfig struct {
	Keys    []int  `yaml:"keys"`
	HoldMS  int    `yaml:"hold_ms"`
	Command string `yaml:"command"` // "next_profile" or "prev_profile"
}

// Combo commands.
const (
	CommandNextProfile = "next_profile"
	CommandPrevProfile = "prev_profile"
)

const numKeys = 12

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "micropad")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir returns the default profile storage directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "micropad")
}

// Default returns a Config with the stock keypad settings: a simulated
// matrix driving the desktop, which runs on any development machine.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Dir:   DefaultDataDir(),
			Watch: true,
		},
		Matrix: MatrixConfig{
			Backend:        "sim",
			Rows:           []string{"GPIO5", "GPIO6", "GPIO13"},
			Cols:           []string{"GPIO19", "GPIO26", "GPIO16", "GPIO20"},
			DebounceMS:     5,
			SettleUS:       5,
			ScanIntervalMS: 1,
		},
		Encoders: EncodersConfig{
			AccelThresholdMS: 50,
			Pins: []EncoderPinsConfig{
				{A: "GPIO17", B: "GPIO27", SW: "GPIO22"},
				{A: "GPIO23", B: "GPIO24", SW: "GPIO25"},
			},
		},
		Sim: SimConfig{
			Keys: []string{"1", "2", "3", "4", "q", "w", "e", "r", "a", "s", "d", "f"},
			Encoders: []SimEncoderConfig{
				{CW: "]", CCW: "[", Press: "p"},
				{CW: "=", CCW: "-", Press: "0"},
			},
		},
		HID: HIDConfig{
			Backend: "desktop",
		},
		BLE: BLEConfig{
			DeviceName:        "Micropad",
			Manufacturer:      "Micropad",
			MaxMessage:        512,
			ChunkSize:         protocol.ChunkSize,
			InterChunkDelayMS: 10,
		},
		Device: DeviceConfig{
			FirmwareVersion: "1.0.0",
			HardwareVersion: "1.0",
		},
		Combos: []ComboConfig{
			{Keys: []int{0, 3}, HoldMS: 1000, Command: CommandNextProfile},
			{Keys: []int{8, 11}, HoldMS: 1000, Command: CommandPrevProfile},
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in file paths is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Storage.Dir = expandTilde(cfg.Storage.Dir)
	cfg.LogFile = expandTilde(cfg.LogFile)
	cfg.LogRawFile = expandTilde(cfg.LogRawFile)

	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("[CONFIG] no config file, using defaults", "path", path)
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be trace, debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir must not be empty")
	}

	switch c.Matrix.Backend {
	case "gpio":
		if len(c.Matrix.Rows)*len(c.Matrix.Cols) != numKeys {
			return fmt.Errorf("matrix rows x cols must be %d keys, got %dx%d", numKeys, len(c.Matrix.Rows), len(c.Matrix.Cols))
		}
		for i, p := range c.Encoders.Pins {
			if p.A == "" || p.B == "" {
				return fmt.Errorf("encoders.pins[%d] needs both a and b", i)
			}
		}
	case "sim":
		if len(c.Sim.Keys) > numKeys {
			return fmt.Errorf("sim.keys has %d entries, max %d", len(c.Sim.Keys), numKeys)
		}
	default:
		return fmt.Errorf("matrix.backend must be \"gpio\" or \"sim\", got %q", c.Matrix.Backend)
	}

	if c.Matrix.DebounceMS <= 0 {
		return fmt.Errorf("matrix.debounce_ms must be > 0")
	}
	if c.Matrix.SettleUS < 0 {
		return fmt.Errorf("matrix.settle_us must be >= 0")
	}
	if c.Matrix.ScanIntervalMS <= 0 {
		return fmt.Errorf("matrix.scan_interval_ms must be > 0")
	}
	if c.Encoders.AccelThresholdMS <= 0 {
		return fmt.Errorf("encoders.accel_threshold_ms must be > 0")
	}

	switch c.HID.Backend {
	case "ble", "desktop":
	default:
		return fmt.Errorf("hid.backend must be \"ble\" or \"desktop\", got %q", c.HID.Backend)
	}

	if c.BLE.MaxMessage <= 0 {
		return fmt.Errorf("ble.max_message must be > 0")
	}
	// A chunk's base64 envelope must fit in one max_message write.
	if limit := protocol.MaxChunkSize(c.BLE.MaxMessage); c.BLE.ChunkSize <= 0 || c.BLE.ChunkSize > limit {
		return fmt.Errorf("ble.chunk_size must be in 1..%d for max_message %d, got %d", limit, c.BLE.MaxMessage, c.BLE.ChunkSize)
	}
	if c.BLE.InterChunkDelayMS < 0 {
		return fmt.Errorf("ble.inter_chunk_delay_ms must be >= 0")
	}

	for i, cb := range c.Combos {
		if len(cb.Keys) != 2 {
			return fmt.Errorf("combos[%d].keys must name exactly 2 keys", i)
		}
		for _, k := range cb.Keys {
			if k < 0 || k >= numKeys {
				return fmt.Errorf("combos[%d].keys: key %d out of range 0-%d", i, k, numKeys-1)
			}
		}
		if cb.HoldMS <= 0 {
			return fmt.Errorf("combos[%d].hold_ms must be > 0", i)
		}
		switch cb.Command {
		case CommandNextProfile, CommandPrevProfile:
		default:
			return fmt.Errorf("combos[%d].command must be %q or %q, got %q", i, CommandNextProfile, CommandPrevProfile, cb.Command)
		}
	}

	return nil
}

const defaultHeader = `# micropad configuration
#
# matrix.backend: "gpio" reads real pins (names as known to periph.io),
#                 "sim" drives the keypad from the desktop keyboard.
# hid.backend:    "ble" advertises a BLE HID keyboard,
#                 "desktop" injects input into this machine.
`

// WriteDefault writes the default config to DefaultConfigPath. It returns
// ("", nil) without touching anything when the file already exists.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	buf.WriteString("\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
