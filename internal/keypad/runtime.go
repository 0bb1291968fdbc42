// Package keypad runs the input polling loop: it turns matrix, encoder and
// combo state into actions, and services the config channel between scans.
package keypad

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/chaz8081/micropad/internal/action"
	"github.com/chaz8081/micropad/internal/input"
	"github.com/chaz8081/micropad/internal/profile"
)

// DefaultScanInterval is the polling period of Run.
const DefaultScanInterval = time.Millisecond

// Combo commands.
const (
	CommandNextProfile = "next_profile"
	CommandPrevProfile = "prev_profile"
)

// Profiles is the slice of the profile manager the runtime uses.
type Profiles interface {
	Current() *profile.Profile
	ActiveProfileID() int
	Exists(id int) bool
	SetActiveProfile(id int) error
	ReloadActive() (changed bool, err error)
}

// Executor runs one action to completion.
type Executor interface {
	Execute(a action.Action) error
}

// Stats counts input activity. EncoderTurned receives a positive detent
// count for either direction.
type Stats interface {
	KeyPressed(key int)
	EncoderTurned(encoder, n int)
}

// Events publishes unsolicited notifications to the host.
type Events interface {
	ProfileChanged(id int)
}

// MessageHandler consumes complete inbound config-channel messages.
type MessageHandler interface {
	HandleMessage(msg []byte)
}

// Combo binds a two-key chord to a command.
type Combo struct {
	Key1, Key2 int
	Hold       time.Duration
	Command    string
}

// Options wires a Runtime. Matrix, Profiles and Executor are required.
type Options struct {
	Matrix   *input.Matrix
	Encoders []*input.Encoder
	Combos   []Combo
	Clock    input.Clock

	Profiles Profiles
	Executor Executor
	Stats    Stats
	Events   Events

	// Messages delivers inbound config messages to Control.
	Messages <-chan []byte
	Control  MessageHandler

	// Reloads carries slot ids whose stored profile changed on disk.
	Reloads <-chan int

	ScanInterval time.Duration
}

// Runtime maps input edges to actions. Step and Run must not be called
// concurrently.
type Runtime struct {
	matrix   *input.Matrix
	encoders []*input.Encoder
	combos   *input.ComboDetector
	commands []string

	profiles Profiles
	exec     Executor
	stats    Stats
	events   Events

	messages <-chan []byte
	control  MessageHandler
	reloads  <-chan int
	interval time.Duration

	states  []bool
	pending []int
}

// New creates a Runtime and registers its combos. Combos beyond
// input.MaxCombos are dropped with a warning.
func New(opts Options) *Runtime {
	if opts.Matrix == nil || opts.Profiles == nil || opts.Executor == nil {
		panic("keypad: New requires a matrix, profiles and an executor")
	}
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = DefaultScanInterval
	}
	if opts.Stats == nil {
		opts.Stats = nopStats{}
	}
	if opts.Events == nil {
		opts.Events = nopEvents{}
	}

	r := &Runtime{
		matrix:   opts.Matrix,
		encoders: opts.Encoders,
		combos:   input.NewComboDetector(opts.Clock),
		profiles: opts.Profiles,
		exec:     opts.Executor,
		stats:    opts.Stats,
		events:   opts.Events,
		messages: opts.Messages,
		control:  opts.Control,
		reloads:  opts.Reloads,
		interval: opts.ScanInterval,
		pending:  make([]int, len(opts.Encoders)),
	}
	for _, c := range opts.Combos {
		if err := r.combos.Add(c.Key1, c.Key2, c.Hold); err != nil {
			slog.Warn("[KEYPAD] combo dropped", "keys", []int{c.Key1, c.Key2}, "error", err)
			continue
		}
		r.commands = append(r.commands, c.Command)
	}
	return r
}

// Run polls the inputs every scan interval until ctx is cancelled. Config
// messages and profile reloads are handled between scans.
func (r *Runtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("[KEYPAD] running", "interval", r.interval, "encoders", len(r.encoders), "combos", len(r.commands))
	for {
		select {
		case <-ctx.Done():
			slog.Info("[KEYPAD] stopped")
			return nil
		case <-ticker.C:
			r.Step()
		case msg, ok := <-r.messages:
			if !ok {
				r.messages = nil
				continue
			}
			if r.control != nil {
				r.control.HandleMessage(msg)
			}
		case id, ok := <-r.reloads:
			if !ok {
				r.reloads = nil
				continue
			}
			r.reload(id)
		}
	}
}

// Step performs one scan: matrix, encoders, combos, then dispatch.
func (r *Runtime) Step() {
	r.matrix.Scan()
	for _, e := range r.encoders {
		e.Update()
	}
	r.states = r.matrix.States(r.states)
	r.combos.Update(r.states)

	if i := r.combos.TriggeredIndex(); i >= 0 && i < len(r.commands) {
		r.runCommand(r.commands[i])
	}

	p := r.profiles.Current()
	for key := 0; key < r.matrix.NumKeys() && key < profile.NumKeys; key++ {
		if !r.matrix.JustPressed(key) {
			continue
		}
		r.stats.KeyPressed(key)
		slog.Debug("[KEYPAD] key pressed", "key", key, "action", action.Describe(p.Keys[key].Action))
		r.execute(p.Keys[key].Action)
	}
	for i, e := range r.encoders {
		if i >= profile.NumEncoders {
			break
		}
		r.dispatchEncoder(i, e, p.Encoders[i])
	}
}

func (r *Runtime) dispatchEncoder(i int, e *input.Encoder, cfg profile.EncoderConfig) {
	if d := e.Delta(); d != 0 {
		r.pending[i] += d
	}
	steps := cfg.StepsPerDetent
	if steps <= 0 {
		steps = profile.DefaultStepsPerDetent
	}

	detents := r.pending[i] / steps
	if detents != 0 {
		r.pending[i] -= detents * steps

		a := cfg.CW
		if detents < 0 {
			a = cfg.CCW
			detents = -detents
		}
		r.stats.EncoderTurned(i, detents)
		if cfg.Acceleration {
			a = scaleScroll(a, e.Acceleration())
		}
		slog.Debug("[KEYPAD] encoder turned", "encoder", i, "detents", detents, "action", action.Describe(a))
		for n := 0; n < detents; n++ {
			r.execute(a)
		}
	}

	if e.SWJustPressed() {
		slog.Debug("[KEYPAD] encoder pressed", "encoder", i)
		r.execute(cfg.Press)
	}
}

// scaleScroll multiplies the wheel value of a scroll action by the encoder
// acceleration, clamped to int8. Other actions are returned unchanged.
func scaleScroll(a action.Action, accel float64) action.Action {
	m, ok := a.(action.Mouse)
	if !ok || (m.Action != action.MouseScrollUp && m.Action != action.MouseScrollDown) {
		return a
	}
	v := m.Value
	if v == 0 {
		v = 1
	}
	scaled := math.Round(float64(v) * accel)
	m.Value = int8(max(math.MinInt8, min(math.MaxInt8, scaled)))
	return m
}

func (r *Runtime) execute(a action.Action) {
	if err := r.exec.Execute(a); err != nil {
		slog.Warn("[KEYPAD] action failed", "action", action.Describe(a), "error", err)
	}
}

func (r *Runtime) runCommand(cmd string) {
	switch cmd {
	case CommandNextProfile:
		r.cycleProfile(1)
	case CommandPrevProfile:
		r.cycleProfile(-1)
	default:
		slog.Warn("[KEYPAD] unknown combo command", "command", cmd)
	}
}

// cycleProfile activates the next occupied slot in direction dir, wrapping
// around. It does nothing when only one profile exists.
func (r *Runtime) cycleProfile(dir int) {
	cur := r.profiles.ActiveProfileID()
	for n := 1; n < profile.MaxProfiles; n++ {
		id := ((cur+dir*n)%profile.MaxProfiles + profile.MaxProfiles) % profile.MaxProfiles
		if !r.profiles.Exists(id) {
			continue
		}
		if err := r.profiles.SetActiveProfile(id); err != nil {
			slog.Warn("[KEYPAD] switching profile", "id", id, "error", err)
			return
		}
		r.events.ProfileChanged(id)
		return
	}
}

func (r *Runtime) reload(id int) {
	if id != r.profiles.ActiveProfileID() {
		return
	}
	changed, err := r.profiles.ReloadActive()
	if err != nil {
		slog.Warn("[KEYPAD] reloading active profile", "id", id, "error", err)
		return
	}
	if !changed {
		slog.Debug("[KEYPAD] active profile unchanged on disk", "id", id)
		return
	}
	slog.Info("[KEYPAD] active profile reloaded from disk", "id", id)
	r.events.ProfileChanged(id)
}

type nopStats struct{}

func (nopStats) KeyPressed(int)         {}
func (nopStats) EncoderTurned(int, int) {}

type nopEvents struct{}

func (nopEvents) ProfileChanged(int) {}
