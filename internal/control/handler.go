// Package control implements the JSON request/response/event protocol
// spoken over the config channel.
//
// Every request yields exactly one response carrying the request's id.
// Events are unsolicited and carry no id.
package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaz8081/micropad/internal/device"
	"github.com/chaz8081/micropad/internal/profile"
	"github.com/chaz8081/micropad/internal/stats"
)

// ProtocolVersion is written into every outbound envelope.
const ProtocolVersion = 1

// RebootDelay lets the reboot response drain before the restart.
const RebootDelay = 100 * time.Millisecond

// Envelope types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// EventProfileChanged is emitted after the active profile changes.
const EventProfileChanged = "profileChanged"

// Notifier sends a complete outbound message to the host.
type Notifier interface {
	Send(msg []byte) error
}

// Profiles is the profile store the handler reads and mutates.
type Profiles interface {
	List() []profile.Info
	Get(id int) (*profile.Profile, error)
	SaveProfile(id int, p *profile.Profile) error
	DeleteProfile(id int) error
	SetActiveProfile(id int) error
	ActiveProfileID() int
	FactoryReset() error
}

// DeviceInfo reports device identity.
type DeviceInfo interface {
	Info() device.Info
}

// Stats reports usage counters.
type Stats interface {
	Snapshot() stats.Snapshot
}

// Options configures a Handler. Zero values take defaults.
type Options struct {
	// Restart is called after a reboot response has been sent.
	Restart     func() error
	RebootDelay time.Duration
	Sleep       func(time.Duration)
	Now         func() time.Time
}

// Handler routes requests to commands and writes responses and events to
// a Notifier.
type Handler struct {
	profiles Profiles
	device   DeviceInfo
	stats    Stats
	out      Notifier
	opts     Options
}

// NewHandler creates a Handler. All dependencies are required.
func NewHandler(profiles Profiles, dev DeviceInfo, st Stats, out Notifier, opts Options) *Handler {
	if profiles == nil || dev == nil || st == nil || out == nil {
		panic("control: NewHandler requires profiles, device, stats and notifier")
	}
	if opts.Restart == nil {
		opts.Restart = func() error { return errors.New("control: restart not supported") }
	}
	if opts.RebootDelay <= 0 {
		opts.RebootDelay = RebootDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{profiles: profiles, device: dev, stats: st, out: out, opts: opts}
}

// args holds command arguments, which may appear at the top level of the
// request or nested under payload.
type args struct {
	Cmd       string          `json:"cmd"`
	ProfileID *int            `json:"profileId"`
	Profile   json.RawMessage `json:"profile"`
}

type request struct {
	V       *int            `json:"v"`
	Type    *string         `json:"type"`
	ID      json.RawMessage `json:"id"`
	Payload *args           `json:"payload"`
	args
}

func (r *request) cmd() string {
	if r.Cmd == "" && r.Payload != nil {
		return r.Payload.Cmd
	}
	return r.Cmd
}

func (r *request) profileID() (int, bool) {
	if r.ProfileID != nil {
		return *r.ProfileID, true
	}
	if r.Payload != nil && r.Payload.ProfileID != nil {
		return *r.Payload.ProfileID, true
	}
	return 0, false
}

func (r *request) profileDoc() json.RawMessage {
	if len(r.Profile) > 0 && !bytes.Equal(r.Profile, []byte("null")) {
		return r.Profile
	}
	if r.Payload != nil && len(r.Payload.Profile) > 0 && !bytes.Equal(r.Payload.Profile, []byte("null")) {
		return r.Payload.Profile
	}
	return nil
}

type envelope struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      json.RawMessage `json:"id,omitempty"`
	Event   string          `json:"event,omitempty"`
	TS      int64           `json:"ts"`
	Payload any             `json:"payload"`
}

type result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ProfileID *int   `json:"profileId,omitempty"`
}

type profileList struct {
	Profiles []profile.Info `json:"profiles"`
}

// HandleMessage processes one complete inbound message. Malformed JSON
// and non-request messages are dropped without a response.
func (h *Handler) HandleMessage(msg []byte) {
	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		slog.Warn("[CONTROL] dropping malformed message", "error", err, "bytes", len(msg))
		return
	}
	if req.Type != nil && *req.Type != TypeRequest {
		slog.Debug("[CONTROL] ignoring non-request message", "type", *req.Type)
		return
	}
	if len(req.ID) == 0 {
		req.ID = json.RawMessage("0")
	}

	cmd := req.cmd()
	slog.Debug("[CONTROL] command", "cmd", cmd, "id", string(req.ID))

	switch cmd {
	case "getDeviceInfo":
		h.respond(req.ID, h.device.Info())
	case "listProfiles":
		h.respond(req.ID, profileList{Profiles: nonNil(h.profiles.List())})
	case "getProfile":
		h.getProfile(&req)
	case "setProfile":
		h.setProfile(&req)
	case "setActiveProfile":
		h.setActiveProfile(&req)
	case "deleteProfile":
		h.deleteProfile(&req)
	case "getStats":
		h.respond(req.ID, h.stats.Snapshot())
	case "factoryReset":
		h.factoryReset(&req)
	case "reboot":
		h.reboot(&req)
	default:
		slog.Warn("[CONTROL] unknown command", "cmd", cmd)
		h.fail(req.ID, "Unknown command")
	}
}

func (h *Handler) getProfile(req *request) {
	id, _ := req.profileID()
	p, err := h.profiles.Get(id)
	if err != nil {
		h.fail(req.ID, errorText(err, "Profile not found"))
		return
	}
	doc, err := profile.Marshal(p)
	if err != nil {
		h.fail(req.ID, err.Error())
		return
	}
	h.respond(req.ID, json.RawMessage(doc))
}

func (h *Handler) setProfile(req *request) {
	doc := req.profileDoc()
	if doc == nil {
		h.fail(req.ID, "Missing profile")
		return
	}
	if err := ValidateProfile(doc); err != nil {
		slog.Warn("[CONTROL] rejected profile document", "error", err)
		h.fail(req.ID, err.Error())
		return
	}
	p, err := profile.Unmarshal(doc)
	if err != nil {
		h.fail(req.ID, errorText(err, "Malformed profile"))
		return
	}

	id, ok := req.profileID()
	if !ok {
		id = p.ID
	}
	if err := h.profiles.SaveProfile(id, p); err != nil {
		slog.Error("[CONTROL] saving profile", "id", id, "error", err)
		h.fail(req.ID, errorText(err, "Failed to save profile"))
		return
	}
	slog.Info("[CONTROL] profile saved", "id", id, "name", p.Name)
	h.respond(req.ID, result{Success: true, ProfileID: &id})
}

func (h *Handler) setActiveProfile(req *request) {
	id, _ := req.profileID()
	if err := h.profiles.SetActiveProfile(id); err != nil {
		slog.Warn("[CONTROL] switching profile", "id", id, "error", err)
		h.fail(req.ID, errorText(err, "Failed to switch profile"))
		return
	}
	h.respond(req.ID, result{Success: true, ProfileID: &id})
	h.ProfileChanged(id)
}

func (h *Handler) deleteProfile(req *request) {
	id, ok := req.profileID()
	if !ok {
		h.fail(req.ID, "Missing profileId")
		return
	}
	if err := h.profiles.DeleteProfile(id); err != nil {
		h.fail(req.ID, errorText(err, "Failed to delete profile"))
		return
	}
	h.respond(req.ID, result{Success: true, ProfileID: &id})
}

func (h *Handler) factoryReset(req *request) {
	if err := h.profiles.FactoryReset(); err != nil {
		slog.Error("[CONTROL] factory reset", "error", err)
		h.fail(req.ID, errorText(err, "Factory reset failed"))
		return
	}
	h.respond(req.ID, result{Success: true})
	h.ProfileChanged(h.profiles.ActiveProfileID())
}

func (h *Handler) reboot(req *request) {
	h.respond(req.ID, result{Success: true})
	h.opts.Sleep(h.opts.RebootDelay)
	slog.Info("[CONTROL] rebooting")
	if err := h.opts.Restart(); err != nil {
		slog.Error("[CONTROL] restart failed", "error", err)
	}
}

// ProfileChanged emits the profileChanged event for id.
func (h *Handler) ProfileChanged(id int) {
	h.Emit(EventProfileChanged, struct {
		ProfileID int `json:"profileId"`
	}{id})
}

// Emit sends an unsolicited event. Delivery is best effort.
func (h *Handler) Emit(event string, payload any) {
	h.send(envelope{
		V:       ProtocolVersion,
		Type:    TypeEvent,
		Event:   event,
		TS:      h.opts.Now().Unix(),
		Payload: payload,
	})
}

func (h *Handler) respond(id json.RawMessage, payload any) {
	h.send(envelope{
		V:       ProtocolVersion,
		Type:    TypeResponse,
		ID:      id,
		TS:      h.opts.Now().Unix(),
		Payload: payload,
	})
}

func (h *Handler) fail(id json.RawMessage, msg string) {
	h.respond(id, result{Success: false, Error: msg})
}

func (h *Handler) send(env envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		slog.Error("[CONTROL] encoding message", "type", env.Type, "error", err)
		return
	}
	if err := h.out.Send(msg); err != nil {
		slog.Debug("[CONTROL] message not delivered", "type", env.Type, "event", env.Event, "error", err)
	}
}

// errorText turns a profile error into the message shown by the host app.
func errorText(err error, fallback string) string {
	switch {
	case errors.Is(err, profile.ErrInvalidID):
		return "Invalid profile id"
	case errors.Is(err, profile.ErrNotFound):
		return "Profile not found"
	case errors.Is(err, profile.ErrMalformed):
		return "Malformed profile"
	case errors.Is(err, profile.ErrLastProfile):
		return "Cannot delete the last profile"
	case errors.Is(err, profile.ErrActiveProfile):
		return "Cannot delete the active profile"
	}
	return fmt.Sprintf("%s: %v", fallback, err)
}

func nonNil(list []profile.Info) []profile.Info {
	if list == nil {
		return []profile.Info{}
	}
	return list
}
