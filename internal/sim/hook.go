package sim

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// EncoderKeys names the desktop keys that turn and press one encoder.
type EncoderKeys struct {
	CW    string
	CCW   string
	Press string
}

// DefaultKeys maps the 3x4 matrix onto the left side of a QWERTY layout.
var DefaultKeys = []string{"1", "2", "3", "4", "q", "w", "e", "r", "a", "s", "d", "f"}

// DefaultEncoderKeys maps the two encoders onto bracket and equals keys.
var DefaultEncoderKeys = []EncoderKeys{
	{CW: "]", CCW: "[", Press: "p"},
	{CW: "=", CCW: "-", Press: "0"},
}

// Listener feeds global key events from gohook into a Board.
type Listener struct {
	board    *Board
	keys     []string
	encoders []EncoderKeys
	done     chan struct{}
	once     sync.Once
}

// NewListener binds keys[i] to matrix key i and encoders[i] to encoder i.
func NewListener(board *Board, keys []string, encoders []EncoderKeys) *Listener {
	return &Listener{
		board:    board,
		keys:     keys,
		encoders: encoders,
		done:     make(chan struct{}),
	}
}

// Start registers the hooks and blocks until Stop is called. Run it in a
// goroutine.
func (l *Listener) Start() {
	for i, k := range l.keys {
		if k == "" {
			continue
		}
		key := i
		hook.Register(hook.KeyDown, []string{k}, func(hook.Event) { l.board.Press(key, true) })
		hook.Register(hook.KeyUp, []string{k}, func(hook.Event) { l.board.Press(key, false) })
	}

	for i, e := range l.encoders {
		enc := i
		if e.CW != "" {
			hook.Register(hook.KeyDown, []string{e.CW}, func(hook.Event) { l.board.Turn(enc, 1) })
		}
		if e.CCW != "" {
			hook.Register(hook.KeyDown, []string{e.CCW}, func(hook.Event) { l.board.Turn(enc, -1) })
		}
		if e.Press != "" {
			hook.Register(hook.KeyDown, []string{e.Press}, func(hook.Event) { l.board.PushButton(enc, true) })
			hook.Register(hook.KeyUp, []string{e.Press}, func(hook.Event) { l.board.PushButton(enc, false) })
		}
	}

	slog.Info("[SIM] keyboard hook started", "keys", len(l.keys), "encoders", len(l.encoders))

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
}

// Stop ends the hook. It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
