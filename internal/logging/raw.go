package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// RawLogger traces config-channel traffic. in is true for host-to-device
// writes and false for device-to-host notifications.
type RawLogger interface {
	Log(in bool, data []byte)
}

type rawLogger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewRaw returns a RawLogger writing one hex line per frame to w. A nil
// writer yields a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// OpenRaw picks the raw trace destination: file when set, stdout at trace
// level, otherwise nothing. The closer is nil unless a file was opened.
func OpenRaw(level, file string) (RawLogger, io.Closer, error) {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return NewRaw(nil), nil, fmt.Errorf("logging: open raw log %s: %w", file, err)
		}
		return NewRaw(f), f, nil
	}
	if ParseLevel(level) <= LevelTrace {
		return NewRaw(os.Stdout), nil, nil
	}
	return NewRaw(nil), nil, nil
}

func (r *rawLogger) Log(in bool, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	dir := "D->H"
	if in {
		dir = "H->D"
	}

	const hexdigits = "0123456789abcdef"
	var hex strings.Builder
	hex.Grow(len(data) * 3)
	for i, b := range data {
		if i > 0 {
			hex.WriteByte(' ')
		}
		hex.WriteByte(hexdigits[b>>4])
		hex.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %d bytes: %s\n", r.now().Format("2006/01/02 15:04:05.000"), dir, len(data), hex.String())

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
