// Package protocol frames config-channel messages for a size-limited BLE
// characteristic: oversized messages travel as a sequence of chunk
// envelopes and are reassembled on the other side.
package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

const (
	// MaxMessageBytes is the largest message sent as a single write or
	// notification.
	MaxMessageBytes = 512
	// ChunkSize is the message slice carried by one chunk envelope. Its
	// base64 form plus the envelope fits in MaxMessageBytes.
	ChunkSize = 352
)

// chunkOverhead is the envelope around the base64 payload:
// {"chunk":,"total":,"dataB64":""} plus room for eight index digits.
const chunkOverhead = 32 + 8

// MaxChunkSize returns the largest message slice whose chunk envelope
// still fits in maxMessage bytes.
func MaxChunkSize(maxMessage int) int {
	n := (maxMessage - chunkOverhead) / 4 * 3
	return max(n, 1)
}

// ErrBadChunk is returned for chunk envelopes that cannot be decoded.
var ErrBadChunk = errors.New("protocol: malformed chunk")

// Chunk is one fragment of a larger message. Only DataB64 is emitted;
// Data is the legacy raw-string form still accepted on input.
type Chunk struct {
	Index   int    `json:"chunk"`
	Total   int    `json:"total"`
	DataB64 string `json:"dataB64,omitempty"`
	Data    string `json:"data,omitempty"`
}

// Split frames msg for a transport limited to maxMessage bytes per write.
// Messages that fit are returned unchanged as the only frame; larger ones
// become ceil(len/size) chunk envelopes. size is capped at
// MaxChunkSize(maxMessage).
func Split(msg []byte, maxMessage, size int) [][]byte {
	if maxMessage <= 0 {
		maxMessage = MaxMessageBytes
	}
	if size <= 0 {
		size = ChunkSize
	}
	size = min(size, MaxChunkSize(maxMessage))
	if len(msg) <= maxMessage {
		return [][]byte{msg}
	}

	total := (len(msg) + size - 1) / size
	frames := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		end := min((i+1)*size, len(msg))
		c := Chunk{
			Index:   i,
			Total:   total,
			DataB64: base64.StdEncoding.EncodeToString(msg[i*size : end]),
		}
		frame, err := json.Marshal(c)
		if err != nil {
			// Chunk has only ints and strings.
			panic(fmt.Sprintf("protocol: encode chunk: %v", err))
		}
		frames = append(frames, frame)
	}
	return frames
}

var (
	chunkMarker   = []byte(`"chunk":`)
	dataB64Marker = []byte(`"dataB64":`)
	legacyMarker  = []byte(`"data":"`)
)

// ParseChunk decodes a chunk envelope. ok is false when frame is a plain
// message rather than a chunk. Frames carrying dataB64 are decoded as JSON;
// frames carrying only data use the legacy raw-string form, whose payload
// is the unescaped message slice and must not be JSON-unescaped.
func ParseChunk(frame []byte) (index, total int, data []byte, ok bool, err error) {
	if !bytes.Contains(frame, chunkMarker) {
		return 0, 0, nil, false, nil
	}

	var env struct {
		Index   *int    `json:"chunk"`
		Total   *int    `json:"total"`
		DataB64 *string `json:"dataB64"`
	}
	jerr := json.Unmarshal(frame, &env)
	if jerr == nil && env.Index == nil {
		// A complete message that merely mentions "chunk" in a string.
		return 0, 0, nil, false, nil
	}
	if !bytes.Contains(frame, dataB64Marker) && bytes.Contains(frame, legacyMarker) {
		return parseLegacyChunk(frame)
	}
	if jerr != nil {
		return 0, 0, nil, true, fmt.Errorf("%w: %v", ErrBadChunk, jerr)
	}
	if env.Total == nil {
		return 0, 0, nil, true, fmt.Errorf("%w: missing total", ErrBadChunk)
	}
	if env.DataB64 != nil {
		data, err = base64.StdEncoding.DecodeString(*env.DataB64)
		if err != nil {
			return 0, 0, nil, true, fmt.Errorf("%w: %v", ErrBadChunk, err)
		}
	}
	return *env.Index, *env.Total, data, true, nil
}

// parseLegacyChunk handles {"chunk":i,"total":n,"data":"..."} where data is
// the raw message slice, which is not always valid JSON. Only \" and \\ are
// unescaped.
func parseLegacyChunk(frame []byte) (index, total int, data []byte, ok bool, err error) {
	index, ok1 := intAfter(frame, chunkMarker)
	total, ok2 := intAfter(frame, []byte(`"total":`))
	if !ok1 || !ok2 {
		return 0, 0, nil, true, fmt.Errorf("%w: missing chunk or total", ErrBadChunk)
	}

	start := bytes.Index(frame, legacyMarker)
	end := bytes.LastIndexByte(frame, '"')
	if start < 0 || end < start+len(legacyMarker) {
		return 0, 0, nil, true, fmt.Errorf("%w: missing data", ErrBadChunk)
	}
	data = frame[start+len(legacyMarker) : end]
	data = bytes.ReplaceAll(data, []byte(`\"`), []byte(`"`))
	data = bytes.ReplaceAll(data, []byte(`\\`), []byte(`\`))
	return index, total, data, true, nil
}

func intAfter(b, key []byte) (int, bool) {
	i := bytes.Index(b, key)
	if i < 0 {
		return 0, false
	}
	rest := bytes.TrimLeft(b[i+len(key):], " ")
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	v, err := strconv.Atoi(string(rest[:n]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Reassembler rebuilds messages from a stream of frames. It is not safe
// for concurrent use.
type Reassembler struct {
	buf      bytes.Buffer
	received int
	total    int
	active   bool
}

// Feed consumes one frame. It returns a complete message when frame is a
// plain message or the final chunk of a sequence. Chunk 0 always starts a
// new sequence, discarding any partial one.
func (r *Reassembler) Feed(frame []byte) (msg []byte, complete bool, err error) {
	if len(frame) == 0 {
		return nil, false, nil
	}

	index, total, data, isChunk, err := ParseChunk(frame)
	if !isChunk {
		return frame, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if index == 0 {
		if r.active {
			slog.Warn("[CONFIG] chunk 0 restarted an incomplete message", "received", r.received, "total", r.total)
		}
		r.buf.Reset()
		r.received = 0
		r.total = total
		r.active = true
	} else if !r.active {
		slog.Warn("[CONFIG] dropping chunk outside a sequence", "chunk", index, "total", total)
		return nil, false, nil
	}

	r.buf.Write(data)
	r.received++
	slog.Debug("[CONFIG] chunk received", "chunk", r.received, "total", r.total, "bytes", len(data))

	if r.received < r.total {
		return nil, false, nil
	}
	msg = bytes.Clone(r.buf.Bytes())
	r.Reset()
	return msg, true, nil
}

// Pending reports whether a chunk sequence is in progress.
func (r *Reassembler) Pending() bool { return r.active }

// Reset discards any partial message.
func (r *Reassembler) Reset() {
	r.buf.Reset()
	r.received = 0
	r.total = 0
	r.active = false
}
