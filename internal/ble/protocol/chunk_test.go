package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testMessage(n int) []byte {
	var b bytes.Buffer
	b.WriteString(`{"v":1,"type":"response","id":7,"payload":{"text":"`)
	for b.Len() < n-3 {
		b.WriteString(`a"\é`[b.Len()%4 : b.Len()%4+1])
	}
	b.WriteString(`"}}`)
	return b.Bytes()[:n]
}

func TestSplitSmallMessageUnchanged(t *testing.T) {
	msg := []byte(`{"v":1,"type":"event","event":"profileChanged"}`)
	frames := Split(msg, MaxMessageBytes, ChunkSize)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !bytes.Equal(frames[0], msg) {
		t.Errorf("frame[0] = %s, want original message", frames[0])
	}
}

func TestSplitAtThreshold(t *testing.T) {
	if got := len(Split(testMessage(512), MaxMessageBytes, ChunkSize)); got != 1 {
		t.Errorf("512-byte message: got %d frames, want 1", got)
	}
	if got := len(Split(testMessage(513), MaxMessageBytes, ChunkSize)); got != 2 {
		t.Errorf("513-byte message: got %d frames, want 2", got)
	}
}

func TestSplitEmitsBase64Only(t *testing.T) {
	frames := Split(testMessage(1200), MaxMessageBytes, ChunkSize)
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}
	for i, f := range frames {
		var c map[string]any
		if err := json.Unmarshal(f, &c); err != nil {
			t.Fatalf("frame %d is not JSON: %v", i, err)
		}
		if _, ok := c["data"]; ok {
			t.Errorf("frame %d carries legacy data field", i)
		}
		if c["chunk"] != float64(i) || c["total"] != float64(4) {
			t.Errorf("frame %d header = chunk %v total %v", i, c["chunk"], c["total"])
		}
	}
}

func TestSplitFramesFitLimit(t *testing.T) {
	msg := testMessage(64 * 1024)
	tests := []struct {
		name string
		size int
	}{
		{"default", ChunkSize},
		{"oversized slice capped", 480},
		{"largest slice", MaxChunkSize(MaxMessageBytes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := Split(msg, MaxMessageBytes, tt.size)
			var r Reassembler
			var got []byte
			for i, f := range frames {
				if len(f) > MaxMessageBytes {
					t.Fatalf("frame %d is %d bytes, limit %d", i, len(f), MaxMessageBytes)
				}
				out, complete, err := r.Feed(f)
				if err != nil {
					t.Fatalf("Feed(frame %d) error = %v", i, err)
				}
				if complete {
					got = out
				}
			}
			if !bytes.Equal(got, msg) {
				t.Errorf("reassembled %d bytes, want %d", len(got), len(msg))
			}
		})
	}
}

func TestMaxChunkSize(t *testing.T) {
	if got := MaxChunkSize(MaxMessageBytes); got != 354 {
		t.Errorf("MaxChunkSize(512) = %d, want 354", got)
	}
	if ChunkSize > MaxChunkSize(MaxMessageBytes) {
		t.Errorf("ChunkSize %d exceeds MaxChunkSize %d", ChunkSize, MaxChunkSize(MaxMessageBytes))
	}
	if got := MaxChunkSize(10); got != 1 {
		t.Errorf("MaxChunkSize(10) = %d, want 1", got)
	}
}

func TestRoundTrip1200(t *testing.T) {
	msg := testMessage(1200)
	var r Reassembler
	var got []byte
	frames := Split(msg, MaxMessageBytes, ChunkSize)
	for i, f := range frames {
		out, complete, err := r.Feed(f)
		if err != nil {
			t.Fatalf("Feed(frame %d) error = %v", i, err)
		}
		if complete != (i == len(frames)-1) {
			t.Fatalf("frame %d complete = %v", i, complete)
		}
		got = out
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("reassembled %d bytes, want original %d bytes", len(got), len(msg))
	}
	if r.Pending() {
		t.Error("reassembler still pending after complete message")
	}
}

func TestChunkZeroRestartsSequence(t *testing.T) {
	first := Split(testMessage(1200), MaxMessageBytes, ChunkSize)
	second := testMessage(1000)
	secondFrames := Split(second, MaxMessageBytes, ChunkSize)

	var r Reassembler
	r.Feed(first[0])
	r.Feed(first[1])

	var got []byte
	for _, f := range secondFrames {
		out, complete, err := r.Feed(f)
		if err != nil {
			t.Fatalf("Feed() error = %v", err)
		}
		if complete {
			got = out
		}
	}
	if !bytes.Equal(got, second) {
		t.Error("partial first message leaked into the second")
	}
}

func TestFeedPlainMessage(t *testing.T) {
	var r Reassembler
	msg := []byte(`{"v":1,"type":"request","id":1,"cmd":"getStats"}`)
	out, complete, err := r.Feed(msg)
	if err != nil || !complete || !bytes.Equal(out, msg) {
		t.Errorf("Feed(plain) = (%s, %v, %v)", out, complete, err)
	}
}

func TestFeedPlainMessageMentioningChunk(t *testing.T) {
	var r Reassembler
	msg := []byte(`{"v":1,"type":"request","id":2,"cmd":"setProfile","profile":{"name":"\"chunk\":1"}}`)
	out, complete, err := r.Feed(msg)
	if err != nil || !complete || !bytes.Equal(out, msg) {
		t.Errorf("Feed() = (%s, %v, %v), want message passed through", out, complete, err)
	}
}

func TestLegacyDataChunks(t *testing.T) {
	msg := `{"v":1,"type":"request","id":9,"cmd":"setProfile","profile":{"name":"Say \"hi\" C:\\"}}`
	half := len(msg) / 2
	escape := func(s string) string {
		s = strings.ReplaceAll(s, `\`, `\\`)
		return strings.ReplaceAll(s, `"`, `\"`)
	}
	frames := []string{
		`{"chunk":0,"total":2,"data":"` + escape(msg[:half]) + `"}`,
		`{"chunk":1,"total":2,"data":"` + escape(msg[half:]) + `"}`,
	}

	var r Reassembler
	var got []byte
	for _, f := range frames {
		out, complete, err := r.Feed([]byte(f))
		if err != nil {
			t.Fatalf("Feed(%s) error = %v", f, err)
		}
		if complete {
			got = out
		}
	}
	if string(got) != msg {
		t.Errorf("reassembled = %s\nwant %s", got, msg)
	}
}

func TestLegacyRawDataNotValidJSON(t *testing.T) {
	// Raw slices may cut an escape sequence in half, which breaks strict
	// JSON decoding of the envelope.
	frame := []byte(`{"chunk":0,"total":1,"data":"{\"a\":\"x\\"}`)
	index, total, data, ok, err := ParseChunk(frame)
	if err != nil || !ok {
		t.Fatalf("ParseChunk() = ok %v err %v", ok, err)
	}
	if index != 0 || total != 1 {
		t.Errorf("header = %d/%d, want 0/1", index, total)
	}
	if string(data) != `{"a":"x\` {
		t.Errorf("data = %q", data)
	}
}

func TestLegacyDataNotJSONUnescaped(t *testing.T) {
	// Valid JSON, but \n is two raw message bytes, not a newline.
	frame := []byte(`{"chunk":0,"total":1,"data":"a\nb\u0041"}`)
	_, _, data, ok, err := ParseChunk(frame)
	if err != nil || !ok {
		t.Fatalf("ParseChunk() = ok %v err %v", ok, err)
	}
	if want := `a\nb\u0041`; string(data) != want {
		t.Errorf("data = %q, want %q", data, want)
	}
}

func TestStrayChunkDropped(t *testing.T) {
	frames := Split(testMessage(1200), MaxMessageBytes, ChunkSize)
	var r Reassembler
	out, complete, err := r.Feed(frames[1])
	if err != nil || complete || out != nil {
		t.Errorf("Feed(stray) = (%s, %v, %v), want dropped", out, complete, err)
	}
	if r.Pending() {
		t.Error("stray chunk started a sequence")
	}
}

func TestBadChunk(t *testing.T) {
	var r Reassembler
	_, _, err := r.Feed([]byte(`{"chunk":0,"total":1,"dataB64":"!!!"}`))
	if !errors.Is(err, ErrBadChunk) {
		t.Errorf("Feed(bad base64) error = %v, want ErrBadChunk", err)
	}
	_, _, err = r.Feed([]byte(`{"chunk":0,"dataB64":""}`))
	if !errors.Is(err, ErrBadChunk) {
		t.Errorf("Feed(missing total) error = %v, want ErrBadChunk", err)
	}
}
