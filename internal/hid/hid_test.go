package hid

import (
	"bytes"
	"testing"
)

func TestKeyboardReportLayout(t *testing.T) {
	got := KeyboardReport(ModLeftCtrl|ModLeftShift, KeyP)
	want := []byte{0x03, 0x00, 0x13, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("KeyboardReport() = % x, want % x", got, want)
	}
	if len(got) != KeyboardReportLen {
		t.Errorf("len = %d, want %d", len(got), KeyboardReportLen)
	}
}

func TestConsumerReportLittleEndian(t *testing.T) {
	got := ConsumerReport(UsageVolumeUp)
	if !bytes.Equal(got, []byte{0xE9, 0x00}) {
		t.Errorf("ConsumerReport(VolumeUp) = % x", got)
	}
}

func TestMouseReportSignedFields(t *testing.T) {
	got := MouseReport(ButtonLeft, -1, 2, -3)
	want := []byte{0x01, 0xFF, 0x02, 0xFD}
	if !bytes.Equal(got, want) {
		t.Errorf("MouseReport() = % x, want % x", got, want)
	}
}

func TestCharToKey(t *testing.T) {
	tests := []struct {
		c   rune
		key uint8
		mod uint8
		ok  bool
	}{
		{'a', KeyA, 0, true},
		{'z', KeyZ, 0, true},
		{'Q', 0x14, ModLeftShift, true},
		{'1', Key1, 0, true},
		{'9', 0x26, 0, true},
		{'0', Key0, 0, true},
		{' ', KeySpace, 0, true},
		{'\n', KeyEnter, 0, true},
		{'.', KeyDot, 0, true},
		{'/', KeySlash, 0, true},
		{':', KeySemicolon, ModLeftShift, true},
		{'-', KeyMinus, 0, true},
		{'(', 0, 0, false},
		{'é', 0, 0, false},
	}
	for _, tt := range tests {
		key, mod, ok := CharToKey(tt.c)
		if key != tt.key || mod != tt.mod || ok != tt.ok {
			t.Errorf("CharToKey(%q) = (0x%02x, 0x%02x, %v), want (0x%02x, 0x%02x, %v)",
				tt.c, key, mod, ok, tt.key, tt.mod, tt.ok)
		}
	}
}

func TestReportMapItems(t *testing.T) {
	depth, ids := 0, 0
	for i := 0; i < len(ReportMap); {
		prefix := ReportMap[i]
		size := int(prefix & 0x03)
		if size == 3 {
			size = 4
		}
		switch prefix & 0xfc {
		case 0xa0: // Collection
			depth++
		case 0xc0: // End Collection
			depth--
		case 0x84: // Report ID
			ids++
		}
		if depth < 0 {
			t.Fatalf("End Collection without Collection at offset %d", i)
		}
		i += 1 + size
		if i > len(ReportMap) {
			t.Fatalf("item at offset %d overruns the descriptor", i)
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced collections, depth %d", depth)
	}
	if ids != 3 {
		t.Errorf("ReportMap declares %d report IDs, want 3", ids)
	}
}
