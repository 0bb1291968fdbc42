package stats

import (
	"sync"
	"testing"
)

func TestCounters(t *testing.T) {
	c := New(12, 2)
	c.KeyPressed(0)
	c.KeyPressed(0)
	c.KeyPressed(11)
	c.KeyPressed(12)
	c.KeyPressed(-1)
	c.EncoderTurned(1, -3)
	c.EncoderTurned(1, 2)
	c.EncoderTurned(5, 1)

	s := c.Snapshot()
	if len(s.KeyPresses) != 12 || len(s.EncoderTurns) != 2 {
		t.Fatalf("snapshot sizes = %d, %d", len(s.KeyPresses), len(s.EncoderTurns))
	}
	if s.KeyPresses[0] != 2 || s.KeyPresses[11] != 1 {
		t.Errorf("KeyPresses = %v", s.KeyPresses)
	}
	if s.EncoderTurns[1] != 5 || s.EncoderTurns[0] != 0 {
		t.Errorf("EncoderTurns = %v", s.EncoderTurns)
	}
}

func TestCountersConcurrent(t *testing.T) {
	c := New(12, 2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.KeyPressed(3)
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()
	if got := c.Snapshot().KeyPresses[3]; got != 8000 {
		t.Errorf("KeyPresses[3] = %d, want 8000", got)
	}
}
