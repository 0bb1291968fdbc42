package inject

import "fmt"

// mockRobot records synthetic input as readable strings.
type mockRobot struct {
	events []string
	err    error
}

func (r *mockRobot) KeyToggle(key string, down bool) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, fmt.Sprintf("key %s %s", key, upDown(down)))
	return nil
}

func (r *mockRobot) KeyTap(key string) error {
	r.events = append(r.events, "tap "+key)
	return nil
}

func (r *mockRobot) MouseToggle(button string, down bool) error {
	r.events = append(r.events, fmt.Sprintf("mouse %s %s", button, upDown(down)))
	return nil
}

func (r *mockRobot) Move(dx, dy int) {
	r.events = append(r.events, fmt.Sprintf("move %d %d", dx, dy))
}

func (r *mockRobot) Scroll(dy int) {
	r.events = append(r.events, fmt.Sprintf("scroll %d", dy))
}

func upDown(down bool) string {
	if down {
		return "down"
	}
	return "up"
}
