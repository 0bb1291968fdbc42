//go:build unix

package device

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func restart(exe string, args, env []string) error {
	if err := unix.Exec(exe, args, env); err != nil {
		return fmt.Errorf("device: exec %s: %w", exe, err)
	}
	return nil
}
