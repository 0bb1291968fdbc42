//go:build !unix

package device

import "errors"

func restart(string, []string, []string) error {
	return errors.New("device: restart not supported on this platform")
}
