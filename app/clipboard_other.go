//go:build !windows

package app

import "errors"

func copyToClipboard(text string) error {
	return errors.New("clipboard copy is not supported on this platform")
}
