//go:build !linux

package system

import "context"

// StartKeyboard is a no-op outside linux.
func StartKeyboard(ctx context.Context, logger Logger, h KeyHandlers) {
	if logger != nil {
		logger.Infof("input", "keyboard control is only supported on linux")
	}
}
