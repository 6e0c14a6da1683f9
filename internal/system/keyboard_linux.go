//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// StartKeyboard watches Linux evdev devices under /dev/input/event* and
// dispatches R and F4 presses to h until ctx is done. F4 fires OnExit once.
//
// It is best-effort: if no input devices are available, it logs and returns.
func StartKeyboard(ctx context.Context, logger Logger, h KeyHandlers) {
	tvSize := int(binary.Size(unix.Timeval{}))
	if tvSize <= 0 {
		tvSize = 16
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for keyboard control")
		}
		return
	}

	var once sync.Once
	onExit := h.OnExit
	if onExit != nil {
		h.OnExit = func() {
			once.Do(func() {
				if logger != nil {
					logger.Infof("input", "F4 pressed: exiting")
				}
				onExit()
			})
		}
	}

	for _, path := range paths {
		go readDevice(ctx, path, tvSize, h)
	}
}

func readDevice(ctx context.Context, path string, tvSize int, h KeyHandlers) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, code := range keyPresses(buf[:n], tvSize) {
			if h.dispatch(code) {
				return
			}
		}
	}
}
