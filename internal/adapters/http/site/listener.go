package site

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const unixScheme = "unix://"

// Listen opens addr, which is either unix:///path/to.sock or a TCP address.
// A stale socket file is removed before binding and the new socket is
// chmod'ed to mode.
func Listen(addr string, mode os.FileMode) (net.Listener, error) {
	path, ok := strings.CutPrefix(addr, unixScheme)
	if !ok {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
		}
		return ln, nil
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty socket path", ErrListen)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: remove stale socket: %w", ErrListen, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListen, path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("%w: chmod socket: %w", ErrListen, err)
	}
	return ln, nil
}
