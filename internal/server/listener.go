package server

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/liveserve/liveserve/internal/config"
	serrors "github.com/liveserve/liveserve/internal/errors"
)

const maxPort = 65535

// bindListener binds the preferred port on loopback. When the
// preferred port is the documented default and already in use, the
// next ports are tried up to the range ceiling; an explicitly chosen
// port fails immediately instead of guessing. Returns the listener and
// the port actually bound.
func bindListener(preferredPort int) (net.Listener, int, error) {
	allowFallback := preferredPort == config.DefaultPort
	port := preferredPort

	for {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return listener, port, nil
		}

		if !allowFallback || !isAddrInUse(err) {
			return nil, 0, serrors.Network(
				fmt.Sprintf("failed to bind to 127.0.0.1:%d", port), err)
		}

		if port == maxPort {
			return nil, 0, serrors.Network(
				fmt.Sprintf("failed to find an available port starting at %d", preferredPort), err)
		}
		port++
	}
}

func isAddrInUse(err error) bool {
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	// Some platforms surface the condition only as text.
	return strings.Contains(err.Error(), "address already in use")
}
