package supervisor

import (
	"net"
	"os"

	"github.com/pkg/errors"
)

// States understood by the host supervisor.
const (
	StateReady     = "READY=1\nSTATUS=running"
	StateStopping  = "STOPPING=1\nSTATUS=stopping"
	StateReloading = "RELOADING=1"
)

// Notifier delivers textual state notifications to the process supervisor.
type Notifier interface {
	Notify(state string) error
}

// New returns a systemd notifier when NOTIFY_SOCKET is set, otherwise a
// no-op notifier.
func New() Notifier {
	if socket := os.Getenv("NOTIFY_SOCKET"); socket != "" {
		return &SystemdNotifier{Socket: socket}
	}
	return NoopNotifier{}
}

// SystemdNotifier speaks the sd_notify datagram protocol.
type SystemdNotifier struct {
	Socket string
}

func (n *SystemdNotifier) Notify(state string) error {
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: n.Socket, Net: "unixgram"})
	if err != nil {
		return errors.Wrap(err, "failed to dial notify socket")
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(state)); err != nil {
		return errors.Wrap(err, "failed to write notification")
	}

	return nil
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(string) error { return nil }
