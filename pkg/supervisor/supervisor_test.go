package supervisor

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	_, ok := New().(NoopNotifier)
	assert.True(t, ok)
}

func TestNewWithSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "/run/systemd/notify")

	n, ok := New().(*SystemdNotifier)
	require.True(t, ok)
	assert.Equal(t, "/run/systemd/notify", n.Socket)
}

func TestSystemdNotifier(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "notify.sock")

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: socket, Net: "unixgram"})
	require.NoError(t, err)
	defer conn.Close()

	n := &SystemdNotifier{Socket: socket}
	require.NoError(t, n.Notify(StateReady))

	buf := make([]byte, 256)
	read, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "READY=1\nSTATUS=running", string(buf[:read]))

	require.NoError(t, n.Notify(StateStopping))
	read, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "STOPPING=1\nSTATUS=stopping", string(buf[:read]))
}

func TestSystemdNotifierMissingSocket(t *testing.T) {
	n := &SystemdNotifier{Socket: filepath.Join(t.TempDir(), "gone.sock")}
	assert.Error(t, n.Notify(StateReady))
}
