package relay

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/devlg/devlg/internal/errors"
)

// DialTimeout bounds the TCP connect attempt and the subsequent handshake
// phase. The interactive phase does not use this timeout.
const DialTimeout = 10 * time.Second

// Dialer opens the reliable byte-stream connection to the remote host.
type Dialer interface {
	Dial(host string, port int) (net.Conn, error)
}

// netDialer is the production Dialer.
type netDialer struct {
	timeout time.Duration
}

// NewDialer returns a Dialer with the default connect timeout.
func NewDialer() Dialer {
	return &netDialer{timeout: DialTimeout}
}

func (d *netDialer) Dial(host string, port int) (net.Conn, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, d.timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Can't reach %s", addr),
			suggestionForDialError(err))
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	return conn, nil
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that box? Try: ssh <host>"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}
