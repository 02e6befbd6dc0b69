package devserve

import (
	"net"
	"strconv"
)

// SelectPort probes (host, preferred) and returns preferred if it binds.
// Otherwise it binds (host, 0) and returns whatever port the OS hands out.
// Probe sockets are closed before returning; the caller binds for real.
func SelectPort(host string, preferred int) (int, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(preferred)))
	if err == nil {
		ln.Close()
		return preferred, nil
	}

	ln, err = net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
