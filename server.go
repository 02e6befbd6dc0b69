package devserve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Server owns the listening socket and the HTTP serve loop for one Config.
type Server struct {
	conf     Config
	bound    int
	listener net.Listener
	httpd    *http.Server
}

func NewServer(conf Config) *Server {
	return &Server{conf: conf}
}

// Start selects a port and binds the listener. After Start returns nil the
// server is ready to accept; BoundPort and URL report the actual address.
func (s *Server) Start() error {
	port, err := SelectPort(s.conf.Host, s.conf.Port)
	if err != nil {
		return fmt.Errorf("no port available on %s: %w", s.conf.Host, err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.conf.Host, strconv.Itoa(port)))
	if err != nil {
		// the probed port got taken between probe and bind
		ln, err = net.Listen("tcp", net.JoinHostPort(s.conf.Host, "0"))
		if err != nil {
			return fmt.Errorf("no port available on %s: %w", s.conf.Host, err)
		}
	}

	s.listener = ln
	s.bound = ln.Addr().(*net.TCPAddr).Port

	var handler http.Handler = &FileHandler{Root: s.conf.Root}
	if !s.conf.Quiet {
		handler = accessLog(handler)
	}
	s.httpd = &http.Server{Handler: handler}
	return nil
}

// Serve blocks running the accept loop until Shutdown or a listener error.
// Like http.Server.Serve it returns http.ErrServerClosed after Shutdown.
func (s *Server) Serve() error {
	return s.httpd.Serve(s.listener)
}

// Shutdown stops accepting and waits for in-flight requests, up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}

func (s *Server) BoundPort() int {
	return s.bound
}

func (s *Server) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.conf.Host, strconv.Itoa(s.bound)))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		logrus.Infof("%s %s %s %d", r.RemoteAddr, r.Method, r.URL.Path, sw.status)
	})
}
