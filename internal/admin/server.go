package admin

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"sync"
)

// maxEnvelopeSize bounds a single command envelope read from the socket.
const maxEnvelopeSize = 1 << 20

// Server accepts admin connections on a local unix socket. Each connection
// carries exactly one command envelope and one response envelope, then closes.
// Connections are handled concurrently; serialization of the underlying
// writes is left to the store.
type Server struct {
	socketPath string
	handler    *Handler

	ln     net.Listener
	wg     sync.WaitGroup
	closed chan struct{}
}

// NewServer builds an admin server bound to socketPath once Start is called.
func NewServer(socketPath string, handler *Handler) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		closed:     make(chan struct{}),
	}
}

// Start binds the unix socket and begins accepting connections in the
// background. A stale socket file from a previous run is removed first; the
// socket is restricted to the owning user.
func (s *Server) Start() error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return err
	}
	s.ln = ln

	log.Printf("🔌 Admin socket server started at %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Close stops accepting connections and waits for in-flight exchanges.
func (s *Server) Close() error {
	close(s.closed)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
			}
			log.Printf("⚠️ Admin socket accept error: %v", err)
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn runs one read -> process -> respond -> close exchange.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var cmd Command
	dec := json.NewDecoder(io.LimitReader(conn, maxEnvelopeSize))
	if err := dec.Decode(&cmd); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		writeResponse(conn, errorResp("Invalid JSON"))
		return
	}

	writeResponse(conn, s.handler.Dispatch(cmd))
}

func writeResponse(conn net.Conn, resp Response) {
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Printf("⚠️ Admin socket write error: %v", err)
	}
}
