package admin

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client dials the admin socket for a single command/response exchange. It is
// the only path the REST adapter and sopyctl use to reach the config store;
// neither touches the database directly.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for the admin socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 10 * time.Second}
}

// Send performs one exchange: dial, write the command envelope, read the
// response envelope, close. A transport failure is returned as an error;
// a protocol-level failure comes back inside the Response.
func (c *Client) Send(cmd Command) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("admin socket not available: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return nil, fmt.Errorf("send admin command: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("read admin response: %w", err)
	}
	return resp, nil
}
