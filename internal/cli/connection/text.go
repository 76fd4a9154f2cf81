// Package connection provides server connections for keyden-cli.
package connection

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// TextClient speaks the line-oriented text protocol with a keyden
// server over a single TCP connection. One client carries one server
// session, so the selected database persists across Send calls.
type TextClient struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	br      *bufio.Reader
}

// NewTextClient creates a client for the given address. The timeout
// bounds the dial and every command round-trip.
func NewTextClient(addr string, timeout time.Duration) *TextClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TextClient{addr: addr, timeout: timeout}
}

// Connect dials the server. Send dials on demand, so calling this
// directly is only needed to probe reachability.
func (c *TextClient) Connect() error {
	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}

	c.conn = conn
	c.br = bufio.NewReader(conn)
	return nil
}

// Send writes one command line and returns the response line without
// its trailing newline. The server answers every non-blank line with
// exactly one line, so Send never leaves data buffered.
func (c *TextClient) Send(line string) (string, error) {
	if err := c.Connect(); err != nil {
		return "", err
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	resp, err := c.br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("receive: %w", err)
	}
	return strings.TrimRight(resp, "\r\n"), nil
}

// Close tears down the connection. Safe without a prior Connect.
func (c *TextClient) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.br = nil
	return err
}

// Addr returns the configured server address.
func (c *TextClient) Addr() string {
	return c.addr
}

// IsError reports whether a response line carries a protocol error.
func IsError(response string) bool {
	return strings.HasPrefix(response, "ERR ")
}
