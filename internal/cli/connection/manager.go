// Package connection provides server connections for keyden-cli.
package connection

import (
	"sync"
	"time"
)

// Manager builds clients from resolved CLI settings. The text client
// is shared and dialed lazily so interactive mode reuses one session;
// admin clients are stateless and built per call.
type Manager struct {
	server  string
	admin   string
	timeout time.Duration

	mu   sync.Mutex
	text *TextClient
}

// NewManager creates a manager for the given server addresses.
func NewManager(server, admin string, timeout time.Duration) *Manager {
	return &Manager{server: server, admin: admin, timeout: timeout}
}

// Text returns the shared text-protocol client, dialing on first use.
func (m *Manager) Text() (*TextClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.text == nil {
		m.text = NewTextClient(m.server, m.timeout)
	}
	if err := m.text.Connect(); err != nil {
		m.text = nil
		return nil, err
	}
	return m.text, nil
}

// Admin returns a client for the admin HTTP server.
func (m *Manager) Admin() *AdminClient {
	return NewAdminClient(m.admin, m.timeout)
}

// Server returns the data-plane address.
func (m *Manager) Server() string {
	return m.server
}

// Close drops the shared text connection if one was dialed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.text == nil {
		return nil
	}
	err := m.text.Close()
	m.text = nil
	return err
}
