// Package location implements the addressable location of the browser view:
// a path plus query parameters, with a history of every address it held.
package location

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Update describes one write to a location. Keys in Set are written, keys in
// Remove are deleted, and every other parameter is left as it was.
type Update struct {
	Set    map[string]string
	Remove []string
	// Replace overwrites the current history entry instead of pushing a new one.
	Replace bool
}

// Memory is an in-process location. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	path    string
	values  url.Values
	history []string
}

// NewMemory parses raw ("/path?a=b", "?a=b" or "") into a location.
func NewMemory(raw string) (*Memory, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("location.NewMemory: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	m := &Memory{path: path, values: u.Query()}
	m.history = []string{m.stringLocked()}
	return m, nil
}

// Params returns a copy of the current query parameters.
func (m *Memory) Params() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(url.Values, len(m.values))
	for k, v := range m.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// SetParams merges u into the current parameters and records the result in
// the history.
func (m *Memory) SetParams(u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range u.Set {
		m.values.Set(k, v)
	}
	for _, k := range u.Remove {
		m.values.Del(k)
	}
	addr := m.stringLocked()
	if u.Replace {
		m.history[len(m.history)-1] = addr
	} else {
		m.history = append(m.history, addr)
	}
	return nil
}

// String returns the current address, e.g. "/?page=1&sortBy=title".
func (m *Memory) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stringLocked()
}

// History returns every address pushed so far, oldest first.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

func (m *Memory) stringLocked() string {
	q := m.values.Encode()
	if q == "" {
		return m.path
	}
	return m.path + "?" + q
}
