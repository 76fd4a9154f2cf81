// Package repl provides the interactive shell for keyden-cli.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultHistorySize caps how many lines persist across sessions.
const DefaultHistorySize = 1000

// History holds shell history with on-disk persistence. Entries are
// deduplicated: re-running a line moves it to the end instead of
// storing it twice.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a history backed by file. An empty path falls
// back to ~/.keyden/history.
func NewHistory(file string) *History {
	if file == "" {
		if home, err := os.UserHomeDir(); err == nil {
			file = filepath.Join(home, ".keyden", "history")
		}
	}
	return &History{maxSize: DefaultHistorySize, file: file}
}

// Add appends a line, dropping any earlier duplicate and trimming the
// oldest entries past the cap.
func (h *History) Add(line string) {
	if line == "" {
		return
	}

	for i, e := range h.entries {
		if e == line {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}

	h.entries = append(h.entries, line)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Entries returns the history, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Load reads the history file. A missing file is an empty history.
// Lines pass through Add, so a file written by an older build still
// comes out deduplicated and capped.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}

	f, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.Add(sc.Text())
	}
	return sc.Err()
}

// Save writes the history file, creating its directory when needed.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return err
	}

	f, err := os.Create(h.file)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		fmt.Fprintln(w, e)
	}
	return w.Flush()
}
