package command

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/keydenlabs/keyden/internal/cli/config"
)

// mockAdminServer is a test HTTP server with per-path handlers.
type mockAdminServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockAdminServer(t *testing.T) *mockAdminServer {
	t.Helper()
	m := &mockAdminServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockAdminServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// startTextServer runs a line protocol server on a loopback port and
// returns its address. respond is called once per received line.
func startTextServer(t *testing.T, respond func(line string) string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				sc := bufio.NewScanner(conn)
				for sc.Scan() {
					fmt.Fprintf(conn, "%s\n", respond(sc.Text()))
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// deadAddr returns an address nothing listens on.
func deadAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// testContext builds a CLI context with parsed flags and captured
// output. Arguments follow flag syntax, flags before positionals.
func testContext(t *testing.T, extraFlags []cli.Flag, args ...string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &cli.App{
		Name:      "test",
		Flags:     globalFlags(),
		Reader:    strings.NewReader(""),
		Writer:    out,
		ErrWriter: &bytes.Buffer{},
		Metadata: map[string]any{
			"cliConfig": cliconfig.Default(),
		},
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	for _, f := range extraFlags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	return cli.NewContext(app, set, nil), out
}
