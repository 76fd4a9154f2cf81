// Package service provides domain services for keyden.
package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/protocol"
	"github.com/keydenlabs/keyden/internal/storage"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(NewDatabaseService(storage.NewRegistry(nil)))
}

func mustParse(t *testing.T, line string) protocol.Command {
	t.Helper()
	cmd, err := protocol.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return cmd
}

// run dispatches one wire line against the session.
func run(t *testing.T, d *Dispatcher, sess *Session, line string) Outcome {
	t.Helper()
	return d.Dispatch(context.Background(), sess, mustParse(t, line))
}

// runOK dispatches a line that must succeed.
func runOK(t *testing.T, d *Dispatcher, sess *Session, line string) Outcome {
	t.Helper()
	out := run(t, d, sess, line)
	if out.Err != nil {
		t.Fatalf("%q: %v", line, out.Err)
	}
	return out
}

func TestDispatcher_SetGetRoundTrip(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")
	runOK(t, d, sess, `SET("user:1","alice")`)

	out := runOK(t, d, sess, `GET("user:1")`)
	if !out.HasValue {
		t.Fatal("GET should hit")
	}
	if out.Value != "alice" {
		t.Errorf("Value = %q, want %q", out.Value, "alice")
	}
}

func TestDispatcher_GetMissingIsNotError(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")

	out := runOK(t, d, sess, `GET("missing")`)
	if out.HasValue {
		t.Error("GET on a missing key should miss")
	}
}

func TestDispatcher_DelIsIdempotent(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")
	runOK(t, d, sess, `SET("k","v")`)

	out := runOK(t, d, sess, `DEL("k")`)
	if !out.HasValue {
		t.Error("DEL should report a removal")
	}

	out = runOK(t, d, sess, `DEL("k")`)
	if out.HasValue {
		t.Error("second DEL should be a no-op, not an error")
	}
}

func TestDispatcher_ZeroTTLReadsAbsent(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")
	runOK(t, d, sess, `SET("flash","gone","0s")`)

	out := runOK(t, d, sess, `GET("flash")`)
	if out.HasValue {
		t.Error("a zero-TTL key should read as absent on the very next GET")
	}

	// The entry is expired but still physical until swept; DEL removes it.
	out = runOK(t, d, sess, `DEL("flash")`)
	if !out.HasValue {
		t.Error("DEL should remove the expired entry physically")
	}
}

func TestDispatcher_OverwriteReplacesValueAndTTL(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")
	runOK(t, d, sess, `SET("k","old","0s")`)
	runOK(t, d, sess, `SET("k","new")`)

	out := runOK(t, d, sess, `GET("k")`)
	if !out.HasValue || out.Value != "new" {
		t.Errorf("GET = %q, %v, want %q, true (overwrite clears the deadline)", out.Value, out.HasValue, "new")
	}
}

func TestDispatcher_KeyValueBeforeSelect(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	for _, line := range []string{`SET("k","v")`, `GET("k")`, `DEL("k")`} {
		out := run(t, d, sess, line)
		if !errors.Is(out.Err, domain.ErrNoDatabaseSelected) {
			t.Errorf("%q err = %v, want ErrNoDatabaseSelected", line, out.Err)
		}
	}
}

func TestDispatcher_CreateAutoSelects(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	out := runOK(t, d, sess, "create orders")
	if out.Database != "orders" {
		t.Errorf("Database = %q, want %q", out.Database, "orders")
	}
	if sess.SelectedName() != "orders" {
		t.Errorf("SelectedName = %q, want %q", sess.SelectedName(), "orders")
	}

	// No use needed before key traffic.
	runOK(t, d, sess, `SET("k","v")`)
}

func TestDispatcher_CreateDuplicateKeepsSelection(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")

	out := run(t, d, sess, "create orders")
	if !errors.Is(out.Err, domain.ErrDatabaseExists) {
		t.Fatalf("err = %v, want ErrDatabaseExists", out.Err)
	}
	if sess.SelectedName() != "orders" {
		t.Errorf("failed create should leave the selection unchanged, got %q", sess.SelectedName())
	}
}

func TestDispatcher_CreateValidationError(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	out := run(t, d, sess, "create "+strings.Repeat("a", 129))
	if !errors.Is(out.Err, domain.ErrDatabaseValidation) {
		t.Fatalf("err = %v, want ErrDatabaseValidation", out.Err)
	}
	if sess.SelectedName() != "" {
		t.Error("failed create should leave the session unselected")
	}
}

func TestDispatcher_UseUnknownDatabase(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	out := run(t, d, sess, "use ghost")
	if !errors.Is(out.Err, domain.ErrDatabaseNotFound) {
		t.Fatalf("err = %v, want ErrDatabaseNotFound", out.Err)
	}
	if sess.SelectedName() != "" {
		t.Error("failed use should leave the session unselected")
	}
}

func TestDispatcher_UseKeepsPriorSelectionOnFailure(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")

	out := run(t, d, sess, "use ghost")
	if !errors.Is(out.Err, domain.ErrDatabaseNotFound) {
		t.Fatalf("err = %v, want ErrDatabaseNotFound", out.Err)
	}
	if sess.SelectedName() != "orders" {
		t.Errorf("SelectedName = %q, want %q", sess.SelectedName(), "orders")
	}
}

func TestDispatcher_UseReplacesSelection(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create alpha")
	runOK(t, d, sess, `SET("k","in-alpha")`)
	runOK(t, d, sess, "create beta")
	runOK(t, d, sess, `SET("k","in-beta")`)

	// Keyspaces are independent; switching back reads alpha's value.
	runOK(t, d, sess, "use alpha")
	out := runOK(t, d, sess, `GET("k")`)
	if !out.HasValue || out.Value != "in-alpha" {
		t.Errorf("GET = %q, %v, want %q, true", out.Value, out.HasValue, "in-alpha")
	}
}

func TestDispatcher_ProtectedDatabaseAuth(t *testing.T) {
	d := newTestDispatcher()

	creator := NewSession("cn_creator")
	runOK(t, d, creator, "create secure admin s3cret")

	sess := NewSession("cn_other")

	out := run(t, d, sess, "use secure admin wrong")
	if !errors.Is(out.Err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password err = %v, want ErrUnauthorized", out.Err)
	}

	out = run(t, d, sess, "use secure nobody s3cret")
	if !errors.Is(out.Err, domain.ErrUnauthorized) {
		t.Fatalf("wrong username err = %v, want ErrUnauthorized", out.Err)
	}

	out = run(t, d, sess, "use secure")
	if !errors.Is(out.Err, domain.ErrUnauthorized) {
		t.Fatalf("no credentials err = %v, want ErrUnauthorized", out.Err)
	}

	runOK(t, d, sess, "use secure admin s3cret")
	if sess.SelectedName() != "secure" {
		t.Errorf("SelectedName = %q, want %q", sess.SelectedName(), "secure")
	}
}

func TestDispatcher_DropRechecksAuth(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create secure admin s3cret")

	// A successful selection this session does not exempt the drop.
	out := run(t, d, sess, "drop secure")
	if !errors.Is(out.Err, domain.ErrUnauthorized) {
		t.Fatalf("drop without credentials err = %v, want ErrUnauthorized", out.Err)
	}
	if sess.SelectedName() != "secure" {
		t.Error("failed drop should leave the selection unchanged")
	}

	out = run(t, d, sess, "drop secure admin wrong")
	if !errors.Is(out.Err, domain.ErrUnauthorized) {
		t.Fatalf("drop with wrong password err = %v, want ErrUnauthorized", out.Err)
	}

	runOK(t, d, sess, "drop secure admin s3cret")
}

func TestDispatcher_DropUnknownDatabase(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	out := run(t, d, sess, "drop ghost")
	if !errors.Is(out.Err, domain.ErrDatabaseNotFound) {
		t.Fatalf("err = %v, want ErrDatabaseNotFound", out.Err)
	}
}

func TestDispatcher_DropOwnSelectionClearsIt(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create orders")
	runOK(t, d, sess, "drop orders")

	if sess.SelectedName() != "" {
		t.Fatalf("SelectedName = %q, want unselected", sess.SelectedName())
	}

	out := run(t, d, sess, `GET("k")`)
	if !errors.Is(out.Err, domain.ErrNoDatabaseSelected) {
		t.Errorf("err = %v, want ErrNoDatabaseSelected after dropping own selection", out.Err)
	}
}

func TestDispatcher_DropOtherKeepsSelection(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	runOK(t, d, sess, "create keep")
	runOK(t, d, sess, "create victim")
	runOK(t, d, sess, "use keep")
	runOK(t, d, sess, "drop victim")

	if sess.SelectedName() != "keep" {
		t.Errorf("SelectedName = %q, want %q", sess.SelectedName(), "keep")
	}
}

func TestDispatcher_DetachedGrantSurvivesDrop(t *testing.T) {
	d := newTestDispatcher()

	holder := NewSession("cn_holder")
	runOK(t, d, holder, "create shared")
	runOK(t, d, holder, `SET("k","v")`)

	dropper := NewSession("cn_dropper")
	runOK(t, d, dropper, "drop shared")

	// The holder's grant outlives the registry entry.
	out := runOK(t, d, holder, `GET("k")`)
	if !out.HasValue || out.Value != "v" {
		t.Errorf("GET = %q, %v, want %q, true", out.Value, out.HasValue, "v")
	}
	runOK(t, d, holder, `SET("k2","still writable")`)

	// But the name is gone for everyone.
	if out := run(t, d, dropper, "use shared"); !errors.Is(out.Err, domain.ErrDatabaseNotFound) {
		t.Errorf("use after drop err = %v, want ErrDatabaseNotFound", out.Err)
	}
}

func TestDispatcher_Exit(t *testing.T) {
	d := newTestDispatcher()
	sess := NewSession("cn_test")

	out := run(t, d, sess, "exit")
	if out.Err != nil {
		t.Fatalf("exit err = %v", out.Err)
	}
	if !out.Closed {
		t.Error("exit should mark the session closed")
	}
}

func TestDispatcher_SessionsAreIndependent(t *testing.T) {
	d := newTestDispatcher()

	a := NewSession("cn_a")
	b := NewSession("cn_b")

	runOK(t, d, a, "create orders")

	// b never selected anything; a's selection must not leak.
	out := run(t, d, b, `GET("k")`)
	if !errors.Is(out.Err, domain.ErrNoDatabaseSelected) {
		t.Errorf("err = %v, want ErrNoDatabaseSelected", out.Err)
	}
}
