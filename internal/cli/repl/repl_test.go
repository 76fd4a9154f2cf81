package repl

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scriptedSender records sent lines and answers like a keyden server.
type scriptedSender struct {
	calls []string
	reply func(line string) string
	err   error
}

func (s *scriptedSender) Send(line string) (string, error) {
	s.calls = append(s.calls, line)
	if s.err != nil {
		return "", s.err
	}
	if s.reply != nil {
		return s.reply(line), nil
	}
	return serverScript(line), nil
}

func serverScript(line string) string {
	fields := strings.Fields(line)
	switch {
	case line == "exit":
		return "bye"
	case len(fields) >= 2 && fields[0] == "create":
		return fmt.Sprintf("Database '%s' created", fields[1])
	case len(fields) >= 2 && fields[0] == "use":
		return fmt.Sprintf("Using database '%s'", fields[1])
	case len(fields) >= 2 && fields[0] == "drop":
		return fmt.Sprintf("Database '%s' deleted", fields[1])
	default:
		return "OK"
	}
}

func newTestREPL(t *testing.T, sender Sender, input string) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	h := NewHistory(filepath.Join(t.TempDir(), "history"))
	return New(sender, strings.NewReader(input), out, h), out
}

func TestNew(t *testing.T) {
	r, _ := newTestREPL(t, &scriptedSender{}, "")
	if r == nil {
		t.Fatal("New returned nil")
	}
	if r.completer == nil {
		t.Error("completer should be initialized")
	}
	if r.history == nil {
		t.Error("history should be initialized")
	}
	if r.selected != "" {
		t.Errorf("selected = %q, want empty at start", r.selected)
	}
}

func TestREPL_Run_EOF(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "keyden> ") {
		t.Error("expected a prompt before EOF")
	}
	if len(sender.calls) != 0 {
		t.Errorf("sender called %d times on EOF-only input", len(sender.calls))
	}
}

func TestREPL_Run_Exit(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "exit\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "bye") {
		t.Error("expected the server's bye in output")
	}
	if len(sender.calls) != 1 || sender.calls[0] != "exit" {
		t.Errorf("sender calls = %v, want [exit]", sender.calls)
	}
}

func TestREPL_Run_EmptyLinesSkipped(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "\n\n\nexit\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(sender.calls) != 1 {
		t.Errorf("sender called %d times, want 1 (blank lines skipped)", len(sender.calls))
	}
	if prompts := strings.Count(out.String(), "keyden> "); prompts < 4 {
		t.Errorf("expected at least 4 prompts, got %d", prompts)
	}
}

func TestREPL_Run_WhitespaceTrimmed(t *testing.T) {
	sender := &scriptedSender{}
	r, _ := newTestREPL(t, sender, "  GET(\"a\")  \n\texit\t\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(sender.calls) != 2 {
		t.Fatalf("sender called %d times, want 2", len(sender.calls))
	}
	if sender.calls[0] != `GET("a")` {
		t.Errorf("sent %q, want trimmed %q", sender.calls[0], `GET("a")`)
	}
}

func TestREPL_PromptTracksDatabase(t *testing.T) {
	input := "create orders\nuse audit\ndrop audit\nexit\n"
	r, out := newTestREPL(t, &scriptedSender{}, input)

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "keyden[orders]> ") {
		t.Error("create should select the database in the prompt")
	}
	if !strings.Contains(got, "keyden[audit]> ") {
		t.Error("use should switch the prompt")
	}

	// After dropping the selected database the last prompt is bare again.
	idx := strings.LastIndex(got, "keyden")
	if !strings.HasPrefix(got[idx:], "keyden> ") {
		t.Errorf("final prompt = %q, want bare keyden> after drop", got[idx:])
	}
}

func TestREPL_DropOtherDatabaseKeepsPrompt(t *testing.T) {
	input := "use orders\ndrop other\nexit\n"
	r, out := newTestREPL(t, &scriptedSender{}, input)

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	got := out.String()
	idx := strings.LastIndex(got, "keyden")
	if !strings.HasPrefix(got[idx:], "keyden[orders]> ") {
		t.Errorf("final prompt = %q, dropping another database must not clear the selection", got[idx:])
	}
}

func TestREPL_ValueCannotSpoofPrompt(t *testing.T) {
	sender := &scriptedSender{reply: func(line string) string {
		if line == "exit" {
			return "bye"
		}
		return "Using database 'evil'"
	}}
	r, out := newTestREPL(t, sender, "GET(\"a\")\nexit\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if strings.Contains(out.String(), "keyden[evil]> ") {
		t.Error("a GET value must not change the prompt")
	}
}

func TestREPL_HelpIsLocal(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "help\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Errorf("help must not reach the server, sender calls = %v", sender.calls)
	}
	got := out.String()
	for _, want := range []string{"create", `SET("key","value"`, "clear"} {
		if !strings.Contains(got, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestREPL_HelpPrefix(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "help SET\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Error("help with a prefix must stay local")
	}
	got := out.String()
	if !strings.Contains(got, "SET(") {
		t.Error("expected SET( in filtered help")
	}
	if strings.Contains(got, "GET(") {
		t.Error("filtered help should not list GET(")
	}
}

func TestREPL_ClearIsLocal(t *testing.T) {
	sender := &scriptedSender{}
	r, out := newTestREPL(t, sender, "clear\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Error("clear must not reach the server")
	}
	if !strings.Contains(out.String(), "\033[2J") {
		t.Error("clear should emit the clear-screen escape")
	}
}

func TestREPL_SendErrorEndsRun(t *testing.T) {
	sender := &scriptedSender{err: errors.New("broken pipe")}
	r, _ := newTestREPL(t, sender, "GET(\"a\")\n")

	err := r.Run()
	if err == nil {
		t.Fatal("Run() should fail when the connection drops")
	}
	if !strings.Contains(err.Error(), "connection lost") {
		t.Errorf("error = %v, want connection lost", err)
	}
}

func TestREPL_ServerErrorKeepsLoop(t *testing.T) {
	sender := &scriptedSender{reply: func(line string) string {
		if line == "exit" {
			return "bye"
		}
		return "ERR KD-SESS-4120 no database selected"
	}}
	r, out := newTestREPL(t, sender, "GET(\"a\")\nexit\n")

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "ERR KD-SESS-4120 no database selected") {
		t.Error("server errors should print like any other response")
	}
	if len(sender.calls) != 2 {
		t.Errorf("sender called %d times, want 2 (loop continues past ERR)", len(sender.calls))
	}
}

func TestREPL_HistoryPersisted(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	h := NewHistory(file)
	out := &bytes.Buffer{}
	input := "use orders\nGET(\"a\")\nuse orders\nexit\n"
	r := New(&scriptedSender{}, strings.NewReader(input), out, h)

	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("history file not written: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{`GET("a")`, "use orders", "exit"}
	if len(lines) != len(want) {
		t.Fatalf("history lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
