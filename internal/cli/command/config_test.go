package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	cliconfig "github.com/keydenlabs/keyden/internal/cli/config"
)

func TestConfigShow_Table(t *testing.T) {
	c, out := testContext(t, nil)
	if err := configShow(c); err != nil {
		t.Fatalf("configShow failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"SERVER", cliconfig.DefaultServer, "TIMEOUT", "5s"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestConfigShow_ResolvesFlags(t *testing.T) {
	c, out := testContext(t, nil, "--server", "kv.internal:4100")
	if err := configShow(c); err != nil {
		t.Fatalf("configShow failed: %v", err)
	}
	if !strings.Contains(out.String(), "kv.internal:4100") {
		t.Error("show should reflect the flag value")
	}
}

func TestConfigShow_YAML(t *testing.T) {
	c, out := testContext(t, nil, "--output", "yaml")
	if err := configShow(c); err != nil {
		t.Fatalf("configShow failed: %v", err)
	}
	if !strings.Contains(out.String(), "server: "+cliconfig.DefaultServer) {
		t.Errorf("output = %q, want yaml keys", out.String())
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, out := testContext(t, nil, "--config", path, "--server", "kv.internal:4100")
	if err := configInit(c); err != nil {
		t.Fatalf("configInit failed: %v", err)
	}
	if !strings.Contains(out.String(), "Wrote "+path) {
		t.Error("init should report the written path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "kv.internal:4100") {
		t.Error("config file should carry the resolved server")
	}
	if !strings.Contains(string(data), "timeout: 5s") {
		t.Error("durations should render as strings")
	}
}

func TestConfigInit_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, _ := testContext(t, nil, "--config", path, "--output", "json", "--timeout", "7s")
	if err := configInit(c); err != nil {
		t.Fatalf("configInit failed: %v", err)
	}

	loaded, err := cliconfig.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output != "json" {
		t.Errorf("Output = %q, want json", loaded.Output)
	}
	if loaded.Timeout.String() != "7s" {
		t.Errorf("Timeout = %v, want 7s", loaded.Timeout)
	}
}

func TestConfigPath_Explicit(t *testing.T) {
	c, out := testContext(t, nil, "--config", "/etc/keyden/cli.yaml")
	if err := configPath(c); err != nil {
		t.Fatalf("configPath failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "/etc/keyden/cli.yaml" {
		t.Errorf("output = %q, want the explicit path", out.String())
	}
}

func TestConfigPath_Default(t *testing.T) {
	if cliconfig.DefaultPath() == "" {
		t.Skip("no home directory in this environment")
	}

	c, out := testContext(t, nil)
	if err := configPath(c); err != nil {
		t.Fatalf("configPath failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != cliconfig.DefaultPath() {
		t.Errorf("output = %q, want the default path", out.String())
	}
}
