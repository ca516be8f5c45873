package command

import (
	"os"
	"strings"
	"testing"

	"github.com/yndnr/sharedstore-go/internal/cli/connection"
)

func TestApp(t *testing.T) {
	app := App()

	if app.Name != "sharedstore-cli" {
		t.Errorf("Name = %q, want %q", app.Name, "sharedstore-cli")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"ping", "get", "set", "update", "delete", "keys", "selftest", "config"} {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}

	flagNames := make(map[string]bool)
	for _, f := range app.Flags {
		flagNames[f.Names()[0]] = true
	}
	for _, name := range []string{"config", "host-url", "origin", "target-origin", "timeout", "output", "verbose"} {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestApp_InvalidOutput(t *testing.T) {
	host := newTestHost(t)

	_, err := run(t, host, "--output", "xml", "ping")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("Run() error = %v, want output format error", err)
	}
}

func TestApp_OriginNotAllowed(t *testing.T) {
	host := newTestHost(t)

	_, err := run(t, host, "--origin", "https://stranger.example", "ping")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Run() error = %v, want a 403 refusal", err)
	}
}

func TestApp_TargetOriginMismatchTimesOut(t *testing.T) {
	host := newTestHost(t)

	_, err := run(t, host, "--target-origin", "https://elsewhere.example", "--timeout", "50ms", "ping")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Run() error = %v, want timeout", err)
	}
}

func TestApp_ConfigFile(t *testing.T) {
	host := newTestHost(t)
	content := "origin: https://stranger.example\noutput: json\n"
	if err := os.WriteFile(host.configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// The file's origin is not allowed by the host.
	if _, err := run(t, host, "ping"); err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("ping with file origin error = %v, want 403", err)
	}

	// A flag wins over the file, and the file's output format applies.
	out, err := run(t, host, "--origin", connection.DefaultOrigin, "ping")
	if err != nil {
		t.Fatalf("ping error = %v", err)
	}
	if !strings.Contains(out, `"ok": true`) {
		t.Errorf("output = %s, want json from the config file", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	host := newTestHost(t)

	if _, err := run(t, host, "--timeout", "2s", "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := run(t, host, "config", "init"); err == nil {
		t.Error("second config init without --force should fail")
	}

	out, err := run(t, host, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "timeout        2s") {
		t.Errorf("config show =\n%s\nwant the saved timeout", out)
	}
}
