package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/yndnr/sharedstore-go/internal/cli/connection"
	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/host/gate"
	"github.com/yndnr/sharedstore-go/internal/host/httpserver"
	"github.com/yndnr/sharedstore-go/internal/host/router"
	"github.com/yndnr/sharedstore-go/internal/storage"
)

// testHost is a live host behind the HTTP bridge that allows the CLI's
// default origin.
type testHost struct {
	*httptest.Server
	engine *engine.Engine

	// configPath keeps the user's own CLI config out of the tests.
	configPath string
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	e, err := engine.New(context.Background(), storage.NewMemoryStore(), engine.Config{})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	g := gate.New(gate.Config{Allowed: []string{connection.DefaultOrigin}})

	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{
		Router: router.New(g, e, nil, nil),
		Engine: e,
		Gate:   g,
	}))
	t.Cleanup(srv.Close)
	return &testHost{
		Server:     srv,
		engine:     e,
		configPath: filepath.Join(t.TempDir(), "cli.yaml"),
	}
}

// run executes the CLI against host and returns what it printed.
func run(t *testing.T, host *testHost, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{"sharedstore-cli", "--config", host.configPath, "--host-url", host.URL}, args...)
	err := app.Run(full)
	return out.String(), err
}
